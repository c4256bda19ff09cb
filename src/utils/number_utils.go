package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Currency and unit tokens removed before a number is parsed. Matching is case-insensitive.
var numberNoiseTokens = []string{"vnđ", "vnd", "đ", "₫", "%"}

// ParseLocaleNumber converts a loosely formatted spreadsheet cell into a float64.
// It never fails: empty, placeholder and unparseable input all yield 0.
//
// When both ',' and '.' appear, the one appearing last is the decimal separator.
// A lone separator is a thousands separator if it repeats or is followed by
// exactly three digits; otherwise it is the decimal point. Values such as
// "1.2345" or "1,234" with a 3-digit fraction are inherently ambiguous and
// resolve by this rule alone.
func ParseLocaleNumber(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		return parseLocaleString(v)
	case []byte:
		return parseLocaleString(string(v))
	case fmt.Stringer:
		return parseLocaleString(v.String())
	default:
		return 0
	}
}

// ParseLocaleInt parses like ParseLocaleNumber and truncates toward zero.
func ParseLocaleInt(raw any) int {
	return int(ParseLocaleNumber(raw))
}

// CanonicalNumber renders a typed spreadsheet number as text that ParseLocaleNumber
// reads back unchanged. A fraction of exactly three digits gets a trailing zero so
// it cannot be taken for a thousands group.
func CanonicalNumber(v float64) string {
	s := strconv.FormatFloat(finiteOrZero(v), 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 == 3 {
		s += "0"
	}
	return s
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseLocaleString(raw string) float64 {
	s := strings.ToLower(raw)
	for _, tok := range numberNoiseTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if s == "" || s == "-" {
		return 0
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if negative {
		f = -f
	}
	return finiteOrZero(f)
}

// normalizeSeparators rewrites s so that '.' is the only, decimal, separator.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if isThousandsGrouped(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if isThousandsGrouped(s, ".") {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
	return s
}

func isThousandsGrouped(s, sep string) bool {
	parts := strings.Split(s, sep)
	if len(parts) > 2 {
		return true
	}
	return len(parts) == 2 && len(parts[1]) == 3
}
