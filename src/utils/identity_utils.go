package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownIdentity is the key of a handle that normalizes to nothing.
const UnknownIdentity = "unknown"

// vanitySuffixes are decorations creators append to their handles.
var vanitySuffixes = []string{"review", "official", "store", "channel"}

var markRemover = runes.Remove(runes.In(unicode.Mn))

// stripAccents folds case, removes combining marks and maps đ to d.
func stripAccents(raw string) string {
	s, _, _ := transform.String(markRemover, norm.NFD.String(strings.ToLower(raw)))
	return strings.ReplaceAll(s, "đ", "d")
}

// NormalizeIdentity canonicalizes a creator handle into the join key shared by
// the ads and orders exports. It is deterministic and idempotent.
func NormalizeIdentity(raw string) string {
	s := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, stripAccents(raw))

	// Strip until no suffix applies, so the result is a fixed point.
	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range vanitySuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSuffix(s, suffix)
				stripped = true
			}
		}
	}

	if s == "" {
		return UnknownIdentity
	}
	return s
}

// NormalizeName folds a product display name for containment matching.
func NormalizeName(raw string) string {
	return strings.TrimSpace(stripAccents(raw))
}

// FoldText lowercases s in composed (NFC) form, so text saved with decomposed
// Vietnamese diacritics compares equal to the composed spelling.
func FoldText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// NormalizeSKU folds a seller SKU for exact and partial matching.
func NormalizeSKU(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
