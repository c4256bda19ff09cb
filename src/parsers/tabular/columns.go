package tabular

import (
	"sort"
	"strings"
)

// AliasTable maps a canonical field to the header spellings it may appear under, in priority order.
type AliasTable map[string][]string

// ColumnMap resolves canonical fields to column indices of one header row.
type ColumnMap struct {
	fields map[string][]int
}

func NewColumnMap(header []string, aliases AliasTable) *ColumnMap {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	cm := &ColumnMap{fields: make(map[string][]int, len(aliases))}
	for field, names := range aliases {
		for _, name := range names {
			if col, ok := index[NormalizeHeader(name)]; ok {
				cm.fields[field] = append(cm.fields[field], col)
			}
		}
	}
	return cm
}

// Has reports whether any alias of the field is present in the header.
func (c *ColumnMap) Has(field string) bool {
	return len(c.fields[field]) > 0
}

// Value returns the trimmed cell of the first alias column that is non-empty in row.
func (c *ColumnMap) Value(row []string, field string) string {
	for _, col := range c.fields[field] {
		if col < len(row) {
			if v := strings.TrimSpace(row[col]); v != "" {
				return v
			}
		}
	}
	return ""
}

// Missing lists, sorted, the given fields that have no column in the header.
func (c *ColumnMap) Missing(fields []string) []string {
	var out []string
	for _, f := range fields {
		if !c.Has(f) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// Unmapped lists, sorted, every field of the table that has no column in the header.
func (c *ColumnMap) Unmapped(aliases AliasTable) []string {
	fields := make([]string, 0, len(aliases))
	for f := range aliases {
		fields = append(fields, f)
	}
	return c.Missing(fields)
}

// IsEmptyRow checks if every mapped cell of the row is blank.
func (c *ColumnMap) IsEmptyRow(row []string) bool {
	for _, cols := range c.fields {
		for _, col := range cols {
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				return false
			}
		}
	}
	return true
}
