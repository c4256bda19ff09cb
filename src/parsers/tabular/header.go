package tabular

import (
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/security/validation"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// NotFound is returned by DetectHeaderRow when no row matches.
const NotFound = -1

// DefaultScanRows is how many leading rows are searched for a header.
const DefaultScanRows = 20

// DetectHeaderRow returns the index of the first of the leading maxRows rows in
// which some cell contains one of the keywords, ignoring case and Unicode composition.
func DetectHeaderRow(rows [][]string, keywords []string, maxRows int) int {
	if maxRows <= 0 {
		maxRows = DefaultScanRows
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = utils.FoldText(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	for i := 0; i < len(rows) && i < maxRows; i++ {
		for _, cell := range rows[i] {
			c := utils.FoldText(cell)
			for _, k := range lowered {
				if strings.Contains(c, k) {
					return i
				}
			}
		}
	}
	return NotFound
}

// NormalizeHeader folds header text so that aliases match regardless of case and spacing.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, utf8BOM)
	s = validation.StripUnprintable(s)
	return strings.Join(strings.Fields(utils.FoldText(s)), " ")
}

// Table is a spreadsheet whose header row has been located and mapped.
type Table struct {
	FileName    string
	HeaderIndex int
	Columns     *ColumnMap
	Rows        [][]string
}

// Locate finds the header row and builds the column map for the rows below it.
func Locate(fileName string, rows [][]string, keywords []string, aliases AliasTable, maxRows int) (*Table, error) {
	idx := DetectHeaderRow(rows, keywords, maxRows)
	if idx == NotFound {
		var first []string
		if len(rows) > 0 {
			first = rows[0]
		}
		return nil, &HeaderNotFoundError{FileName: fileName, FirstRow: first}
	}
	return &Table{
		FileName:    fileName,
		HeaderIndex: idx,
		Columns:     NewColumnMap(rows[idx], aliases),
		Rows:        rows[idx+1:],
	}, nil
}
