package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/LinhLe223/GMV-MAX/src/utils"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

const utf8BOM = "\ufeff"

// ReadRows loads the first sheet of a .xlsx, .xls or .csv file as rows of cell text.
// The format is chosen by extension, falling back to content sniffing.
func ReadRows(fileName string, r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrMalformedFile, fileName, err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		rows, err = parseExcelFile(data)
	case ".xls":
		rows, err = parseXLSFile(data)
	case ".csv", ".txt":
		rows, err = parseCSVFile(data)
	default:
		switch {
		case bytes.HasPrefix(data, zipMagic):
			rows, err = parseExcelFile(data)
		case bytes.HasPrefix(data, oleMagic):
			rows, err = parseXLSFile(data)
		default:
			rows, err = parseCSVFile(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedFile, fileName, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func parseExcelFile(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheetName := xl.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	// Raw values keep numeric cells out of the number format, so 3.125 is not
	// shown with locale grouping and then re-read as 3125.
	rows, err := xl.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			typ, err := xl.GetCellType(sheetName, cell)
			if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
				continue
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				row[j] = utils.CanonicalNumber(f)
			}
		}
	}
	return rows, nil
}

// parseXLSFile reads the first sheet of a legacy workbook. The library only
// exposes rendered text, so numeric cells arrive as plain decimal strings.
func parseXLSFile(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if book.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no sheets found")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func parseCSVFile(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// WriteCSV renders rows as CSV, used when re-encoding a truncated source for caching.
func WriteCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
