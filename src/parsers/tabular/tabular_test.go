package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

var testAliases = AliasTable{
	"cost":   {"Chi phí", "Cost"},
	"clicks": {"Số lượt nhấp vào quảng cáo sản phẩm", "Số lượt nhấp"},
	"name":   {"Tên"},
}

func TestDetectHeaderRow(t *testing.T) {
	rows := [][]string{
		{"Báo cáo quảng cáo"},
		{"Từ 01/01 đến 31/01"},
		{"Tên chiến dịch", "CHI PHÍ", "Doanh thu gộp"},
		{"Camp A", "100", "500"},
	}
	assert.Equal(t, 2, DetectHeaderRow(rows, []string{"chi phí"}, 20))
	assert.Equal(t, NotFound, DetectHeaderRow(rows, []string{"order id"}, 20))
	assert.Equal(t, NotFound, DetectHeaderRow(rows, []string{"chi phí"}, 2), "header beyond the scan window")
}

func TestDetectHeaderRowFirstMatchWins(t *testing.T) {
	rows := [][]string{{"GMV report"}, {"Cost", "GMV"}}
	assert.Equal(t, 0, DetectHeaderRow(rows, []string{"gmv"}, 0))
}

func TestLocateHeaderNotFound(t *testing.T) {
	rows := [][]string{{"foo", "bar"}, {"1", "2"}}
	_, err := Locate("ads.xlsx", rows, []string{"Chi phí"}, testAliases, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFile))

	var hnf *HeaderNotFoundError
	require.True(t, errors.As(err, &hnf))
	assert.Equal(t, "ads.xlsx", hnf.FileName)
	assert.Equal(t, []string{"foo", "bar"}, hnf.FirstRow)
	assert.Contains(t, err.Error(), `"ads.xlsx"`)
}

func TestColumnMapAliasOrder(t *testing.T) {
	header := []string{"\ufeffChi  phí ", "Số lượt nhấp", "Số lượt nhấp vào quảng cáo sản phẩm"}
	cm := NewColumnMap(header, testAliases)

	assert.Equal(t, "10", cm.Value([]string{"10", "3", "7"}, "cost"))
	assert.Equal(t, "7", cm.Value([]string{"10", "3", "7"}, "clicks"), "first alias wins")
	assert.Equal(t, "3", cm.Value([]string{"10", "3", ""}, "clicks"), "falls through to the next non-empty alias")
	assert.Equal(t, "", cm.Value([]string{"10"}, "clicks"), "short rows are tolerated")
	assert.Equal(t, []string{"name"}, cm.Unmapped(testAliases))
	assert.Equal(t, []string{"name"}, cm.Missing([]string{"cost", "name"}))
	assert.True(t, cm.IsEmptyRow([]string{" ", "", ""}))
	assert.False(t, cm.IsEmptyRow([]string{"", "", "1"}))
}

func TestReadRowsCSV(t *testing.T) {
	data := "\ufeffChi phí,Doanh thu gộp\n\"1.000\",2.000\n3,\n"
	rows, err := ReadRows("ads.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Chi phí", rows[0][0])
	assert.Equal(t, []string{"3", ""}, rows[2])
}

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Mã SKU", "Giá vốn"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"ABC123", 50000}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := ReadRows("Danh_sách_tồn_kho.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ABC123", "50000"}, rows[1])

	sniffed, err := ReadRows("export", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, rows, sniffed)
}

func TestReadRowsXLSXNumericCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ROI", "Chi phí", "Ghi chú"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{3.125, 1234567.125, "3.125"}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", style))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := ReadRows("gmv_max.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"3.1250", "1234567.1250", "3.125"}, rows[1], "numbers ignore display format, text cells stay as typed")
}

func TestDetectHeaderRowDecomposedText(t *testing.T) {
	rows := [][]string{
		{"Báo cáo"},
		{norm.NFD.String("Tên chiến dịch"), norm.NFD.String("Chi phí")},
	}
	assert.Equal(t, 1, DetectHeaderRow(rows, []string{"Chi phí"}, 20))
	assert.Equal(t, NormalizeHeader("Chi phí"), NormalizeHeader(norm.NFD.String("CHI PHÍ")))

	cm := NewColumnMap(rows[1], testAliases)
	assert.Equal(t, "100", cm.Value([]string{"Camp", "100"}, "cost"))
}

func TestReadRowsCorruptWorkbook(t *testing.T) {
	_, err := ReadRows("broken.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFile))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	rows := [][]string{{"a", "b,c"}, {"1", "2"}}
	data, err := WriteCSV(rows)
	require.NoError(t, err)
	back, err := ReadRows("x.csv", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}
