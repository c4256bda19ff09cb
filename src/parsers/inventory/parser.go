package inventory

import (
	"fmt"
	"io"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// FileMarker must appear in the name of an inventory export.
const FileMarker = "Danh_sách_tồn_kho"

var Keywords = []string{"Mã SKU", "SKU", "Toàn bộ kho khả dụng", "Giá vốn"}

var Aliases = tabular.AliasTable{
	"sku":   {"Mã SKU", "SKU", "Seller SKU"},
	"stock": {"Toàn bộ kho khả dụng", "Số lượng tồn kho", "Available stock", "Stock"},
	"cogs":  {"Giá vốn", "COGS", "Unit cost"},
	"name":  {"Tên", "Tên sản phẩm", "Product name", "Name"},
}

var Required = []string{"sku"}

type InventoryParser struct {
	scanRows int
}

func NewParser(scanRows int) *InventoryParser {
	return &InventoryParser{scanRows: scanRows}
}

func (p *InventoryParser) Kind() models.FileKind { return models.FileInventory }

func (p *InventoryParser) Parse(file io.Reader, fileName string) (*models.ParsedFile, error) {
	rows, err := tabular.ReadRows(fileName, file)
	if err != nil {
		return nil, err
	}
	table, err := tabular.Locate(fileName, rows, Keywords, Aliases, p.scanRows)
	if err != nil {
		return nil, err
	}
	if missing := table.Columns.Missing(Required); len(missing) > 0 {
		return nil, &tabular.MissingFieldsError{FileName: fileName, Fields: missing}
	}

	result := &models.ParsedFile{
		Kind:           models.FileInventory,
		FileName:       fileName,
		HeaderRow:      table.HeaderIndex,
		UnmappedFields: table.Columns.Unmapped(Aliases),
	}
	for _, row := range table.Rows {
		if table.Columns.IsEmptyRow(row) {
			continue
		}
		result.Inventory = append(result.Inventory, models.InventoryRecord{
			SKU:   table.Columns.Value(row, "sku"),
			Stock: utils.ParseLocaleInt(table.Columns.Value(row, "stock")),
			Cogs:  utils.ParseLocaleNumber(table.Columns.Value(row, "cogs")),
			Name:  table.Columns.Value(row, "name"),
		})
	}
	result.RowCount = len(result.Inventory)
	if result.RowCount == 0 {
		return nil, fmt.Errorf("%w: %q has a header but no data rows", tabular.ErrMalformedFile, fileName)
	}
	return result, nil
}
