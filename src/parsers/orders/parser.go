package orders

import (
	"fmt"
	"io"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// FileMarker must appear in the name of an orders export.
const FileMarker = "creator_order_all"

var Keywords = []string{"ID đơn hàng", "Order ID", "Tên người dùng nhà sáng tạo", "Sku người bán"}

var Aliases = tabular.AliasTable{
	"order_id":      {"ID đơn hàng", "Order ID"},
	"product_id":    {"ID sản phẩm", "Product ID"},
	"product_name":  {"Tên sản phẩm", "Product name"},
	"seller_sku":    {"Sku người bán", "Seller SKU"},
	"revenue":       {"Payment Amount", "Số tiền thanh toán", "Payment amount"},
	"koc_username":  {"Tên người dùng nhà sáng tạo", "Creator username"},
	"video_id":      {"Id nội dung", "Content ID"},
	"commission":    {"Thanh toán hoa hồng thực tế", "Actual commission payment"},
	"status":        {"Trạng thái đơn hàng", "Order status"},
	"return_status": {"Trả hàng & hoàn tiền", "Returns & refunds"},
	"quantity":      {"Số lượng", "Quantity"},
}

var Required = []string{"order_id", "revenue"}

type OrdersParser struct {
	scanRows int
}

func NewParser(scanRows int) *OrdersParser {
	return &OrdersParser{scanRows: scanRows}
}

func (p *OrdersParser) Kind() models.FileKind { return models.FileOrders }

func (p *OrdersParser) Parse(file io.Reader, fileName string) (*models.ParsedFile, error) {
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
		Kind:           models.FileOrders,
		FileName:       fileName,
		HeaderRow:      table.HeaderIndex,
		UnmappedFields: table.Columns.Unmapped(Aliases),
	}
	for _, row := range table.Rows {
		if table.Columns.IsEmptyRow(row) {
			continue
		}
		result.Orders = append(result.Orders, mapRow(table.Columns, row))
	}
	result.RowCount = len(result.Orders)
	if result.RowCount == 0 {
		return nil, fmt.Errorf("%w: %q has a header but no data rows", tabular.ErrMalformedFile, fileName)
	}
	return result, nil
}

func mapRow(c *tabular.ColumnMap, row []string) models.OrderRecord {
	quantity := utils.ParseLocaleInt(c.Value(row, "quantity"))
	if quantity <= 0 {
		quantity = 1
	}
	return models.OrderRecord{
		OrderID:      c.Value(row, "order_id"),
		KocUsername:  c.Value(row, "koc_username"),
		SellerSKU:    c.Value(row, "seller_sku"),
		ProductID:    c.Value(row, "product_id"),
		ProductName:  c.Value(row, "product_name"),
		VideoID:      c.Value(row, "video_id"),
		Revenue:      utils.ParseLocaleNumber(c.Value(row, "revenue")),
		Status:       c.Value(row, "status"),
		ReturnStatus: c.Value(row, "return_status"),
		Commission:   utils.ParseLocaleNumber(c.Value(row, "commission")),
		Quantity:     quantity,
	}
}
