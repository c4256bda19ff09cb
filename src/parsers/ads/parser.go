package ads

import (
	"fmt"
	"io"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// Keywords identify the header row of an ads export.
var Keywords = []string{"Chi phí", "Doanh thu gộp", "Tài khoản TikTok", "Cost", "GMV"}

// Aliases lists accepted header spellings per field, Vietnamese exports first.
var Aliases = tabular.AliasTable{
	"cost":           {"Chi phí", "Cost", "Spend"},
	"gmv":            {"Doanh thu gộp", "Gross revenue", "GMV"},
	"clicks":         {"Số lượt nhấp vào quảng cáo sản phẩm", "Số lượt nhấp", "Product ad clicks", "Clicks"},
	"impressions":    {"Số lượt hiển thị quảng cáo sản phẩm", "Số lượt hiển thị", "Product ad impressions", "Impressions"},
	"orders":         {"Đơn hàng (SKU)", "SKU orders", "Orders"},
	"campaign":       {"Tên chiến dịch", "Chiến dịch", "Campaign name", "Campaign"},
	"product_id":     {"ID sản phẩm", "Product ID"},
	"video_title":    {"Tiêu đề video", "Video title"},
	"video_id":       {"ID video", "Video ID"},
	"account":        {"Tài khoản TikTok", "TikTok account"},
	"creative_type":  {"Loại nội dung sáng tạo", "Creative type"},
	"roi":            {"ROI"},
	"ctr":            {"Tỷ lệ nhấp vào quảng cáo sản phẩm", "CTR"},
	"cvr":            {"Tỷ lệ chuyển đổi quảng cáo", "CVR"},
	"cost_per_order": {"Chi phí cho mỗi đơn hàng", "CPĐH", "Cost per order"},
	"view_rate_2s":   {"Tỷ lệ xem video quảng cáo trong 2 giây", "2-second ad video view rate"},
	"view_rate_6s":   {"Tỷ lệ xem video quảng cáo trong 6 giây", "6-second ad video view rate"},
	"view_rate_25":   {"Tỷ lệ xem 25% thời lượng video quảng cáo", "Ad video view rate at 25%"},
	"view_rate_50":   {"Tỷ lệ xem 50% thời lượng video quảng cáo", "Ad video view rate at 50%"},
	"view_rate_75":   {"Tỷ lệ xem 75% thời lượng video quảng cáo", "Ad video view rate at 75%"},
	"view_rate_100":  {"Tỷ lệ xem 100% thời lượng video quảng cáo", "Ad video view rate at 100%"},
}

// Required fields fail the file when absent.
var Required = []string{"cost", "gmv"}

// unavailableAccounts are placeholders the export writes instead of a handle.
var unavailableAccounts = map[string]bool{"": true, "-": true, "không khả dụng": true}

type AdsParser struct {
	scanRows int
}

func NewParser(scanRows int) *AdsParser {
	return &AdsParser{scanRows: scanRows}
}

func (p *AdsParser) Kind() models.FileKind { return models.FileAds }

func (p *AdsParser) Parse(file io.Reader, fileName string) (*models.ParsedFile, error) {
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
		Kind:           models.FileAds,
		FileName:       fileName,
		HeaderRow:      table.HeaderIndex,
		UnmappedFields: table.Columns.Unmapped(Aliases),
	}
	for _, row := range table.Rows {
		if table.Columns.IsEmptyRow(row) {
			continue
		}
		result.Ads = append(result.Ads, mapRow(table.Columns, row))
	}
	result.RowCount = len(result.Ads)
	if result.RowCount == 0 {
		return nil, fmt.Errorf("%w: %q has a header but no data rows", tabular.ErrMalformedFile, fileName)
	}
	return result, nil
}

func mapRow(c *tabular.ColumnMap, row []string) models.AdRecord {
	num := func(field string) float64 { return utils.ParseLocaleNumber(c.Value(row, field)) }
	whole := func(field string) int { return utils.ParseLocaleInt(c.Value(row, field)) }

	cost := num("cost")
	gmv := num("gmv")
	clicks := whole("clicks")
	orders := whole("orders")

	roi := num("roi")
	if roi == 0 && cost > 0 {
		roi = gmv / cost
	}
	costPerOrder := num("cost_per_order")
	if costPerOrder == 0 && orders > 0 {
		costPerOrder = cost / float64(orders)
	}

	return models.AdRecord{
		Campaign:     c.Value(row, "campaign"),
		ProductID:    c.Value(row, "product_id"),
		VideoTitle:   c.Value(row, "video_title"),
		VideoID:      c.Value(row, "video_id"),
		Account:      normalizeAccount(c.Value(row, "account")),
		CreativeType: c.Value(row, "creative_type"),
		Cost:         cost,
		Gmv:          gmv,
		Impressions:  whole("impressions"),
		Clicks:       clicks,
		Orders:       orders,
		Roi:          roi,
		Ctr:          num("ctr"),
		Cvr:          num("cvr"),
		Cpc:          utils.SafeDiv(cost, float64(clicks)),
		Cir:          utils.SafeDiv(cost, gmv) * 100,
		CostPerOrder: costPerOrder,
		ViewRate2s:   num("view_rate_2s"),
		ViewRate6s:   num("view_rate_6s"),
		ViewRate25:   num("view_rate_25"),
		ViewRate50:   num("view_rate_50"),
		ViewRate75:   num("view_rate_75"),
		ViewRate100:  num("view_rate_100"),
	}
}

func normalizeAccount(raw string) string {
	account := utils.FoldText(strings.TrimSpace(raw))
	if unavailableAccounts[account] {
		return models.UnknownAccount
	}
	return account
}
