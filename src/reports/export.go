package reports

import (
	"strconv"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/security/validation"
)

var exportHeader = []string{
	"Key", "Tên", "Product ID", "SKU",
	"Chi phí Ads", "GMV Ads", "GMV", "NMV", "Hoa hồng", "Giá vốn", "Phí", "Lợi nhuận ròng",
	"Tổng đơn", "Đơn thành công", "Đơn hủy/hoàn", "% Hủy/hoàn",
	"ROAS thực", "ROAS hòa vốn", "Tồn kho", "Số ngày tồn", "Sức khỏe", "Hành động", "BCG",
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ExportTextColumns are the free-text columns copied from the source files. They lead every row.
const ExportTextColumns = 4

// ExportRows renders entities as spreadsheet rows, header first. Text cells are
// sanitized so names cannot smuggle formulas into the workbook.
func ExportRows(list []models.ReconciledEntity) [][]string {
	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, append([]string(nil), exportHeader...))
	for _, e := range list {
		breakEven := formatRatio(e.BreakEvenRoas)
		if e.BreakEvenUnbounded {
			breakEven = "∞"
		}
		stock := strconv.Itoa(e.StockQuantity)
		if e.StockQuantity == models.UnknownStock {
			stock = "N/A"
		}
		row := []string{
			e.Key, e.Name, e.ProductID, e.SKU,
			formatMoney(e.AdsCost), formatMoney(e.AdsGmv), formatMoney(e.TotalGmv), formatMoney(e.Nmv),
			formatMoney(e.TotalCommission), formatMoney(e.TotalCogs), formatMoney(e.Fees.Total()), formatMoney(e.NetProfit),
			strconv.Itoa(e.TotalOrders), strconv.Itoa(e.SuccessOrders), strconv.Itoa(e.FailedOrders), formatRatio(e.ReturnCancelPercent),
			formatRatio(e.RealRoas), breakEven, stock, e.DaysOnHandDisplay,
			string(e.HealthStatus), string(e.Command), string(e.Bcg),
		}
		for i := 0; i < ExportTextColumns; i++ {
			row[i] = validation.SanitizeForFormulaInjection(row[i])
		}
		rows = append(rows, row)
	}
	return rows
}
