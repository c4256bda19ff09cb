package reports

import "github.com/LinhLe223/GMV-MAX/src/models"

// CostBreakdown splits total spend into its sources for the dashboard.
type CostBreakdown struct {
	Ads        float64 `json:"ads"`
	Cogs       float64 `json:"cogs"`
	Commission float64 `json:"commission"`
	Fees       float64 `json:"fees"`
	Total      float64 `json:"total"`
}

// Summary holds aggregate statistics over one entity list.
type Summary struct {
	TotalRevenue    float64       `json:"totalRevenue"`
	TotalNmv        float64       `json:"totalNmv"`
	TotalEntities   int           `json:"totalEntities"`
	ActiveEntities  int           `json:"activeEntities"`
	TotalOrders     int           `json:"totalOrders"`
	FailedOrders    int           `json:"failedOrders"`
	TotalAdsCost    float64       `json:"totalAdsCost"`
	TotalCogs       float64       `json:"totalCogs"`
	TotalCommission float64       `json:"totalCommission"`
	TotalFees       float64       `json:"totalFees"`
	TotalNetProfit  float64       `json:"totalNetProfit"`
	AvgReturnRate   float64       `json:"avgReturnRate"`
	InventoryValue  float64       `json:"inventoryValue"`
	Costs           CostBreakdown `json:"costs"`
}

// Summarize totals an entity list. The return rate is order-weighted, not an average of percentages.
func Summarize(list []models.ReconciledEntity, inventory []models.InventoryRecord) Summary {
	var s Summary
	s.TotalEntities = len(list)
	for _, e := range list {
		s.TotalRevenue += e.TotalGmv
		s.TotalNmv += e.Nmv
		s.TotalOrders += e.TotalOrders
		s.FailedOrders += e.FailedOrders
		s.TotalAdsCost += e.AdsCost
		s.TotalCogs += e.TotalCogs
		s.TotalCommission += e.TotalCommission
		s.TotalFees += e.Fees.Total()
		s.TotalNetProfit += e.NetProfit
		if e.TotalOrders > 0 {
			s.ActiveEntities++
		}
	}
	if s.TotalOrders > 0 {
		s.AvgReturnRate = float64(s.FailedOrders) / float64(s.TotalOrders) * 100
	}
	// Negative stock rows are corrections and reduce the value.
	for _, item := range inventory {
		s.InventoryValue += float64(item.Stock) * item.Cogs
	}
	s.Costs = CostBreakdown{
		Ads:        s.TotalAdsCost,
		Cogs:       s.TotalCogs,
		Commission: s.TotalCommission,
		Fees:       s.TotalFees,
		Total:      s.TotalAdsCost + s.TotalCogs + s.TotalCommission + s.TotalFees,
	}
	return s
}

// ClassifyBCG places each entity in a quadrant by comparing its order GMV and
// net profit with the list averages. Values equal to the average count as high.
func ClassifyBCG(list []models.ReconciledEntity) map[string]models.Quadrant {
	out := make(map[string]models.Quadrant, len(list))
	if len(list) == 0 {
		return out
	}
	var gmv, profit float64
	for _, e := range list {
		gmv += e.TotalGmv
		profit += e.NetProfit
	}
	avgGmv := gmv / float64(len(list))
	avgProfit := profit / float64(len(list))

	for _, e := range list {
		highGmv := e.TotalGmv >= avgGmv
		highProfit := e.NetProfit >= avgProfit
		switch {
		case highGmv && highProfit:
			out[e.Key] = models.QuadrantStar
		case highGmv:
			out[e.Key] = models.QuadrantCow
		case highProfit:
			out[e.Key] = models.QuadrantQuestion
		default:
			out[e.Key] = models.QuadrantDog
		}
	}
	return out
}

// AnnotateBCG returns a copy of list with Bcg set.
func AnnotateBCG(list []models.ReconciledEntity) []models.ReconciledEntity {
	quadrants := ClassifyBCG(list)
	out := make([]models.ReconciledEntity, len(list))
	for i, e := range list {
		e.Bcg = quadrants[e.Key]
		out[i] = e
	}
	return out
}
