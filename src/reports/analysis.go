package reports

import "github.com/LinhLe223/GMV-MAX/src/models"

const analysisTopN = 20

// AnalysisInput is the slice of a generation an external text generator may summarize.
type AnalysisInput struct {
	Creators         []models.ReconciledEntity
	Products         []models.ReconciledEntity
	UnmappedCreators []models.ReconciledEntity
	UnmappedProducts []models.ReconciledEntity
	NotFoundSkus     []string
	Inventory        []models.InventoryRecord
	AdsSummary       models.AdsSummary
}

// AnalysisPayload flattens a generation into plain maps and slices with no
// derived types left, so callers can serialize it however they like.
func AnalysisPayload(in AnalysisInput) map[string]interface{} {
	return map[string]interface{}{
		"ads":              in.AdsSummary,
		"creatorSummary":   Summarize(in.Creators, in.Inventory),
		"productSummary":   Summarize(in.Products, in.Inventory),
		"topCreators":      topByProfit(in.Creators),
		"topProducts":      topByProfit(in.Products),
		"unmappedCreators": compact(in.UnmappedCreators),
		"unmappedProducts": compact(in.UnmappedProducts),
		"notFoundSkus":     nonNil(in.NotFoundSkus),
	}
}

func topByProfit(list []models.ReconciledEntity) []map[string]interface{} {
	sorted := SortEntities(list, DefaultSortKey)
	if len(sorted) > analysisTopN {
		sorted = sorted[:analysisTopN]
	}
	return compact(sorted)
}

func compact(list []models.ReconciledEntity) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(list))
	for _, e := range list {
		out = append(out, map[string]interface{}{
			"name":                e.Name,
			"nmv":                 e.Nmv,
			"adsCost":             e.AdsCost,
			"adsGmv":              e.AdsGmv,
			"netProfit":           e.NetProfit,
			"realRoas":            e.RealRoas,
			"breakEvenRoas":       e.BreakEvenRoas,
			"returnCancelPercent": e.ReturnCancelPercent,
			"healthStatus":        string(e.HealthStatus),
			"command":             string(e.Command),
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
