package reports

import (
	"sort"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

const DefaultSortKey = "netProfit_desc"

type lessFunc func(a, b *models.ReconciledEntity) bool

func desc(v func(e *models.ReconciledEntity) float64) lessFunc {
	return func(a, b *models.ReconciledEntity) bool { return v(a) > v(b) }
}

func asc(v func(e *models.ReconciledEntity) float64) lessFunc {
	return func(a, b *models.ReconciledEntity) bool { return v(a) < v(b) }
}

var sorters = map[string]lessFunc{
	"netProfit_desc":           desc(func(e *models.ReconciledEntity) float64 { return e.NetProfit }),
	"netProfit_asc":            asc(func(e *models.ReconciledEntity) float64 { return e.NetProfit }),
	"nmv_desc":                 desc(func(e *models.ReconciledEntity) float64 { return e.Nmv }),
	"returnCancelPercent_asc":  asc(func(e *models.ReconciledEntity) float64 { return e.ReturnCancelPercent }),
	"returnCancelPercent_desc": desc(func(e *models.ReconciledEntity) float64 { return e.ReturnCancelPercent }),
	"totalCommission_desc":     desc(func(e *models.ReconciledEntity) float64 { return e.TotalCommission }),
	"totalCogs_desc":           desc(func(e *models.ReconciledEntity) float64 { return e.TotalCogs }),
	"adsCost_desc":             desc(func(e *models.ReconciledEntity) float64 { return e.AdsCost }),
	"gmv_desc":                 desc(func(e *models.ReconciledEntity) float64 { return e.TotalGmv }),
	"realRoas_desc":            desc(func(e *models.ReconciledEntity) float64 { return e.RealRoas }),
	"daysOnHand_asc":           asc(func(e *models.ReconciledEntity) float64 { return e.DaysOnHand }),
}

// SortKeys lists the accepted sort keys.
func SortKeys() []string {
	keys := make([]string, 0, len(sorters))
	for k := range sorters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortEntities returns a sorted copy. Unknown keys sort by net profit, descending; ties fall back to the key.
func SortEntities(list []models.ReconciledEntity, sortKey string) []models.ReconciledEntity {
	less, ok := sorters[sortKey]
	if !ok {
		less = sorters[DefaultSortKey]
	}
	out := make([]models.ReconciledEntity, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.Key < b.Key
	})
	return out
}

// Filter narrows an entity list. Empty fields match everything.
type Filter struct {
	Search  string
	Health  models.HealthStatus
	Command models.Command
	Bcg     models.Quadrant
}

// FilterEntities keeps the entities matching every set field of f.
// Search is accent- and case-insensitive over name and key.
func FilterEntities(list []models.ReconciledEntity, f Filter) []models.ReconciledEntity {
	search := utils.NormalizeName(f.Search)
	out := make([]models.ReconciledEntity, 0, len(list))
	for _, e := range list {
		if f.Health != "" && e.HealthStatus != f.Health {
			continue
		}
		if f.Command != "" && e.Command != f.Command {
			continue
		}
		if f.Bcg != "" && e.Bcg != f.Bcg {
			continue
		}
		if search != "" &&
			!strings.Contains(utils.NormalizeName(e.Name), search) &&
			!strings.Contains(utils.NormalizeName(e.Key), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}
