package processors

import (
	"sort"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// EffectiveRoi is the ROI above which a video counts as effective.
const EffectiveRoi = 4

const topProductsLimit = 10

type adsProcessorImpl struct{}

func NewAdsProcessor() AdsProcessor {
	return &adsProcessorImpl{}
}

// adFold accumulates one group of ad rows.
type adFold struct {
	agg        models.AdAggregate
	weightedCv float64
	videos     map[string]bool
	effective  map[string]bool
	products   map[string]bool
	creators   map[string]bool
	productGmv map[string]float64
	creatorGmv map[string]float64
	topVideo   *models.AdRecord
	videoRows  int
	effRows    int
	countRows  bool
}

func newAdFold(key, name string) *adFold {
	return &adFold{
		agg:        models.AdAggregate{Key: key, DisplayName: name},
		videos:     make(map[string]bool),
		effective:  make(map[string]bool),
		products:   make(map[string]bool),
		creators:   make(map[string]bool),
		productGmv: make(map[string]float64),
		creatorGmv: make(map[string]float64),
	}
}

func (f *adFold) add(a models.AdRecord) {
	f.agg.Cost += a.Cost
	f.agg.Gmv += a.Gmv
	f.agg.Impressions += a.Impressions
	f.agg.Clicks += a.Clicks
	f.agg.Orders += a.Orders
	f.weightedCv += float64(a.Clicks) * a.Cvr

	product := productLabel(a)
	f.products[product] = true
	f.productGmv[product] += a.Gmv

	if !a.IsCreatorVideo() {
		return
	}
	f.videoRows++
	f.videos[a.VideoID] = true
	f.creators[a.Account] = true
	f.creatorGmv[a.Account] += a.Gmv
	if a.Roi > EffectiveRoi {
		f.effRows++
		f.effective[a.VideoID] = true
	}
	if f.topVideo == nil || a.Roi > f.topVideo.Roi {
		row := a
		f.topVideo = &row
	}
}

// finish derives ratios. Creator folds count video rows, the other folds distinct video ids.
func (f *adFold) finish() models.AdAggregate {
	agg := f.agg
	agg.Roi = utils.SafeDiv(agg.Gmv, agg.Cost)
	agg.Cir = utils.SafeDiv(agg.Cost, agg.Gmv) * 100
	agg.Cpc = utils.SafeDiv(agg.Cost, float64(agg.Clicks))
	agg.Ctr = utils.SafeDiv(float64(agg.Clicks), float64(agg.Impressions)) * 100
	agg.Cvr = utils.SafeDiv(f.weightedCv, float64(agg.Clicks))
	agg.ProductCount = len(f.products)
	agg.CreatorCount = len(f.creators)
	if f.countRows {
		agg.VideoCount = f.videoRows
		agg.EffectiveVideoCount = f.effRows
	} else {
		agg.VideoCount = len(f.videos)
		agg.EffectiveVideoCount = len(f.effective)
	}
	agg.TopProduct, agg.TopProductGmv = topEntry(f.productGmv)
	agg.TopCreator, agg.TopCreatorGmv = topEntry(f.creatorGmv)
	if f.topVideo != nil {
		agg.TopVideo = f.topVideo.VideoTitle
		agg.TopVideoRoi = f.topVideo.Roi
	}
	return agg
}

// productLabel names an ad row's product by campaign, falling back to the product id.
func productLabel(a models.AdRecord) string {
	if c := strings.TrimSpace(a.Campaign); c != "" {
		return c
	}
	return strings.TrimSpace(a.ProductID)
}

// topEntry returns the largest value, breaking ties by name.
func topEntry(m map[string]float64) (string, float64) {
	best, bestVal := "", 0.0
	for name, v := range m {
		if best == "" || v > bestVal || (v == bestVal && name < best) {
			best, bestVal = name, v
		}
	}
	return best, bestVal
}

type keyFunc func(a models.AdRecord) (key, name string, ok bool)

func group(ads []models.AdRecord, keyOf keyFunc, countRows bool) []models.AdAggregate {
	folds := make(map[string]*adFold)
	for _, a := range ads {
		key, name, ok := keyOf(a)
		if !ok {
			continue
		}
		f, exists := folds[key]
		if !exists {
			f = newAdFold(key, name)
			f.countRows = countRows
			folds[key] = f
		}
		f.add(a)
	}
	out := make([]models.AdAggregate, 0, len(folds))
	for _, f := range folds {
		out = append(out, f.finish())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gmv != out[j].Gmv {
			return out[i].Gmv > out[j].Gmv
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func creatorKey(a models.AdRecord) (string, string, bool) {
	if !a.IsCreatorVideo() {
		return "", "", false
	}
	return utils.NormalizeIdentity(a.Account), a.Account, true
}

// ByCreator aggregates creator video rows per normalized creator identity.
func (p *adsProcessorImpl) ByCreator(ads []models.AdRecord) []models.AdAggregate {
	return group(ads, creatorKey, true)
}

// ByProduct aggregates all rows per product id.
func (p *adsProcessorImpl) ByProduct(ads []models.AdRecord) []models.AdAggregate {
	return group(ads, func(a models.AdRecord) (string, string, bool) {
		id := strings.TrimSpace(a.ProductID)
		return id, productLabel(a), id != ""
	}, false)
}

// ByCampaign aggregates all rows per campaign name.
func (p *adsProcessorImpl) ByCampaign(ads []models.AdRecord) []models.AdAggregate {
	return group(ads, func(a models.AdRecord) (string, string, bool) {
		label := productLabel(a)
		return label, label, label != ""
	}, false)
}

// CreatorsByProduct aggregates the creators advertising one product, matched by campaign or product id.
func (p *adsProcessorImpl) CreatorsByProduct(ads []models.AdRecord, product string) []models.AdAggregate {
	product = strings.TrimSpace(product)
	return group(ads, func(a models.AdRecord) (string, string, bool) {
		if productLabel(a) != product && strings.TrimSpace(a.ProductID) != product {
			return "", "", false
		}
		return creatorKey(a)
	}, true)
}

func (p *adsProcessorImpl) Summary(ads []models.AdRecord) models.AdsSummary {
	s := models.AdsSummary{TopProducts: []models.ProductGmv{}}
	if len(ads) == 0 {
		return s
	}

	var weightedCv float64
	creators := make(map[string]bool)
	videos := make(map[string]bool)
	products := make(map[string]*models.ProductGmv)
	for _, a := range ads {
		s.TotalGmv += a.Gmv
		s.TotalCost += a.Cost
		s.TotalImpressions += a.Impressions
		s.TotalClicks += a.Clicks
		s.TotalOrders += a.Orders
		weightedCv += float64(a.Clicks) * a.Cvr

		pg, ok := products[a.ProductID]
		if !ok {
			pg = &models.ProductGmv{ProductID: a.ProductID}
			products[a.ProductID] = pg
		}
		pg.Gmv += a.Gmv
		pg.Cost += a.Cost

		if a.IsCreatorVideo() {
			creators[a.Account] = true
			videos[a.VideoID] = true
		}
	}

	s.CreatorCount = len(creators)
	s.VideoCount = len(videos)
	s.AvgRoi = utils.SafeDiv(s.TotalGmv, s.TotalCost)
	s.AvgCir = utils.SafeDiv(s.TotalCost, s.TotalGmv) * 100
	s.AvgCpc = utils.SafeDiv(s.TotalCost, float64(s.TotalClicks))
	s.AvgCtr = utils.SafeDiv(float64(s.TotalClicks), float64(s.TotalImpressions)) * 100
	s.AvgCvr = utils.SafeDiv(weightedCv, float64(s.TotalClicks))

	for _, pg := range products {
		s.TopProducts = append(s.TopProducts, *pg)
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		if s.TopProducts[i].Gmv != s.TopProducts[j].Gmv {
			return s.TopProducts[i].Gmv > s.TopProducts[j].Gmv
		}
		return s.TopProducts[i].ProductID < s.TopProducts[j].ProductID
	})
	if len(s.TopProducts) > topProductsLimit {
		s.TopProducts = s.TopProducts[:topProductsLimit]
	}
	return s
}

var roiBands = []struct {
	label string
	upper float64
}{
	{"<1", 1},
	{"1-2", 2},
	{"2-4", 4},
	{">=4", 0},
}

// RoiDistribution bins rows by ROI; the last band is open-ended.
func (p *adsProcessorImpl) RoiDistribution(ads []models.AdRecord) []models.RoiBucket {
	buckets := make([]models.RoiBucket, len(roiBands))
	for i, b := range roiBands {
		buckets[i].Label = b.label
	}
	for _, a := range ads {
		idx := len(roiBands) - 1
		for i, b := range roiBands[:len(roiBands)-1] {
			if a.Roi < b.upper {
				idx = i
				break
			}
		}
		buckets[idx].Count++
		buckets[idx].Cost += a.Cost
		buckets[idx].Gmv += a.Gmv
	}
	return buckets
}
