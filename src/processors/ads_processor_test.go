package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LinhLe223/GMV-MAX/src/models"
)

func sampleAds() []models.AdRecord {
	return []models.AdRecord{
		{Campaign: "Serum", ProductID: "P1", VideoID: "v1", VideoTitle: "Review serum", Account: "koc_a", CreativeType: "Video", Cost: 100, Gmv: 600, Roi: 6, Clicks: 10, Impressions: 1000, Cvr: 5},
		{Campaign: "Serum", ProductID: "P1", VideoID: "v2", VideoTitle: "Unbox", Account: "koc_b", CreativeType: "video", Cost: 200, Gmv: 300, Roi: 1.5, Clicks: 30, Impressions: 1000, Cvr: 1},
		{Campaign: "Serum", ProductID: "P1", VideoID: "v3", VideoTitle: "Again", Account: "koc_a", CreativeType: "Video", Cost: 100, Gmv: 100, Roi: 1},
		{Campaign: "Toner", ProductID: "P2", Account: models.UnknownAccount, CreativeType: "Thẻ sản phẩm", Cost: 50, Gmv: 100, Roi: 2},
	}
}

func TestAdsByCreator(t *testing.T) {
	p := NewAdsProcessor()
	got := p.ByCreator(sampleAds())
	require.Len(t, got, 2, "product cards are not creator videos")

	a := got[0]
	assert.Equal(t, "koca", a.Key)
	assert.Equal(t, "koc_a", a.DisplayName)
	assert.Equal(t, 200.0, a.Cost)
	assert.Equal(t, 700.0, a.Gmv)
	assert.InDelta(t, 3.5, a.Roi, 1e-9)
	assert.Equal(t, 2, a.VideoCount)
	assert.Equal(t, 1, a.EffectiveVideoCount)
	assert.Equal(t, 1, a.ProductCount)
	assert.Equal(t, "Serum", a.TopProduct)
	assert.Equal(t, "Review serum", a.TopVideo)
}

func TestAdsByCampaignAndProduct(t *testing.T) {
	p := NewAdsProcessor()
	campaigns := p.ByCampaign(sampleAds())
	require.Len(t, campaigns, 2)
	assert.Equal(t, "Serum", campaigns[0].Key)
	assert.Equal(t, 3, campaigns[0].VideoCount)
	assert.Equal(t, 2, campaigns[0].CreatorCount)
	assert.Equal(t, "koc_a", campaigns[0].TopCreator)
	assert.Equal(t, 0, campaigns[1].VideoCount)

	products := p.ByProduct(sampleAds())
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].Key)
	assert.Equal(t, "Serum", products[0].DisplayName)

	byProduct := p.CreatorsByProduct(sampleAds(), "P1")
	require.Len(t, byProduct, 2)
	assert.Equal(t, "koca", byProduct[0].Key)
	assert.Empty(t, p.CreatorsByProduct(sampleAds(), "P2"))
}

func TestAdsSummary(t *testing.T) {
	s := NewAdsProcessor().Summary(sampleAds())
	assert.Equal(t, 1100.0, s.TotalGmv)
	assert.Equal(t, 450.0, s.TotalCost)
	assert.Equal(t, 40, s.TotalClicks)
	assert.Equal(t, 2, s.CreatorCount)
	assert.Equal(t, 3, s.VideoCount)
	assert.InDelta(t, 1100.0/450.0, s.AvgRoi, 1e-9)
	assert.InDelta(t, 2.0, s.AvgCtr, 1e-9)
	assert.InDelta(t, (10*5.0+30*1.0)/40, s.AvgCvr, 1e-9)
	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, "P1", s.TopProducts[0].ProductID)

	empty := NewAdsProcessor().Summary(nil)
	assert.Zero(t, empty.TotalGmv)
	assert.NotNil(t, empty.TopProducts)
}

func TestRoiDistribution(t *testing.T) {
	buckets := NewAdsProcessor().RoiDistribution(sampleAds())
	require.Len(t, buckets, 4)
	counts := map[string]int{}
	for _, b := range buckets {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{"<1": 0, "1-2": 2, "2-4": 1, ">=4": 1}, counts)
}
