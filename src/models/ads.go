package models

import "strings"

// UnknownAccount is the account label for ad rows without a usable creator handle.
const UnknownAccount = "Unknown"

// AdRecord is one row of the ads export.
type AdRecord struct {
	Campaign     string  `json:"campaign"`
	ProductID    string  `json:"productId"`
	VideoTitle   string  `json:"videoTitle"`
	VideoID      string  `json:"videoId"`
	Account      string  `json:"account"`
	CreativeType string  `json:"creativeType"`
	Cost         float64 `json:"cost"`
	Gmv          float64 `json:"gmv"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	Orders       int     `json:"orders"`
	Roi          float64 `json:"roi"`
	Ctr          float64 `json:"ctr"`
	Cvr          float64 `json:"cvr"`
	Cpc          float64 `json:"cpc"`
	Cir          float64 `json:"cir"`
	CostPerOrder float64 `json:"costPerOrder"`

	ViewRate2s  float64 `json:"viewRate2s"`
	ViewRate6s  float64 `json:"viewRate6s"`
	ViewRate25  float64 `json:"viewRate25"`
	ViewRate50  float64 `json:"viewRate50"`
	ViewRate75  float64 `json:"viewRate75"`
	ViewRate100 float64 `json:"viewRate100"`
}

// IsCreatorVideo reports whether the row is video content attributed to a known creator.
// Only these rows feed per-creator ad aggregates.
func (a AdRecord) IsCreatorVideo() bool {
	return strings.EqualFold(strings.TrimSpace(a.CreativeType), "video") && a.Account != "" && a.Account != UnknownAccount
}

// AdAggregate folds many ad rows sharing a creator or product key.
type AdAggregate struct {
	Key                 string  `json:"key"`
	DisplayName         string  `json:"displayName"`
	Cost                float64 `json:"cost"`
	Gmv                 float64 `json:"gmv"`
	Impressions         int     `json:"impressions"`
	Clicks              int     `json:"clicks"`
	Orders              int     `json:"orders"`
	Roi                 float64 `json:"roi"`
	Cir                 float64 `json:"cir"`
	Cpc                 float64 `json:"cpc"`
	Ctr                 float64 `json:"ctr"`
	Cvr                 float64 `json:"cvr"`
	VideoCount          int     `json:"videoCount"`
	ProductCount        int     `json:"productCount"`
	CreatorCount        int     `json:"creatorCount"`
	EffectiveVideoCount int     `json:"effectiveVideoCount"`
	TopProduct          string  `json:"topProduct,omitempty"`
	TopProductGmv       float64 `json:"topProductGmv"`
	TopCreator          string  `json:"topCreator,omitempty"`
	TopCreatorGmv       float64 `json:"topCreatorGmv"`
	TopVideo            string  `json:"topVideo,omitempty"`
	TopVideoRoi         float64 `json:"topVideoRoi"`
}

// ProductGmv is one entry of the top products list.
type ProductGmv struct {
	ProductID string  `json:"productId"`
	Gmv       float64 `json:"gmv"`
	Cost      float64 `json:"cost"`
}

// AdsSummary is the whole-file view of the ads export.
type AdsSummary struct {
	TotalGmv         float64      `json:"totalGmv"`
	TotalCost        float64      `json:"totalCost"`
	TotalImpressions int          `json:"totalImpressions"`
	TotalClicks      int          `json:"totalClicks"`
	TotalOrders      int          `json:"totalOrders"`
	CreatorCount     int          `json:"creatorCount"`
	VideoCount       int          `json:"videoCount"`
	AvgRoi           float64      `json:"avgRoi"`
	AvgCir           float64      `json:"avgCir"`
	AvgCpc           float64      `json:"avgCpc"`
	AvgCtr           float64      `json:"avgCtr"`
	AvgCvr           float64      `json:"avgCvr"`
	TopProducts      []ProductGmv `json:"topProducts"`
}

// RoiBucket counts ad rows falling into one ROI band.
type RoiBucket struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
	Gmv   float64 `json:"gmv"`
}
