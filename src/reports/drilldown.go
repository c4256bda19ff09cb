package reports

import (
	"sort"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/processors"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// NoVideo groups orders that carry no referring content id.
const NoVideo = "no-video"

// VideoPnl is the P&L of one referring video within a creator.
type VideoPnl struct {
	VideoID     string  `json:"videoId"`
	VideoName   string  `json:"videoName"`
	ProductName string  `json:"productName"`
	ProductID   string  `json:"productId"`
	Nmv         float64 `json:"nmv"`
	Cost        float64 `json:"cost"`
	Cogs        float64 `json:"cogs"`
	Commission  float64 `json:"commission"`
	Fees        float64 `json:"fees"`
	Profit      float64 `json:"profit"`
	Orders      int     `json:"orders"`
	ReturnCount int     `json:"returnCount"`
	Roi         float64 `json:"roi"`
	Cir         float64 `json:"cir"`
}

// OrderLine is one order of a creator with its resolved cost.
type OrderLine struct {
	OrderID     string  `json:"orderId"`
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	Status      string  `json:"status"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Cogs        float64 `json:"cogs"`
	CogsTier    string  `json:"cogsTier"`
	Commission  float64 `json:"commission"`
	NetProfit   float64 `json:"netProfit"`
	IsReturn    bool    `json:"isReturn"`
}

// ProductCreator is one creator's contribution to a product.
type ProductCreator struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	Nmv           float64 `json:"nmv"`
	Commission    float64 `json:"commission"`
	Cogs          float64 `json:"cogs"`
	GrossProfit   float64 `json:"grossProfit"`
	TotalOrders   int     `json:"totalOrders"`
	SuccessOrders int     `json:"successOrders"`
	FailedOrders  int     `json:"failedOrders"`
}

// lineCost resolves a line's COGS with the same three tiers the engine uses.
func lineCost(resolver *processors.CogsResolver, o models.OrderRecord) (float64, processors.MatchTier) {
	unit, tier := resolver.Resolve(o.SellerSKU, o.ProductName)
	return unit * float64(o.Qty()), tier
}

// CreatorVideos breaks one creator's orders down by referring video and charges
// each video the ad spend recorded for it.
func CreatorVideos(creatorKey string, orders []models.OrderRecord, ads []models.AdRecord, inventory []models.InventoryRecord, cost models.CostStructure) []VideoPnl {
	resolver := processors.NewCogsResolver(inventory)

	adCost := make(map[string]float64)
	adTitle := make(map[string]string)
	for _, a := range ads {
		if !a.IsCreatorVideo() || utils.NormalizeIdentity(a.Account) != creatorKey {
			continue
		}
		id := strings.TrimSpace(a.VideoID)
		if id == "" {
			continue
		}
		adCost[id] += a.Cost
		if _, ok := adTitle[id]; !ok {
			adTitle[id] = a.VideoTitle
		}
	}

	byVideo := make(map[string]*VideoPnl)
	successes := make(map[string]int)
	for _, o := range orders {
		if processors.CreatorKey(o) != creatorKey {
			continue
		}
		id := strings.TrimSpace(o.VideoID)
		if id == "" {
			id = NoVideo
		}
		v, ok := byVideo[id]
		if !ok {
			v = &VideoPnl{VideoID: id, ProductName: o.ProductName, ProductID: o.ProductID}
			byVideo[id] = v
		}
		v.Orders++
		if processors.IsFailedOrder(o) {
			v.ReturnCount++
			continue
		}
		c, _ := lineCost(resolver, o)
		v.Nmv += o.Revenue
		v.Commission += o.Commission
		v.Cogs += c
		successes[id]++
	}

	out := make([]VideoPnl, 0, len(byVideo))
	for id, v := range byVideo {
		v.Cost = adCost[id]
		v.VideoName = adTitle[id]
		if v.VideoName == "" {
			v.VideoName = "N/A"
		}
		v.Fees = processors.ApplyCostStructure(v.Nmv, successes[id], cost).Total()
		v.Profit = v.Nmv - v.Cogs - v.Commission - v.Cost - v.Fees
		v.Roi = utils.SafeDiv(v.Nmv, v.Cost)
		v.Cir = utils.SafeDiv(v.Cost, v.Nmv) * 100
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit > out[j].Profit
		}
		return out[i].VideoID < out[j].VideoID
	})
	return out
}

// CreatorOrders lists one creator's orders in file order. Failed lines carry no revenue.
func CreatorOrders(creatorKey string, orders []models.OrderRecord, inventory []models.InventoryRecord) []OrderLine {
	resolver := processors.NewCogsResolver(inventory)
	out := []OrderLine{}
	for _, o := range orders {
		if processors.CreatorKey(o) != creatorKey {
			continue
		}
		line := OrderLine{
			OrderID:     o.OrderID,
			ProductName: o.ProductName,
			SKU:         o.SellerSKU,
			Status:      o.Status,
			Quantity:    o.Qty(),
			Price:       o.Revenue,
			Commission:  o.Commission,
			IsReturn:    processors.IsFailedOrder(o),
		}
		var tier processors.MatchTier
		line.Cogs, tier = lineCost(resolver, o)
		line.CogsTier = tier.String()
		nmv := o.Revenue
		if line.IsReturn {
			nmv = 0
		}
		line.NetProfit = nmv - line.Cogs - line.Commission
		out = append(out, line)
	}
	return out
}

// ProductCreators lists the creators whose orders make up one product, by NMV.
func ProductCreators(productKey string, orders []models.OrderRecord, inventory []models.InventoryRecord) []ProductCreator {
	resolver := processors.NewCogsResolver(inventory)
	byCreator := make(map[string]*ProductCreator)
	for _, o := range orders {
		if processors.ProductKey(o) != productKey {
			continue
		}
		key := processors.CreatorKey(o)
		pc, ok := byCreator[key]
		if !ok {
			pc = &ProductCreator{Key: key, Name: o.Creator()}
			byCreator[key] = pc
		}
		pc.TotalOrders++
		if processors.IsFailedOrder(o) {
			pc.FailedOrders++
			continue
		}
		c, _ := lineCost(resolver, o)
		pc.SuccessOrders++
		pc.Nmv += o.Revenue
		pc.Commission += o.Commission
		pc.Cogs += c
		pc.GrossProfit += o.Revenue - c
	}

	out := make([]ProductCreator, 0, len(byCreator))
	for _, pc := range byCreator {
		out = append(out, *pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nmv != out[j].Nmv {
			return out[i].Nmv > out[j].Nmv
		}
		return out[i].Key < out[j].Key
	})
	return out
}
