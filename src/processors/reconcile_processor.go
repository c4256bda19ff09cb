package processors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// ErrMissingPrerequisite is returned when reconciliation is attempted without ads data.
var ErrMissingPrerequisite = errors.New("ads data not loaded: load the ads file first")

// DefaultUnmappedThreshold is the share of total ad GMV above which an ad-only entity is reported.
const DefaultUnmappedThreshold = 0.005

// ReconcileInput is everything one reconciliation pass reads.
type ReconcileInput struct {
	Ads       []models.AdRecord
	Orders    []models.OrderRecord
	Inventory []models.InventoryRecord
	Cost      models.CostStructure
}

// ReconcileOptions tune thresholds that are otherwise fixed.
type ReconcileOptions struct {
	UnmappedThreshold float64
	PeriodDays        float64
}

// ReconcileResult is the entity set of one kind plus its diagnostics.
type ReconcileResult struct {
	Kind         models.EntityKind         `json:"kind"`
	Entities     []models.ReconciledEntity `json:"entities"`
	Unmapped     []models.ReconciledEntity `json:"unmapped"`
	NotFoundSkus []string                  `json:"notFoundSkus"`
	TotalAdsGmv  float64                   `json:"totalAdsGmv"`
}

type reconcileProcessorImpl struct {
	opts ReconcileOptions
}

func NewReconcileProcessor(opts ReconcileOptions) ReconcileProcessor {
	if opts.UnmappedThreshold <= 0 {
		opts.UnmappedThreshold = DefaultUnmappedThreshold
	}
	if opts.PeriodDays <= 0 {
		opts.PeriodDays = DefaultPeriodDays
	}
	return &reconcileProcessorImpl{opts: opts}
}

// entityStrategy supplies what differs between the creator and product variants.
// Everything else (fold, COGS, fees, ratios, unmapped detection) is shared.
type entityStrategy interface {
	kind() models.EntityKind
	adKey(a models.AdRecord) (string, bool)
	orderKey(o models.OrderRecord) string
	describeFromAd(e *models.ReconciledEntity, a models.AdRecord)
	describeFromOrder(e *models.ReconciledEntity, o models.OrderRecord)
	stock(acc *accumulator, resolver *CogsResolver) int
	health() healthPolicy
	command(e *models.ReconciledEntity) models.Command
	finish(acc *accumulator)
}

func strategyFor(kind models.EntityKind) (entityStrategy, error) {
	switch kind {
	case models.KindCreator:
		return creatorStrategy{}, nil
	case models.KindProduct:
		return productStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

type accumulator struct {
	entity     models.ReconciledEntity
	soldBySKU  map[string]int
	skuOrder   []string
	topOrder   *models.OrderRecord
	topRevenue float64
	described  bool
}

func newAccumulator(kind models.EntityKind, key string) *accumulator {
	return &accumulator{
		entity:    models.ReconciledEntity{Kind: kind, Key: key},
		soldBySKU: make(map[string]int),
	}
}

func (p *reconcileProcessorImpl) Process(kind models.EntityKind, in ReconcileInput) (*ReconcileResult, error) {
	if len(in.Ads) == 0 {
		return nil, ErrMissingPrerequisite
	}
	strategy, err := strategyFor(kind)
	if err != nil {
		return nil, err
	}

	accs := make(map[string]*accumulator)
	get := func(key string) *accumulator {
		acc, ok := accs[key]
		if !ok {
			acc = newAccumulator(kind, key)
			accs[key] = acc
		}
		return acc
	}

	totalAdsGmv := 0.0
	for _, ad := range in.Ads {
		totalAdsGmv += ad.Gmv
		key, ok := strategy.adKey(ad)
		if !ok {
			continue
		}
		acc := get(key)
		if !acc.entity.HasAds {
			strategy.describeFromAd(&acc.entity, ad)
			acc.entity.HasAds = true
		}
		acc.entity.AdsCost += ad.Cost
		acc.entity.AdsGmv += ad.Gmv
	}

	resolver := NewCogsResolver(in.Inventory)
	for i := range in.Orders {
		order := in.Orders[i]
		acc := get(strategy.orderKey(order))
		if !acc.described {
			strategy.describeFromOrder(&acc.entity, order)
			acc.described = true
		}
		foldOrder(acc, order, resolver)
	}

	result := &ReconcileResult{Kind: kind, TotalAdsGmv: totalAdsGmv}
	keys := make([]string, 0, len(accs))
	for key := range accs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		acc := accs[key]
		strategy.finish(acc)
		e := &acc.entity
		if e.Name == "" {
			e.Name = key
		}

		applyFinancials(e, in.Cost)

		e.StockQuantity = strategy.stock(acc, resolver)
		applyStockCover(e, p.opts.PeriodDays)

		e.HealthStatus = strategy.health().classify(e.NetProfit, e.AdsCost)
		e.Command = strategy.command(e)

		result.Entities = append(result.Entities, *e)
		if e.HasAds && e.TotalOrders == 0 && e.AdsGmv > totalAdsGmv*p.opts.UnmappedThreshold {
			result.Unmapped = append(result.Unmapped, *e)
		}
	}

	sort.SliceStable(result.Unmapped, func(i, j int) bool {
		return result.Unmapped[i].AdsGmv > result.Unmapped[j].AdsGmv
	})
	result.NotFoundSkus = resolver.NotFound()
	if result.Entities == nil {
		result.Entities = []models.ReconciledEntity{}
	}
	if result.Unmapped == nil {
		result.Unmapped = []models.ReconciledEntity{}
	}
	return result, nil
}

// foldOrder adds one order line to its entity. Failed lines only count.
func foldOrder(acc *accumulator, o models.OrderRecord, resolver *CogsResolver) {
	e := &acc.entity
	e.TotalOrders++
	e.TotalGmv += o.Revenue

	if IsFailedOrder(o) {
		e.FailedOrders++
		return
	}

	lineCogs, found := resolver.ResolveOrder(o)
	e.SuccessOrders++
	e.Nmv += o.Revenue
	e.TotalCommission += o.Commission
	e.TotalCogs += lineCogs
	e.GrossProfit += o.Revenue - lineCogs
	if found {
		e.CogsFoundCount++
	}

	if acc.topOrder == nil || o.Revenue > acc.topRevenue {
		order := o
		acc.topOrder = &order
		acc.topRevenue = o.Revenue
	}

	if sku := strings.TrimSpace(o.SellerSKU); sku != "" {
		if _, seen := acc.soldBySKU[sku]; !seen {
			acc.skuOrder = append(acc.skuOrder, sku)
		}
		acc.soldBySKU[sku] += o.Qty()
	}
	e.SoldQuantity += o.Qty()
}

// applyFinancials derives fees, profit and ROAS figures from the folded totals.
func applyFinancials(e *models.ReconciledEntity, cost models.CostStructure) {
	e.Fees = ApplyCostStructure(e.Nmv, e.SuccessOrders, cost)
	fees := e.Fees.Total()

	e.NetProfit = e.Nmv - e.TotalCogs - e.TotalCommission - e.AdsCost - fees

	if e.AdsCost > 0 {
		e.RealRoas = e.Nmv / e.AdsCost
	}

	contribution := e.Nmv - e.TotalCogs - e.TotalCommission - fees
	if contribution > 0 {
		e.BreakEvenRoas = e.Nmv / contribution
	} else {
		e.BreakEvenUnbounded = true
	}

	if e.TotalOrders > 0 {
		e.ReturnCancelPercent = float64(e.FailedOrders) / float64(e.TotalOrders) * 100
	}
}

func applyStockCover(e *models.ReconciledEntity, periodDays float64) {
	if e.StockQuantity == models.UnknownStock {
		e.DaysOnHandDisplay = "N/A"
		return
	}
	cover := DaysOnHand(e.StockQuantity, e.SoldQuantity, periodDays)
	e.DaysOnHand = cover.Days
	e.DaysOnHandDisplay = cover.Display
	e.OutOfStock = cover.OutOfStock
	e.DaysUnbounded = cover.Unbounded
}

// CreatorKey is the join key of the creator an order is attributed to.
func CreatorKey(o models.OrderRecord) string {
	return utils.NormalizeIdentity(o.Creator())
}

// ProductKey prefers the platform product id and falls back to the seller SKU.
func ProductKey(o models.OrderRecord) string {
	if id := strings.TrimSpace(o.ProductID); id != "" {
		return id
	}
	if sku := strings.TrimSpace(o.SellerSKU); sku != "" {
		return sku
	}
	return utils.UnknownIdentity
}

type creatorStrategy struct{}

func (creatorStrategy) kind() models.EntityKind { return models.KindCreator }

func (creatorStrategy) adKey(a models.AdRecord) (string, bool) {
	if !a.IsCreatorVideo() {
		return "", false
	}
	return utils.NormalizeIdentity(a.Account), true
}

func (creatorStrategy) orderKey(o models.OrderRecord) string { return CreatorKey(o) }

func (creatorStrategy) describeFromAd(e *models.ReconciledEntity, a models.AdRecord) {
	e.Name = a.Account
}

func (creatorStrategy) describeFromOrder(e *models.ReconciledEntity, o models.OrderRecord) {
	if e.Name == "" {
		e.Name = o.Creator()
	}
}

// stock sums inventory over the distinct SKUs the creator sold.
func (creatorStrategy) stock(acc *accumulator, resolver *CogsResolver) int {
	total := 0
	for _, sku := range acc.skuOrder {
		if s, ok := resolver.StockFor(sku); ok {
			total += s
		}
	}
	return total
}

func (creatorStrategy) health() healthPolicy { return creatorHealth }

func (creatorStrategy) command(e *models.ReconciledEntity) models.Command { return creatorCommand(e) }

func (creatorStrategy) finish(acc *accumulator) {
	o := acc.topOrder
	if o == nil {
		return
	}
	handle, video := strings.TrimSpace(o.KocUsername), strings.TrimSpace(o.VideoID)
	if handle != "" && video != "" {
		acc.entity.LatestVideoLink = fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", handle, video)
	}
}

type productStrategy struct{}

func (productStrategy) kind() models.EntityKind { return models.KindProduct }

func (productStrategy) adKey(a models.AdRecord) (string, bool) {
	id := strings.TrimSpace(a.ProductID)
	return id, id != ""
}

func (productStrategy) orderKey(o models.OrderRecord) string { return ProductKey(o) }

func (productStrategy) describeFromAd(e *models.ReconciledEntity, a models.AdRecord) {
	e.ProductID = strings.TrimSpace(a.ProductID)
	e.Name = e.ProductID
}

func (productStrategy) describeFromOrder(e *models.ReconciledEntity, o models.OrderRecord) {
	if o.ProductName != "" {
		e.Name = o.ProductName
	}
	if e.ProductID == "" {
		e.ProductID = strings.TrimSpace(o.ProductID)
	}
	e.SKU = strings.TrimSpace(o.SellerSKU)
}

func (productStrategy) stock(acc *accumulator, resolver *CogsResolver) int {
	if !acc.described {
		return models.UnknownStock
	}
	if s, ok := resolver.StockForProduct(acc.entity.SKU, acc.entity.Name); ok {
		return s
	}
	return models.UnknownStock
}

func (productStrategy) health() healthPolicy { return productHealth }

func (productStrategy) command(e *models.ReconciledEntity) models.Command { return productCommand(e) }

func (productStrategy) finish(*accumulator) {}
