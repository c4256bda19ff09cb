package processors

import (
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// MatchTier tells which rule resolved a unit cost.
type MatchTier int

const (
	TierNone MatchTier = iota
	TierExact
	TierPartial
	TierName
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPartial:
		return "partial"
	case TierName:
		return "name"
	default:
		return "none"
	}
}

type skuEntry struct {
	sku  string
	item models.InventoryRecord
}

type nameEntry struct {
	name string
	item models.InventoryRecord
}

// CogsResolver looks up unit costs in the inventory and remembers the SKUs it could not resolve.
// It is not safe for concurrent use.
type CogsResolver struct {
	exact    map[string]models.InventoryRecord
	skus     []skuEntry
	names    []nameEntry
	notFound []string
	seen     map[string]bool
}

func NewCogsResolver(inventory []models.InventoryRecord) *CogsResolver {
	r := &CogsResolver{
		exact: make(map[string]models.InventoryRecord, len(inventory)),
		seen:  make(map[string]bool),
	}
	for _, item := range inventory {
		sku := utils.NormalizeSKU(item.SKU)
		if sku != "" {
			if _, dup := r.exact[sku]; !dup {
				r.exact[sku] = item
			}
			r.skus = append(r.skus, skuEntry{sku: sku, item: item})
		}
		if name := utils.NormalizeName(item.Name); name != "" {
			r.names = append(r.names, nameEntry{name: name, item: item})
		}
	}
	return r
}

// Resolve returns the unit cost for an order line: exact SKU, then an inventory
// SKU contained in the order SKU, then an inventory name contained in the product name.
func (r *CogsResolver) Resolve(sku, productName string) (float64, MatchTier) {
	orderSKU := utils.NormalizeSKU(sku)
	if orderSKU != "" {
		if item, ok := r.exact[orderSKU]; ok {
			return item.Cogs, TierExact
		}
		for _, e := range r.skus {
			if strings.Contains(orderSKU, e.sku) {
				return e.item.Cogs, TierPartial
			}
		}
	}
	if name := utils.NormalizeName(productName); name != "" {
		for _, e := range r.names {
			if strings.Contains(name, e.name) {
				return e.item.Cogs, TierName
			}
		}
	}
	return 0, TierNone
}

// ResolveOrder returns the line cost (unit cost times quantity) and records unresolved lines.
// A matched inventory row without a positive cost counts as unresolved.
func (r *CogsResolver) ResolveOrder(o models.OrderRecord) (float64, bool) {
	unit, tier := r.Resolve(o.SellerSKU, o.ProductName)
	if tier == TierNone || unit <= 0 {
		r.markNotFound(o)
		return 0, false
	}
	return unit * float64(o.Qty()), true
}

func (r *CogsResolver) markNotFound(o models.OrderRecord) {
	label := strings.TrimSpace(o.SellerSKU)
	if label == "" {
		label = strings.TrimSpace(o.ProductName)
	}
	if label == "" || r.seen[label] {
		return
	}
	r.seen[label] = true
	r.notFound = append(r.notFound, label)
}

// NotFound lists unresolved SKUs in first-seen order.
func (r *CogsResolver) NotFound() []string {
	out := make([]string, len(r.notFound))
	copy(out, r.notFound)
	return out
}

// StockFor returns the stock of the inventory item with exactly this SKU.
func (r *CogsResolver) StockFor(sku string) (int, bool) {
	item, ok := r.exact[utils.NormalizeSKU(sku)]
	return item.Stock, ok
}

// StockForProduct finds a product's stock by SKU, then by exact normalized name.
func (r *CogsResolver) StockForProduct(sku, productName string) (int, bool) {
	if stock, ok := r.StockFor(sku); ok {
		return stock, true
	}
	if name := utils.NormalizeName(productName); name != "" {
		for _, e := range r.names {
			if e.name == name {
				return e.item.Stock, true
			}
		}
	}
	return 0, false
}
