package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/LinhLe223/GMV-MAX/src/models"
)

func videoAd(account string, cost, gmv float64) models.AdRecord {
	return models.AdRecord{
		Campaign:     "Campaign 1",
		ProductID:    "P1",
		VideoID:      "v-" + account,
		Account:      account,
		CreativeType: "Video",
		Cost:         cost,
		Gmv:          gmv,
	}
}

// scenarioA: one creator, ten successful orders and full COGS coverage.
func scenarioA() ReconcileInput {
	orders := make([]models.OrderRecord, 0, 10)
	for i := 0; i < 10; i++ {
		orders = append(orders, models.OrderRecord{
			OrderID:     "o" + string(rune('0'+i)),
			KocUsername: "Koc A ",
			SellerSKU:   "SKU-1",
			ProductID:   "P1",
			ProductName: "Serum",
			VideoID:     "111",
			Revenue:     200000,
			Commission:  20000,
			Status:      "Đã giao",
			Quantity:    1,
		})
	}
	return ReconcileInput{
		Ads:       []models.AdRecord{videoAd("koc_a", 500000, 2500000)},
		Orders:    orders,
		Inventory: []models.InventoryRecord{{SKU: "sku-1", Stock: 100, Cogs: 80000, Name: "Serum"}},
		Cost:      models.DefaultCostStructure(),
	}
}

func findEntity(t *testing.T, res *ReconcileResult, key string) models.ReconciledEntity {
	t.Helper()
	for _, e := range res.Entities {
		if e.Key == key {
			return e
		}
	}
	require.FailNowf(t, "entity not found", "key %q", key)
	return models.ReconciledEntity{}
}

func TestReconcileCreatorScenarioA(t *testing.T) {
	p := NewReconcileProcessor(ReconcileOptions{})
	res, err := p.Process(models.KindCreator, scenarioA())
	require.NoError(t, err)
	require.Len(t, res.Entities, 1, "ad handle and order handle join on one key")

	e := findEntity(t, res, "koca")
	assert.True(t, e.HasAds)
	assert.Equal(t, 10, e.TotalOrders)
	assert.Equal(t, 10, e.SuccessOrders)
	assert.InDelta(t, 2000000.0, e.Nmv, 1e-6)
	assert.InDelta(t, 200000.0, e.TotalCommission, 1e-6)
	assert.InDelta(t, 800000.0, e.TotalCogs, 1e-6)
	assert.InDelta(t, 500000.0, e.NetProfit, 1e-6)
	assert.InDelta(t, 4.0, e.RealRoas, 1e-9)
	assert.InDelta(t, 2000000.0/1000000.0, e.BreakEvenRoas, 1e-9)
	assert.False(t, e.BreakEvenUnbounded)
	assert.Equal(t, 10, e.CogsFoundCount)
	assert.Equal(t, "https://www.tiktok.com/@Koc A/video/111", e.LatestVideoLink)
	assert.Equal(t, 100, e.StockQuantity)
	assert.Equal(t, 10, e.SoldQuantity)
	assert.Equal(t, "300 ngày", e.DaysOnHandDisplay)
	assert.Empty(t, res.Unmapped)
	assert.Empty(t, res.NotFoundSkus)
}

func TestReconcileFailedOrder(t *testing.T) {
	in := scenarioA()
	in.Orders = append(in.Orders, models.OrderRecord{
		OrderID:     "cancelled",
		KocUsername: "koc_a",
		SellerSKU:   "SKU-1",
		Revenue:     999999,
		Commission:  99999,
		Status:      "Đã hủy",
	})

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	e := findEntity(t, res, "koca")

	assert.Equal(t, 11, e.TotalOrders)
	assert.Equal(t, 1, e.FailedOrders)
	assert.Equal(t, 10, e.SuccessOrders)
	assert.InDelta(t, 2000000.0, e.Nmv, 1e-6, "failed order adds no revenue")
	assert.InDelta(t, 200000.0, e.TotalCommission, 1e-6)
	assert.InDelta(t, 800000.0, e.TotalCogs, 1e-6)
	assert.InDelta(t, 2999999.0, e.TotalGmv, 1e-6, "order GMV still counts it")
	assert.InDelta(t, 100.0/11.0, e.ReturnCancelPercent, 1e-9)
}

func TestReconcileRefundStatus(t *testing.T) {
	assert.True(t, IsFailedOrder(models.OrderRecord{Status: "Đã giao", ReturnStatus: "Đã hoàn tiền"}))
	assert.True(t, IsFailedOrder(models.OrderRecord{Status: "Canceled"}))
	assert.True(t, IsFailedOrder(models.OrderRecord{Status: "ĐÃ ĐÓNG"}))
	assert.False(t, IsFailedOrder(models.OrderRecord{Status: "Hoàn tất"}))
}

func TestFailedOrderDecomposedText(t *testing.T) {
	assert.True(t, IsFailedOrder(models.OrderRecord{Status: norm.NFD.String("Đã hủy")}))
	assert.True(t, IsFailedOrder(models.OrderRecord{Status: "Đã giao", ReturnStatus: norm.NFD.String("Đã hoàn tiền")}))

	in := scenarioA()
	for i := range in.Orders {
		in.Orders[i].Status = norm.NFD.String("Đã hủy")
	}
	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	for _, e := range res.Entities {
		assert.Zero(t, e.Nmv, "cancelled orders add no revenue")
		assert.Equal(t, e.TotalOrders, e.FailedOrders)
	}
}

func TestReconcileUnmapped(t *testing.T) {
	in := scenarioA()
	in.Ads = append(in.Ads,
		videoAd("ghost_creator", 300000, 900000),
		videoAd("tiny", 100, 10),
	)

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	require.Len(t, res.Unmapped, 1, "tiny is below the materiality threshold")
	assert.Equal(t, "ghostcreator", res.Unmapped[0].Key)
	assert.Zero(t, res.Unmapped[0].TotalOrders)
	assert.InDelta(t, 3400010.0, res.TotalAdsGmv, 1e-6)

	ghost := findEntity(t, res, "ghostcreator")
	assert.InDelta(t, -300000.0, ghost.NetProfit, 1e-6, "ad-only entities still carry their spend")
}

func TestReconcileMissingAds(t *testing.T) {
	in := scenarioA()
	in.Ads = nil
	_, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)

	_, err = NewReconcileProcessor(ReconcileOptions{}).Process(models.EntityKind("video"), scenarioA())
	assert.Error(t, err)
}

func TestReconcileOrganicAndNonVideoAds(t *testing.T) {
	in := scenarioA()
	in.Ads = append(in.Ads, models.AdRecord{ProductID: "P1", Account: models.UnknownAccount, CreativeType: "Thẻ sản phẩm", Cost: 1000, Gmv: 5000})
	in.Orders = append(in.Orders, models.OrderRecord{OrderID: "x", SellerSKU: "SKU-1", Revenue: 50000})

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	require.Len(t, res.Entities, 2)

	organic := findEntity(t, res, "organickhac")
	assert.Equal(t, models.OrganicCreator, organic.Name)
	assert.False(t, organic.HasAds)
	assert.Equal(t, 1, organic.SuccessOrders)
}

func TestReconcileProducts(t *testing.T) {
	in := scenarioA()
	in.Inventory = append(in.Inventory, models.InventoryRecord{SKU: "SKU-2", Stock: 0, Cogs: 10000, Name: "Toner"})
	in.Orders = append(in.Orders,
		models.OrderRecord{OrderID: "t1", KocUsername: "koc_b", SellerSKU: "SKU-2", ProductName: "Toner", Revenue: 100000},
		models.OrderRecord{OrderID: "n1", KocUsername: "koc_b", SellerSKU: "UNKNOWN-9", ProductName: "Mystery", Revenue: 100000},
	)

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindProduct, in)
	require.NoError(t, err)
	require.Len(t, res.Entities, 3)

	serum := findEntity(t, res, "P1")
	assert.Equal(t, "Serum", serum.Name)
	assert.InDelta(t, 500000.0, serum.NetProfit, 1e-6)
	assert.Equal(t, 100, serum.StockQuantity)

	toner := findEntity(t, res, "SKU-2")
	assert.Equal(t, 0, toner.StockQuantity)
	assert.True(t, toner.OutOfStock)
	assert.Equal(t, "Hết hàng", toner.DaysOnHandDisplay)
	assert.Equal(t, models.CommandStockOut, toner.Command)

	mystery := findEntity(t, res, "UNKNOWN-9")
	assert.Equal(t, models.UnknownStock, mystery.StockQuantity)
	assert.Equal(t, "N/A", mystery.DaysOnHandDisplay)
	assert.Equal(t, 0, mystery.CogsFoundCount)

	assert.Equal(t, []string{"UNKNOWN-9"}, res.NotFoundSkus)
}

func TestReconcileFees(t *testing.T) {
	in := scenarioA()
	in.Cost = models.CostStructure{
		PlatformFeePercent: 5,
		OperatingFee:       models.Fee{Type: models.FeeFixed, Value: 1000},
		OtherCosts: []models.OtherCost{
			{Name: "packaging", Type: models.FeeFixed, Value: 500},
			{Name: "tax", Type: models.FeePercent, Value: 1.5},
		},
	}

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	e := findEntity(t, res, "koca")

	assert.InDelta(t, 100000.0, e.Fees.Platform, 1e-6)
	assert.InDelta(t, 10000.0, e.Fees.Operating, 1e-6)
	assert.InDelta(t, 5000.0+30000.0, e.Fees.Other, 1e-6)
	assert.InDelta(t, 500000.0-145000.0, e.NetProfit, 1e-6)
}

func TestReconcileBreakEvenUnbounded(t *testing.T) {
	in := scenarioA()
	in.Inventory[0].Cogs = 500000

	res, err := NewReconcileProcessor(ReconcileOptions{}).Process(models.KindCreator, in)
	require.NoError(t, err)
	e := findEntity(t, res, "koca")
	assert.True(t, e.BreakEvenUnbounded)
	assert.Zero(t, e.BreakEvenRoas)
	assert.NotEqual(t, models.CommandScale, e.Command)
}

func TestReconcileDeterministic(t *testing.T) {
	in := scenarioA()
	in.Ads = append(in.Ads, videoAd("zeta", 1, 2), videoAd("alpha", 1, 2))
	p := NewReconcileProcessor(ReconcileOptions{})

	first, err := p.Process(models.KindCreator, in)
	require.NoError(t, err)
	second, err := p.Process(models.KindCreator, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	keys := make([]string, 0, len(first.Entities))
	for _, e := range first.Entities {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"alpha", "koca", "zeta"}, keys)
}

func TestCogsResolverTiers(t *testing.T) {
	r := NewCogsResolver([]models.InventoryRecord{
		{SKU: "abc123", Cogs: 10, Name: "Kem chống nắng"},
		{SKU: "ABC", Cogs: 20},
		{SKU: "", Cogs: 30, Name: "Sữa rửa mặt"},
	})

	cost, tier := r.Resolve("ABC123", "")
	assert.Equal(t, TierExact, tier)
	assert.Equal(t, 10.0, cost)

	cost, tier = r.Resolve("abc-999", "")
	assert.Equal(t, TierPartial, tier)
	assert.Equal(t, 20.0, cost)

	cost, tier = r.Resolve("zzz", "Combo SỮA RỬA MẶT 100ml")
	assert.Equal(t, TierName, tier)
	assert.Equal(t, 30.0, cost)

	_, tier = r.Resolve("", "")
	assert.Equal(t, TierNone, tier)
	assert.Equal(t, "exact", TierExact.String())
}

func TestCogsResolverNotFound(t *testing.T) {
	r := NewCogsResolver(nil)
	for _, o := range []models.OrderRecord{
		{SellerSKU: "X1", Quantity: 2},
		{SellerSKU: "X1"},
		{ProductName: "No SKU product"},
		{},
	} {
		cost, found := r.ResolveOrder(o)
		assert.False(t, found)
		assert.Zero(t, cost)
	}
	assert.Equal(t, []string{"X1", "No SKU product"}, r.NotFound())
}

func TestCogsResolverZeroCostIsNotFound(t *testing.T) {
	r := NewCogsResolver([]models.InventoryRecord{{SKU: "FREE-1", Stock: 5, Name: "Gift"}})
	cost, found := r.ResolveOrder(models.OrderRecord{SellerSKU: "FREE-1", Quantity: 3})
	assert.False(t, found)
	assert.Zero(t, cost)
	assert.Equal(t, []string{"FREE-1"}, r.NotFound())

	stock, ok := r.StockFor("free-1")
	assert.True(t, ok, "the item is still known for stock")
	assert.Equal(t, 5, stock)
}

func TestDaysOnHand(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		sold    int
		display string
		days    float64
		out     bool
		unbound bool
	}{
		{"out of stock while selling", 0, 10, "Hết hàng", 0, true, false},
		{"negative stock", -3, 0, "Hết hàng", 0, true, false},
		{"not selling", 50, 0, "> 999 ngày", MaxDaysOnHand, false, true},
		{"over a year", 1000, 10, "> 1 năm", 3000, false, false},
		{"normal", 30, 30, "30 ngày", 30, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DaysOnHand(tt.stock, tt.sold, DefaultPeriodDays)
			assert.Equal(t, tt.display, c.Display)
			assert.InDelta(t, tt.days, c.Days, 1e-9)
			assert.Equal(t, tt.out, c.OutOfStock)
			assert.Equal(t, tt.unbound, c.Unbounded)
		})
	}
}

func TestHealthAndCommands(t *testing.T) {
	assert.Equal(t, models.HealthBleeding, creatorHealth.classify(-600000, 2000000))
	assert.Equal(t, models.HealthNeutral, creatorHealth.classify(-600000, 500000))
	assert.Equal(t, models.HealthHealthy, creatorHealth.classify(600000, 0))
	assert.Equal(t, models.HealthBleeding, productHealth.classify(-1, 1000001))
	assert.Equal(t, models.HealthNeutral, productHealth.classify(900000, 0))

	alert := &models.ReconciledEntity{StockQuantity: 5, DaysOnHand: 3, HealthStatus: models.HealthHealthy}
	assert.Equal(t, models.CommandInventoryAlert, productCommand(alert))

	scale := &models.ReconciledEntity{HealthStatus: models.HealthHealthy, RealRoas: 4, BreakEvenRoas: 2, NetProfit: 600000}
	assert.Equal(t, models.CommandScale, creatorCommand(scale))
	scale.RealRoas = 1.5
	assert.Equal(t, models.CommandMaintain, creatorCommand(scale))
	assert.Equal(t, models.CommandOptimize, creatorCommand(&models.ReconciledEntity{NetProfit: -1}))
}
