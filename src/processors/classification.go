package processors

import (
	"fmt"
	"math"

	"github.com/LinhLe223/GMV-MAX/src/models"
)

const (
	// DefaultPeriodDays is the sales window the sold quantities cover.
	DefaultPeriodDays = 30
	// MaxDaysOnHand stands in for stock that is not selling at all.
	MaxDaysOnHand = 999
)

// StockCover is the days-on-hand estimate for one entity.
type StockCover struct {
	Days       float64
	Display    string
	OutOfStock bool
	Unbounded  bool
}

// DaysOnHand estimates how long stock lasts at the period's average daily sales.
// It never returns an infinite value.
func DaysOnHand(stock, sold int, periodDays float64) StockCover {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	if stock <= 0 {
		return StockCover{Days: 0, Display: "Hết hàng", OutOfStock: true}
	}
	if sold <= 0 {
		return StockCover{Days: MaxDaysOnHand, Display: "> 999 ngày", Unbounded: true}
	}
	days := float64(stock) / (float64(sold) / periodDays)
	if days > 365 {
		return StockCover{Days: days, Display: "> 1 năm"}
	}
	return StockCover{Days: days, Display: fmt.Sprintf("%d ngày", int(math.Round(days)))}
}

// healthPolicy holds the profit thresholds for one entity kind.
type healthPolicy struct {
	bleedingProfit float64
	bleedingAdCost float64
	healthyProfit  float64
}

var (
	creatorHealth = healthPolicy{bleedingProfit: -500000, bleedingAdCost: 1000000, healthyProfit: 500000}
	productHealth = healthPolicy{bleedingProfit: 0, bleedingAdCost: 1000000, healthyProfit: 1000000}
)

func (p healthPolicy) classify(netProfit, adsCost float64) models.HealthStatus {
	switch {
	case netProfit < p.bleedingProfit && adsCost > p.bleedingAdCost:
		return models.HealthBleeding
	case netProfit > p.healthyProfit:
		return models.HealthHealthy
	default:
		return models.HealthNeutral
	}
}

// creatorCommand recommends an action for a creator.
func creatorCommand(e *models.ReconciledEntity) models.Command {
	switch {
	case e.HealthStatus == models.HealthBleeding:
		return models.CommandKill
	case e.HealthStatus == models.HealthHealthy && !e.BreakEvenUnbounded && e.RealRoas > e.BreakEvenRoas && e.RealRoas > 1:
		return models.CommandScale
	case e.NetProfit > 0:
		return models.CommandMaintain
	default:
		return models.CommandOptimize
	}
}

// productCommand recommends an action for a product; stock signals come first.
func productCommand(e *models.ReconciledEntity) models.Command {
	switch {
	case e.StockQuantity == 0:
		return models.CommandStockOut
	case e.DaysOnHand > 0 && e.DaysOnHand < 7:
		return models.CommandInventoryAlert
	case e.HealthStatus == models.HealthBleeding:
		return models.CommandKill
	case e.HealthStatus == models.HealthHealthy:
		return models.CommandScale
	case e.NetProfit < 0:
		return models.CommandOptimize
	default:
		return models.CommandMaintain
	}
}
