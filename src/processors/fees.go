package processors

import "github.com/LinhLe223/GMV-MAX/src/models"

// ApplyCostStructure computes the fees owed on an entity's net revenue and successful orders.
func ApplyCostStructure(nmv float64, successOrders int, cost models.CostStructure) models.FeeBreakdown {
	fees := models.FeeBreakdown{
		Platform:  nmv * cost.PlatformFeePercent / 100,
		Operating: feeAmount(cost.OperatingFee.Type, cost.OperatingFee.Value, nmv, successOrders),
	}
	for _, oc := range cost.OtherCosts {
		fees.Other += feeAmount(oc.Type, oc.Value, nmv, successOrders)
	}
	return fees
}

func feeAmount(t models.FeeType, value, nmv float64, successOrders int) float64 {
	if t == models.FeePercent {
		return nmv * value / 100
	}
	return value * float64(successOrders)
}
