package processors

import (
	"github.com/LinhLe223/GMV-MAX/src/models"
)

// ReconcileProcessor merges ads, orders and inventory into per-entity P&L records.
type ReconcileProcessor interface {
	Process(kind models.EntityKind, in ReconcileInput) (*ReconcileResult, error)
}

// AdsProcessor folds raw ad rows into per-creator, per-product and whole-file views.
type AdsProcessor interface {
	ByCreator(ads []models.AdRecord) []models.AdAggregate
	ByProduct(ads []models.AdRecord) []models.AdAggregate
	ByCampaign(ads []models.AdRecord) []models.AdAggregate
	CreatorsByProduct(ads []models.AdRecord, product string) []models.AdAggregate
	Summary(ads []models.AdRecord) models.AdsSummary
	RoiDistribution(ads []models.AdRecord) []models.RoiBucket
}
