package services

import (
	"context"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/reports"
)

// SourceFile is one uploaded export as raw bytes.
type SourceFile struct {
	Kind     models.FileKind
	FileName string
	Data     []byte
}

// ListQuery selects a page of reconciled entities.
type ListQuery struct {
	Sort    string
	Page    int
	PerPage int
	Filter  reports.Filter
}

// EntityPage is one page of a filtered, sorted entity list. Summary covers the whole filtered list.
type EntityPage struct {
	Items   []models.ReconciledEntity `json:"items"`
	Page    reports.Page              `json:"page"`
	Summary reports.Summary           `json:"summary"`
}

// ReconciliationService owns the loaded dataset and every view derived from it.
type ReconciliationService interface {
	Ingest(ctx context.Context, files []SourceFile) (*Generation, error)
	Restore(ctx context.Context) error
	Current() (*Generation, error)
	Reset(ctx context.Context) error

	CostStructure() models.CostStructure
	SetCostStructure(ctx context.Context, cs models.CostStructure) error

	Entities(kind models.EntityKind, q ListQuery) (*EntityPage, error)
	Summary(kind models.EntityKind) (reports.Summary, error)
	Unmapped(kind models.EntityKind) ([]models.ReconciledEntity, error)
	Export(kind models.EntityKind) ([][]string, error)

	CreatorVideos(key string) ([]reports.VideoPnl, error)
	CreatorOrders(key string) ([]reports.OrderLine, error)
	ProductCreators(key string) ([]reports.ProductCreator, error)

	AdsSummary() (models.AdsSummary, error)
	Campaigns() ([]models.AdAggregate, error)
	AdCreators(product string) ([]models.AdAggregate, error)
	RoiDistribution() ([]models.RoiBucket, error)

	Analysis() (map[string]interface{}, error)
	Diagnostics() (*Diagnostics, error)
}
