package services

import (
	"time"

	"github.com/LinhLe223/GMV-MAX/src/model"
	"github.com/LinhLe223/GMV-MAX/src/models"
)

// SourceInfo describes one of the files a generation was built from.
type SourceInfo struct {
	Kind        models.FileKind `json:"kind"`
	FileName    string          `json:"fileName"`
	ContentHash string          `json:"contentHash"`
	HeaderRow   int             `json:"headerRow"`
	RowCount    int             `json:"rowCount"`
}

// Generation is one complete, immutable reconciliation of a set of source files.
// It is replaced wholesale and never modified after it is published.
type Generation struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`

	Creators         []models.ReconciledEntity `json:"-"`
	Products         []models.ReconciledEntity `json:"-"`
	UnmappedCreators []models.ReconciledEntity `json:"-"`
	UnmappedProducts []models.ReconciledEntity `json:"-"`
	NotFoundSkus     []string                  `json:"notFoundSkus"`

	UnmappedFields map[models.FileKind][]string `json:"unmappedFields"`
	AdsSummary     models.AdsSummary            `json:"-"`
	Campaigns      []models.AdAggregate         `json:"-"`
	Sources        []SourceInfo                 `json:"sources"`
	Cost           models.CostStructure         `json:"-"`

	Ads       []models.AdRecord        `json:"-"`
	Orders    []models.OrderRecord     `json:"-"`
	Inventory []models.InventoryRecord `json:"-"`

	raw          map[models.FileKind]SourceFile
	creatorIndex map[string]int
	productIndex map[string]int
}

func (g *Generation) entities(kind models.EntityKind) []models.ReconciledEntity {
	if kind == models.KindProduct {
		return g.Products
	}
	return g.Creators
}

func (g *Generation) unmapped(kind models.EntityKind) []models.ReconciledEntity {
	if kind == models.KindProduct {
		return g.UnmappedProducts
	}
	return g.UnmappedCreators
}

func (g *Generation) hasCreator(key string) bool {
	_, ok := g.creatorIndex[key]
	return ok
}

func (g *Generation) hasProduct(key string) bool {
	_, ok := g.productIndex[key]
	return ok
}

func indexByKey(list []models.ReconciledEntity) map[string]int {
	idx := make(map[string]int, len(list))
	for i, e := range list {
		idx[e.Key] = i
	}
	return idx
}

// Diagnostics is the data-quality view of the current generation.
type Diagnostics struct {
	GenerationID   string                       `json:"generationId"`
	Hash           string                       `json:"hash"`
	CreatedAt      time.Time                    `json:"createdAt"`
	NotFoundSkus   []string                     `json:"notFoundSkus"`
	UnmappedFields map[models.FileKind][]string `json:"unmappedFields"`
	Sources        []SourceInfo                 `json:"sources"`
	RecentRuns     []model.Run                  `json:"recentRuns"`
}
