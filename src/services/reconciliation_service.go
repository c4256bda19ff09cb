package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/LinhLe223/GMV-MAX/src/config"
	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/model"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
	"github.com/LinhLe223/GMV-MAX/src/processors"
	"github.com/LinhLe223/GMV-MAX/src/reports"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

const (
	// Generations memoized by the content hash of their inputs.
	ckGeneration = "res_generation_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	recentRunsLimit = 10
)

type reconciliationServiceImpl struct {
	db              *sql.DB
	scanRows        int
	adCacheRowLimit int
	quotaBytes      int64
	reconciler      processors.ReconcileProcessor
	adsProcessor    processors.AdsProcessor
	resultCache     *cache.Cache

	// mu serializes writers. Readers only load current.
	mu      sync.Mutex
	cost    models.CostStructure
	current atomic.Pointer[Generation]
}

// NewReconciliationService wires the pipeline. A nil db disables the source
// cache and the run log.
func NewReconciliationService(db *sql.DB, cfg *config.AppConfig, cost models.CostStructure, resultCache *cache.Cache) ReconciliationService {
	if resultCache == nil {
		resultCache = cache.New(cfg.ResultCacheTTL, CacheCleanupInterval)
	}
	if cost.OtherCosts == nil {
		cost.OtherCosts = []models.OtherCost{}
	}
	return &reconciliationServiceImpl{
		db:              db,
		scanRows:        cfg.HeaderScanRows,
		adCacheRowLimit: cfg.AdCacheRowLimit,
		quotaBytes:      cfg.SourceCacheQuotaBytes,
		reconciler:      processors.NewReconcileProcessor(processors.ReconcileOptions{UnmappedThreshold: cfg.UnmappedThreshold}),
		adsProcessor:    processors.NewAdsProcessor(),
		resultCache:     resultCache,
		cost:            cost,
	}
}

func (s *reconciliationServiceImpl) Ingest(ctx context.Context, files []SourceFile) (*Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingestLocked(ctx, files, true)
}

// ingestLocked recomputes everything from the current sources overlaid with files.
// Any failure leaves the service with no generation loaded.
func (s *reconciliationServiceImpl) ingestLocked(ctx context.Context, files []SourceFile, persist bool) (*Generation, error) {
	log := logger.FromContext(ctx)
	overallStartTime := time.Now()
	log.Info("Ingest START", "files", len(files))

	sources, err := s.mergeSources(files)
	if err != nil {
		return nil, s.fail(ctx, "", err)
	}
	hash := s.contentHash(sources)
	cacheKey := fmt.Sprintf(ckGeneration, hash)

	if cached, found := s.resultCache.Get(cacheKey); found {
		gen := cached.(*Generation)
		s.current.Store(gen)
		log.Info("Cache hit for generation", "hash", hash, "generationID", gen.ID)
		if persist {
			s.persistSources(ctx, gen, files)
		}
		return gen, nil
	}
	log.Info("Cache miss for generation, reconciling", "hash", hash)

	gen, err := s.build(ctx, hash, sources)
	if err != nil {
		return nil, s.fail(ctx, hash, err)
	}

	s.current.Store(gen)
	s.resultCache.Set(cacheKey, gen, cache.DefaultExpiration)
	if persist {
		s.persistSources(ctx, gen, files)
	}
	s.logRun(ctx, &model.Run{
		ID:           gen.ID,
		ContentHash:  hash,
		CreatorCount: len(gen.Creators),
		ProductCount: len(gen.Products),
		NotFoundSkus: len(gen.NotFoundSkus),
		Status:       model.RunStatusOK,
	})

	log.Info("Ingest END", "generationID", gen.ID, "creators", len(gen.Creators), "products", len(gen.Products),
		"unmappedCreators", len(gen.UnmappedCreators), "notFoundSkus", len(gen.NotFoundSkus), "duration", time.Since(overallStartTime))
	return gen, nil
}

func (s *reconciliationServiceImpl) mergeSources(files []SourceFile) (map[models.FileKind]SourceFile, error) {
	sources := make(map[models.FileKind]SourceFile, len(models.AllFileKinds))
	if gen := s.current.Load(); gen != nil {
		for kind, src := range gen.raw {
			sources[kind] = src
		}
	}
	for _, f := range files {
		switch f.Kind {
		case models.FileAds, models.FileOrders, models.FileInventory:
		default:
			return nil, fmt.Errorf("%w: %w: %q", ErrParsingFailed, parsers.ErrUnknownFileKind, f.Kind)
		}
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrParsingFailed, f.FileName)
		}
		sources[f.Kind] = f
	}
	if _, ok := sources[models.FileAds]; !ok {
		return nil, ErrMissingPrerequisite
	}
	return sources, nil
}

func (s *reconciliationServiceImpl) contentHash(sources map[models.FileKind]SourceFile) string {
	h := sha256.New()
	for _, kind := range models.AllFileKinds {
		src, ok := sources[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(h, "%s:%s\n", kind, hashBytes(src.Data))
	}
	fmt.Fprintf(h, "cost:%s", costHash(s.cost))
	return hex.EncodeToString(h.Sum(nil))
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func costHash(cs models.CostStructure) string {
	data, err := json.Marshal(cs)
	if err != nil {
		// CostStructure holds only plain fields.
		return ""
	}
	return hashBytes(data)
}

func (s *reconciliationServiceImpl) build(ctx context.Context, hash string, sources map[models.FileKind]SourceFile) (*Generation, error) {
	log := logger.FromContext(ctx)

	gen := &Generation{
		ID:             uuid.NewString(),
		Hash:           hash,
		CreatedAt:      time.Now().UTC(),
		UnmappedFields: make(map[models.FileKind][]string),
		Sources:        []SourceInfo{},
		Cost:           s.cost,
		raw:            sources,
	}

	for _, kind := range models.AllFileKinds {
		src, ok := sources[kind]
		if !ok {
			continue
		}
		parser, err := parsers.GetParser(kind, s.scanRows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
		}
		startTime := time.Now()
		parsed, err := parser.Parse(bytes.NewReader(src.Data), src.FileName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParsingFailed, src.FileName, err)
		}
		log.Info("Parsed source file", "kind", kind, "fileName", src.FileName, "headerRow", parsed.HeaderRow,
			"rows", parsed.RowCount, "unmappedFields", len(parsed.UnmappedFields), "duration", time.Since(startTime))

		switch kind {
		case models.FileAds:
			gen.Ads = parsed.Ads
		case models.FileOrders:
			gen.Orders = parsed.Orders
		case models.FileInventory:
			gen.Inventory = parsed.Inventory
		}
		gen.UnmappedFields[kind] = parsed.UnmappedFields
		gen.Sources = append(gen.Sources, SourceInfo{
			Kind:        kind,
			FileName:    src.FileName,
			ContentHash: hashBytes(src.Data),
			HeaderRow:   parsed.HeaderRow,
			RowCount:    parsed.RowCount,
		})
	}

	in := processors.ReconcileInput{Ads: gen.Ads, Orders: gen.Orders, Inventory: gen.Inventory, Cost: s.cost}
	creators, err := s.reconciler.Process(models.KindCreator, in)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	products, err := s.reconciler.Process(models.KindProduct, in)
	if err != nil {
		return nil, wrapProcessing(err)
	}

	gen.Creators = reports.AnnotateBCG(creators.Entities)
	gen.Products = reports.AnnotateBCG(products.Entities)
	gen.UnmappedCreators = creators.Unmapped
	gen.UnmappedProducts = products.Unmapped
	gen.NotFoundSkus = mergeSkus(creators.NotFoundSkus, products.NotFoundSkus)
	gen.AdsSummary = s.adsProcessor.Summary(gen.Ads)
	gen.Campaigns = s.adsProcessor.ByCampaign(gen.Ads)
	gen.creatorIndex = indexByKey(gen.Creators)
	gen.productIndex = indexByKey(gen.Products)
	return gen, nil
}

func wrapProcessing(err error) error {
	if errors.Is(err, ErrMissingPrerequisite) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProcessingFailed, err)
}

func mergeSkus(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, sku := range list {
			if !seen[sku] {
				seen[sku] = true
				out = append(out, sku)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (s *reconciliationServiceImpl) fail(ctx context.Context, hash string, err error) error {
	s.current.Store(nil)
	logger.FromContext(ctx).Error("Ingest failed, dataset cleared", "hash", hash, "error", err)
	s.logRun(ctx, &model.Run{
		ID:          uuid.NewString(),
		ContentHash: hash,
		Status:      model.RunStatusFailed,
		Error:       err.Error(),
	})
	return err
}

func (s *reconciliationServiceImpl) logRun(ctx context.Context, run *model.Run) {
	if s.db == nil {
		return
	}
	if err := model.LogRun(s.db, run); err != nil {
		logger.FromContext(ctx).Warn("Failed to record reconciliation run", "runID", run.ID, "error", err)
	}
}

// persistSources caches the files uploaded in this call. Caching is best effort:
// a full cache is emptied so a later restore never mixes old and new files.
func (s *reconciliationServiceImpl) persistSources(ctx context.Context, gen *Generation, files []SourceFile) {
	if s.db == nil || len(files) == 0 {
		return
	}
	log := logger.FromContext(ctx)

	infos := make(map[models.FileKind]SourceInfo, len(gen.Sources))
	for _, info := range gen.Sources {
		infos[info.Kind] = info
	}

	for _, f := range files {
		info := infos[f.Kind]
		payload, name, rowCount, err := s.cachePayload(f, info)
		if err != nil {
			log.Warn("Skipping source cache for file", "kind", f.Kind, "fileName", f.FileName, "error", err)
			continue
		}
		err = model.SaveSourceFile(s.db, &model.SourceFile{
			Kind:        string(f.Kind),
			FileName:    name,
			ContentHash: info.ContentHash,
			RowCount:    rowCount,
			Payload:     payload,
		}, s.quotaBytes)
		if errors.Is(err, model.ErrStorageQuotaExceeded) {
			log.Warn("Source cache quota exceeded, clearing cache", "kind", f.Kind, "bytes", len(payload), "error", err)
			if clearErr := model.ClearSourceFiles(s.db); clearErr != nil {
				log.Error("Failed to clear source cache", "error", clearErr)
			}
			return
		}
		if err != nil {
			log.Warn("Failed to cache source file", "kind", f.Kind, "fileName", f.FileName, "error", err)
			continue
		}
		log.Debug("Cached source file", "kind", f.Kind, "fileName", name, "bytes", len(payload))
	}
}

// cachePayload keeps only the first AdCacheRowLimit data rows of a large ads
// file, re-encoded as CSV. Other kinds are cached as uploaded.
func (s *reconciliationServiceImpl) cachePayload(f SourceFile, info SourceInfo) ([]byte, string, int, error) {
	if f.Kind != models.FileAds || s.adCacheRowLimit <= 0 || info.RowCount <= s.adCacheRowLimit {
		return f.Data, f.FileName, info.RowCount, nil
	}
	rows, err := tabular.ReadRows(f.FileName, bytes.NewReader(f.Data))
	if err != nil {
		return nil, "", 0, err
	}
	end := utils.MinInt(info.HeaderRow+1+s.adCacheRowLimit, len(rows))
	data, err := tabular.WriteCSV(rows[:end])
	if err != nil {
		return nil, "", 0, err
	}
	name := strings.TrimSuffix(f.FileName, filepath.Ext(f.FileName)) + ".csv"
	return data, name, s.adCacheRowLimit, nil
}

// Restore rebuilds the last dataset from the source cache. Without a cached ads
// file it leaves the service empty.
func (s *reconciliationServiceImpl) Restore(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	stored, err := model.LoadSourceFiles(s.db)
	if err != nil {
		return fmt.Errorf("loading cached sources: %w", err)
	}

	files := make([]SourceFile, 0, len(stored))
	hasAds := false
	for _, sf := range stored {
		kind := models.FileKind(sf.Kind)
		if kind == models.FileAds {
			hasAds = true
		}
		files = append(files, SourceFile{Kind: kind, FileName: sf.FileName, Data: sf.Payload})
	}
	if !hasAds {
		log.Info("No cached ads source, starting with an empty dataset", "cachedFiles", len(files))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ingestLocked(ctx, files, false); err != nil {
		return fmt.Errorf("restoring cached dataset: %w", err)
	}
	return nil
}

func (s *reconciliationServiceImpl) Current() (*Generation, error) {
	gen := s.current.Load()
	if gen == nil {
		return nil, ErrNoData
	}
	return gen, nil
}

func (s *reconciliationServiceImpl) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Store(nil)
	s.resultCache.Flush()
	if s.db != nil {
		if err := model.ClearSourceFiles(s.db); err != nil {
			return fmt.Errorf("clearing source cache: %w", err)
		}
	}
	logger.FromContext(ctx).Info("Dataset reset")
	return nil
}

func (s *reconciliationServiceImpl) CostStructure() models.CostStructure {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.cost
	cs.OtherCosts = append([]models.OtherCost{}, s.cost.OtherCosts...)
	return cs
}

// SetCostStructure replaces the fee configuration and recomputes the loaded dataset.
func (s *reconciliationServiceImpl) SetCostStructure(ctx context.Context, cs models.CostStructure) error {
	if cs.OtherCosts == nil {
		cs.OtherCosts = []models.OtherCost{}
	}
	if err := cs.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cost = cs
	s.resultCache.Flush()
	logger.FromContext(ctx).Info("Cost structure updated", "platformFeePercent", cs.PlatformFeePercent,
		"operatingFeeType", cs.OperatingFee.Type, "otherCosts", len(cs.OtherCosts))

	if s.current.Load() == nil {
		return nil
	}
	_, err := s.ingestLocked(ctx, nil, false)
	return err
}

func (s *reconciliationServiceImpl) Entities(kind models.EntityKind, q ListQuery) (*EntityPage, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	filtered := reports.FilterEntities(gen.entities(kind), q.Filter)
	sorted := reports.SortEntities(filtered, q.Sort)
	page := reports.Paginate(len(sorted), q.Page, q.PerPage)
	return &EntityPage{
		Items:   reports.PageSlice(sorted, page),
		Page:    page,
		Summary: reports.Summarize(filtered, gen.Inventory),
	}, nil
}

func (s *reconciliationServiceImpl) Summary(kind models.EntityKind) (reports.Summary, error) {
	gen, err := s.Current()
	if err != nil {
		return reports.Summary{}, err
	}
	return reports.Summarize(gen.entities(kind), gen.Inventory), nil
}

func (s *reconciliationServiceImpl) Unmapped(kind models.EntityKind) ([]models.ReconciledEntity, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return gen.unmapped(kind), nil
}

func (s *reconciliationServiceImpl) Export(kind models.EntityKind) ([][]string, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return reports.ExportRows(reports.SortEntities(gen.entities(kind), reports.DefaultSortKey)), nil
}

// creatorGeneration accepts either a stored key or a raw handle.
func (s *reconciliationServiceImpl) creatorGeneration(key string) (*Generation, string, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, "", err
	}
	normalized := utils.NormalizeIdentity(key)
	if !gen.hasCreator(normalized) {
		return nil, "", fmt.Errorf("%w: creator %q", ErrEntityNotFound, key)
	}
	return gen, normalized, nil
}

func (s *reconciliationServiceImpl) CreatorVideos(key string) ([]reports.VideoPnl, error) {
	gen, normalized, err := s.creatorGeneration(key)
	if err != nil {
		return nil, err
	}
	return reports.CreatorVideos(normalized, gen.Orders, gen.Ads, gen.Inventory, gen.Cost), nil
}

func (s *reconciliationServiceImpl) CreatorOrders(key string) ([]reports.OrderLine, error) {
	gen, normalized, err := s.creatorGeneration(key)
	if err != nil {
		return nil, err
	}
	return reports.CreatorOrders(normalized, gen.Orders, gen.Inventory), nil
}

func (s *reconciliationServiceImpl) ProductCreators(key string) ([]reports.ProductCreator, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if !gen.hasProduct(key) {
		return nil, fmt.Errorf("%w: product %q", ErrEntityNotFound, key)
	}
	return reports.ProductCreators(key, gen.Orders, gen.Inventory), nil
}

func (s *reconciliationServiceImpl) AdsSummary() (models.AdsSummary, error) {
	gen, err := s.Current()
	if err != nil {
		return models.AdsSummary{}, err
	}
	return gen.AdsSummary, nil
}

func (s *reconciliationServiceImpl) Campaigns() ([]models.AdAggregate, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return gen.Campaigns, nil
}

func (s *reconciliationServiceImpl) AdCreators(product string) ([]models.AdAggregate, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return s.adsProcessor.CreatorsByProduct(gen.Ads, product), nil
}

func (s *reconciliationServiceImpl) RoiDistribution() ([]models.RoiBucket, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return s.adsProcessor.RoiDistribution(gen.Ads), nil
}

func (s *reconciliationServiceImpl) Analysis() (map[string]interface{}, error) {
	gen, err := s.Current()
	if err != nil {
		return nil, err
	}
	return reports.AnalysisPayload(reports.AnalysisInput{
		Creators:         gen.Creators,
		Products:         gen.Products,
		UnmappedCreators: gen.UnmappedCreators,
		UnmappedProducts: gen.UnmappedProducts,
		NotFoundSkus:     gen.NotFoundSkus,
		Inventory:        gen.Inventory,
		AdsSummary:       gen.AdsSummary,
	}), nil
}

// Diagnostics is available without a loaded dataset so failed runs stay visible.
func (s *reconciliationServiceImpl) Diagnostics() (*Diagnostics, error) {
	d := &Diagnostics{
		NotFoundSkus:   []string{},
		UnmappedFields: map[models.FileKind][]string{},
		Sources:        []SourceInfo{},
		RecentRuns:     []model.Run{},
	}
	if gen := s.current.Load(); gen != nil {
		d.GenerationID = gen.ID
		d.Hash = gen.Hash
		d.CreatedAt = gen.CreatedAt
		d.NotFoundSkus = gen.NotFoundSkus
		d.UnmappedFields = gen.UnmappedFields
		d.Sources = gen.Sources
	}
	if s.db != nil {
		runs, err := model.RecentRuns(s.db, recentRunsLimit)
		if err != nil {
			return nil, fmt.Errorf("loading recent runs: %w", err)
		}
		d.RecentRuns = runs
	}
	return d, nil
}
