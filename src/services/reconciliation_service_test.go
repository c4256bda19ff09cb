package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LinhLe223/GMV-MAX/src/config"
	"github.com/LinhLe223/GMV-MAX/src/database"
	"github.com/LinhLe223/GMV-MAX/src/model"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
	"github.com/LinhLe223/GMV-MAX/src/reports"
)

const adsHeader = "Tên chiến dịch,ID sản phẩm,Tài khoản TikTok,Loại nội dung sáng tạo,ID video,Tiêu đề video,Chi phí,Doanh thu gộp,Số lượt nhấp,Số lượt hiển thị,Đơn hàng (SKU)\n"

func adsFile() SourceFile {
	data := "Báo cáo quảng cáo\n" + adsHeader +
		"Camp 1,P1,koc_A,Video,V1,Review son,500000,2500000,100,10000,10\n"
	return SourceFile{Kind: models.FileAds, FileName: "gmv_max.csv", Data: []byte(data)}
}

func ordersFile() SourceFile {
	var b strings.Builder
	b.WriteString("ID đơn hàng,Tên người dùng nhà sáng tạo,Sku người bán,ID sản phẩm,Tên sản phẩm,Id nội dung,Payment Amount,Thanh toán hoa hồng thực tế,Trạng thái đơn hàng,Trả hàng & hoàn tiền,Số lượng\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "O%d,Koc A ,ABC123,P1,Son lì,V1,200000,20000,Đã hoàn thành,,1\n", i)
	}
	return SourceFile{Kind: models.FileOrders, FileName: "creator_order_all.csv", Data: []byte(b.String())}
}

func inventoryFile(cogs int) SourceFile {
	data := fmt.Sprintf("Mã SKU,Tên,Toàn bộ kho khả dụng,Giá vốn\nabc123,Son lì,100,%d\n", cogs)
	return SourceFile{Kind: models.FileInventory, FileName: "Danh_sách_tồn_kho.csv", Data: []byte(data)}
}

func newTestService(t *testing.T) (*reconciliationServiceImpl, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newServiceOn(db, config.Default()), db
}

func newServiceOn(db *sql.DB, cfg *config.AppConfig) *reconciliationServiceImpl {
	return NewReconciliationService(db, cfg, models.DefaultCostStructure(), nil).(*reconciliationServiceImpl)
}

func creator(t *testing.T, gen *Generation, key string) models.ReconciledEntity {
	t.Helper()
	i, ok := gen.creatorIndex[key]
	require.True(t, ok, "creator %q not reconciled", key)
	return gen.Creators[i]
}

func TestIngestScenario(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	gen, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)})
	require.NoError(t, err)
	assert.NotEmpty(t, gen.ID)
	assert.Len(t, gen.Sources, 3)

	koc := creator(t, gen, "koca")
	assert.InDelta(t, 2000000.0, koc.Nmv, 1e-6)
	assert.InDelta(t, 800000.0, koc.TotalCogs, 1e-6)
	assert.InDelta(t, 500000.0, koc.NetProfit, 1e-6)
	assert.InDelta(t, 4.0, koc.RealRoas, 1e-9)
	assert.NotEmpty(t, koc.Bcg)
	assert.Empty(t, gen.NotFoundSkus)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, gen.ID, current.ID)

	page, err := svc.Entities(models.KindCreator, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Page.Total)
	assert.InDelta(t, 500000.0, page.Summary.TotalNetProfit, 1e-6)

	products, err := svc.Entities(models.KindProduct, ListQuery{Filter: reports.Filter{Search: "P1"}})
	require.NoError(t, err)
	require.Len(t, products.Items, 1)
	assert.Equal(t, "P1", products.Items[0].Key)

	stored, err := model.LoadSourceFiles(db)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	diag, err := svc.Diagnostics()
	require.NoError(t, err)
	assert.Equal(t, gen.ID, diag.GenerationID)
	require.Len(t, diag.RecentRuns, 1)
	assert.Equal(t, model.RunStatusOK, diag.RecentRuns[0].Status)
}

func TestIngestWithoutAdsFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), []SourceFile{ordersFile()})
	assert.ErrorIs(t, err, ErrMissingPrerequisite)

	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoData)

	diag, err := svc.Diagnostics()
	require.NoError(t, err)
	require.Len(t, diag.RecentRuns, 1)
	assert.Equal(t, model.RunStatusFailed, diag.RecentRuns[0].Status)
	assert.NotEmpty(t, diag.RecentRuns[0].Error)
}

func TestIngestFailureClearsDataset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile()})
	require.NoError(t, err)

	bad := SourceFile{Kind: models.FileAds, FileName: "broken.csv", Data: []byte("a,b\n1,2\n")}
	_, err = svc.Ingest(ctx, []SourceFile{bad})
	assert.ErrorIs(t, err, ErrParsingFailed)
	assert.ErrorIs(t, err, tabular.ErrMalformedFile)

	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.Entities(models.KindCreator, ListQuery{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Ingest(context.Background(), []SourceFile{{Kind: "returns", FileName: "x.csv", Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestPartialReuploadReusesOtherSources(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)})
	require.NoError(t, err)

	gen, err := svc.Ingest(ctx, []SourceFile{inventoryFile(100000)})
	require.NoError(t, err)
	assert.Len(t, gen.Sources, 3)
	assert.InDelta(t, 300000.0, creator(t, gen, "koca").NetProfit, 1e-6)
}

func TestIngestSameFilesHitsMemo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	files := []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)}

	first, err := svc.Ingest(ctx, files)
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, files)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestSetCostStructureRecomputes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)})
	require.NoError(t, err)

	cs := models.DefaultCostStructure()
	cs.PlatformFeePercent = 10
	require.NoError(t, svc.SetCostStructure(ctx, cs))
	assert.Equal(t, 10.0, svc.CostStructure().PlatformFeePercent)

	gen, err := svc.Current()
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash, gen.Hash)
	koc := creator(t, gen, "koca")
	assert.InDelta(t, 200000.0, koc.Fees.Platform, 1e-6)
	assert.InDelta(t, 300000.0, koc.NetProfit, 1e-6)

	bad := models.DefaultCostStructure()
	bad.PlatformFeePercent = 150
	assert.ErrorIs(t, svc.SetCostStructure(ctx, bad), models.ErrInvalidCostStructure)
	assert.Equal(t, 10.0, svc.CostStructure().PlatformFeePercent)
}

func TestRestoreRebuildsFromCache(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	_, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)})
	require.NoError(t, err)

	restarted := newServiceOn(db, config.Default())
	_, err = restarted.Current()
	require.ErrorIs(t, err, ErrNoData)

	require.NoError(t, restarted.Restore(ctx))
	gen, err := restarted.Current()
	require.NoError(t, err)
	assert.InDelta(t, 500000.0, creator(t, gen, "koca").NetProfit, 1e-6)
}

func TestRestoreWithoutCachedAds(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Restore(context.Background()))
	_, err := svc.Current()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestResetClearsEverything(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	_, err := svc.Ingest(ctx, []SourceFile{adsFile(), ordersFile()})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))
	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoData)
	stored, err := model.LoadSourceFiles(db)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLargeAdsFileIsTruncatedInCache(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	cfg := config.Default()
	cfg.AdCacheRowLimit = 1
	svc := newServiceOn(db, cfg)

	ads := adsFile()
	ads.Data = append(ads.Data, []byte("Camp 2,P2,koc_b,Video,V9,Other,1000,0,1,10,0\n")...)
	gen, err := svc.Ingest(context.Background(), []SourceFile{ads})
	require.NoError(t, err)
	assert.Len(t, gen.Ads, 2)

	stored, err := model.LoadSourceFiles(db)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].RowCount)
	assert.True(t, strings.HasSuffix(stored[0].FileName, ".csv"))

	restarted := newServiceOn(db, cfg)
	require.NoError(t, restarted.Restore(context.Background()))
	restored, err := restarted.Current()
	require.NoError(t, err)
	assert.Len(t, restored.Ads, 1)
}

func TestSourceCacheQuotaIsNotFatal(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	cfg := config.Default()
	cfg.SourceCacheQuotaBytes = 16
	svc := newServiceOn(db, cfg)

	_, err = svc.Ingest(context.Background(), []SourceFile{adsFile(), ordersFile()})
	require.NoError(t, err)

	stored, err := model.LoadSourceFiles(db)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDrillDowns(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Ingest(context.Background(), []SourceFile{adsFile(), ordersFile(), inventoryFile(80000)})
	require.NoError(t, err)

	videos, err := svc.CreatorVideos("Koc A")
	require.NoError(t, err)
	require.NotEmpty(t, videos)
	assert.Equal(t, "V1", videos[0].VideoID)

	lines, err := svc.CreatorOrders("koca")
	require.NoError(t, err)
	assert.Len(t, lines, 10)

	_, err = svc.CreatorOrders("nobody")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	creators, err := svc.ProductCreators("P1")
	require.NoError(t, err)
	require.Len(t, creators, 1)
	assert.Equal(t, "koca", creators[0].Key)

	_, err = svc.ProductCreators("P404")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	rows, err := svc.Export(models.KindCreator)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	payload, err := svc.Analysis()
	require.NoError(t, err)
	assert.Contains(t, payload, "topCreators")

	buckets, err := svc.RoiDistribution()
	require.NoError(t, err)
	assert.NotEmpty(t, buckets)

	adCreators, err := svc.AdCreators("P1")
	require.NoError(t, err)
	assert.Len(t, adCreators, 1)
}

func TestParseEntityKind(t *testing.T) {
	kind, err := ParseEntityKind("")
	require.NoError(t, err)
	assert.Equal(t, models.KindCreator, kind)

	kind, err = ParseEntityKind(" Product ")
	require.NoError(t, err)
	assert.Equal(t, models.KindProduct, kind)

	_, err = ParseEntityKind("campaign")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
