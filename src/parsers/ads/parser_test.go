package ads

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
)

const sampleAds = `Báo cáo quảng cáo
Tên chiến dịch,ID sản phẩm,Tài khoản TikTok,Loại nội dung sáng tạo,ID video,Tiêu đề video,Chi phí,Doanh thu gộp,Số lượt nhấp,Số lượt hiển thị,Đơn hàng (SKU),ROI
Camp 1,P1, Koc_A ,Video,V1,Review son,"500.000","2.500.000",100,"10.000",10,
Camp 1,P1,không khả dụng,Video,V2,Ads,"100.000",0,0,0,0,
,,,,,,,,,,,
Camp 2,P2,-,Hình ảnh,,,"50,5","1.234,56",5,100,0,3.5
`

func TestParseAds(t *testing.T) {
	p := NewParser(20)
	assert.Equal(t, models.FileAds, p.Kind())

	res, err := p.Parse(strings.NewReader(sampleAds), "gmv_max.csv")
	require.NoError(t, err)
	require.Len(t, res.Ads, 3)
	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, 3, res.RowCount)
	assert.Contains(t, res.UnmappedFields, "ctr")

	first := res.Ads[0]
	assert.Equal(t, "koc_a", first.Account)
	assert.True(t, first.IsCreatorVideo())
	assert.Equal(t, 500000.0, first.Cost)
	assert.Equal(t, 2500000.0, first.Gmv)
	assert.Equal(t, 10000, first.Impressions)
	assert.InDelta(t, 5.0, first.Roi, 1e-9, "ROI derived from gmv/cost when the column is empty")
	assert.InDelta(t, 20.0, first.Cir, 1e-9)
	assert.InDelta(t, 5000.0, first.Cpc, 1e-9)
	assert.InDelta(t, 50000.0, first.CostPerOrder, 1e-9)

	assert.Equal(t, models.UnknownAccount, res.Ads[1].Account)
	assert.False(t, res.Ads[1].IsCreatorVideo())

	third := res.Ads[2]
	assert.Equal(t, models.UnknownAccount, third.Account)
	assert.InDelta(t, 50.5, third.Cost, 1e-9)
	assert.InDelta(t, 1234.56, third.Gmv, 1e-9)
	assert.InDelta(t, 3.5, third.Roi, 1e-9, "explicit ROI is kept")
}

func TestParseAdsHeaderNotFound(t *testing.T) {
	_, err := NewParser(20).Parse(strings.NewReader("a,b\n1,2\n"), "wrong.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tabular.ErrMalformedFile))
	var hnf *tabular.HeaderNotFoundError
	require.True(t, errors.As(err, &hnf))
	assert.Equal(t, []string{"a", "b"}, hnf.FirstRow)
}

func TestParseAdsMissingRequired(t *testing.T) {
	_, err := NewParser(20).Parse(strings.NewReader("Tài khoản TikTok,Chi phí\nkoc,1\n"), "ads.csv")
	var mf *tabular.MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"gmv"}, mf.Fields)
}

func TestParseAdsXLSXNumericCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Chi phí", "Doanh thu gộp", "ROI", "CTR", "Tài khoản TikTok", "Loại nội dung sáng tạo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{100000, 312500, 3.125, 1.5, "koc_a", "Video"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	res, err := NewParser(20).Parse(bytes.NewReader(buf.Bytes()), "gmv_max.xlsx")
	require.NoError(t, err)
	require.Len(t, res.Ads, 1)
	ad := res.Ads[0]
	assert.Equal(t, 100000.0, ad.Cost)
	assert.Equal(t, 312500.0, ad.Gmv)
	assert.InDelta(t, 3.125, ad.Roi, 1e-9)
	assert.InDelta(t, 1.5, ad.Ctr, 1e-9)
}
