package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricetracker/internal/detector"
	"pricetracker/internal/platform/models"
)

func TestUnitExtract(t *testing.T) {
	det := detector.New()

	html := `<html><head>
<meta property="og:title" content="メタタイトル">
</head><body>
<h1 class="item-name">限定ワイヤレスイヤホン ブラック</h1>
<span class="price2">価格: ¥12,345 (税込)</span>
<div class="shop-name">サンプルショップ</div>
<button class="add-to-cart">かごに追加</button>
<button class="checkout">購入手続きへ</button>
</body></html>`

	record := det.Extract("https://item.example.co.jp/testshop/itemcode123/", mustDoc(t, html))

	assert.Equal(t, "testshop_itemcode123", record.Identity, "identity should come from path segments")
	assert.Equal(t, "限定ワイヤレスイヤホン ブラック", record.Title,
		"first non-empty title selector should win over the meta fallback")
	assert.Equal(t, int64(12345), record.Price,
		"price should be the first digit run with separators stripped")
	assert.Equal(t, "testshop", record.ShopID, "shop id should come from the first path segment")
	assert.Equal(t, "itemcode123", record.ItemCode, "item code should come from the second path segment")
	assert.Equal(t, models.Available, record.Availability,
		"enabled cart and checkout controls should mean available")
	assert.Equal(t, "サンプルショップ", record.SellerName, "seller name should come from the shop selector")
}

func TestUnitExtractDefaultsOnMissingFields(t *testing.T) {
	det := detector.New()

	record := det.Extract("https://item.example.co.jp/testshop/itemcode123/", mustDoc(t, emptyHTML))

	assert.Empty(t, record.Title, "missing title should default to empty string")
	assert.Zero(t, record.Price, "missing price should default to zero")
	assert.Equal(t, models.Unknown, record.Availability, "missing signals should default to unknown")
	assert.Equal(t, "testshop", record.SellerName,
		"missing seller selectors should fall back to the shop id")
}

func TestUnitExtractPrice(t *testing.T) {
	det := detector.New()

	tests := map[string]struct {
		html      string
		wantPrice int64
	}{
		"currency symbol and prose ignored": {
			html:      `<span class="price2">価格: ¥12,345 (税込)</span>`,
			wantPrice: 12345,
		},
		"plain number": {
			html:      `<span class="price2">980円</span>`,
			wantPrice: 980,
		},
		"millions with separators": {
			html:      `<span class="price2">1,234,567円(税込)</span>`,
			wantPrice: 1234567,
		},
		"nested child preferred over outer text": {
			html:      `<div class="item-price">旧価格 9,999<span class="amount">5,480</span></div>`,
			wantPrice: 5480,
		},
		"nested selector without child falls back to outer text": {
			html:      `<div class="item-price">3,300円</div>`,
			wantPrice: 3300,
		},
		"later selector used when earlier has no digits": {
			html:      `<span class="price2">価格未定</span><span class="important">2,980円</span>`,
			wantPrice: 2980,
		},
		"no digits anywhere": {
			html:      `<span class="price2">価格未定</span>`,
			wantPrice: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			record := det.Extract(productURL, mustDoc(t, "<html><body>"+tt.html+"</body></html>"))

			assert.Equal(t, tt.wantPrice, record.Price, "should parse the expected price")
		})
	}
}

func TestUnitExtractTitleMetaFallback(t *testing.T) {
	det := detector.New()

	html := `<html><head><meta property="og:title" content="メタのタイトル"></head><body></body></html>`
	record := det.Extract(productURL, mustDoc(t, html))

	assert.Equal(t, "メタのタイトル", record.Title, "meta selector should use its content attribute")
}

func TestUnitExtractSellerBreadcrumbFallback(t *testing.T) {
	det := detector.New()

	html := `<html><body><div class="breadcrumb"><a href="/shop123/">ブレッドクラムの店</a></div></body></html>`
	record := det.Extract(productURL, mustDoc(t, html))

	assert.Equal(t, "ブレッドクラムの店", record.SellerName,
		"breadcrumb link should provide the seller name fallback")
}

func TestUnitExtractAvailability(t *testing.T) {
	det := detector.New()

	tests := map[string]struct {
		html string
		want models.Availability
	}{
		"enabled cart and checkout": {
			html: `<button class="add-to-cart">追加</button><button class="checkout">購入</button>`,
			want: models.Available,
		},
		"cart without checkout is not enough": {
			html: `<button class="add-to-cart">追加</button>`,
			want: models.Unknown,
		},
		"delivery estimate": {
			html: `<div class="delivery-date">最短で4月3日にお届け</div>`,
			want: models.Available,
		},
		"delivery element without qualifying text": {
			html: `<div class="delivery-date">配送について</div>`,
			want: models.Unknown,
		},
		"enabled quantity input": {
			html: `<input name="units" value="1">`,
			want: models.Available,
		},
		"disabled quantity input ignored": {
			html: `<input name="units" disabled>`,
			want: models.Unknown,
		},
		"out of stock phrase": {
			html: `<div class="inventory-status">ただいま売り切れです</div>`,
			want: models.OutOfStock,
		},
		"backorder phrase": {
			html: `<div class="inventory-status">入荷待ち:予約受付中</div>`,
			want: models.Backorder,
		},
		"available phrase": {
			html: `<div class="inventory-status">在庫あり</div>`,
			want: models.Available,
		},
		"negative phrase beats positive in same element": {
			html: `<div class="inventory-status">在庫あり表示でも売り切れ</div>`,
			want: models.OutOfStock,
		},
		"disabled purchase control": {
			html: `<button class="checkout" disabled>購入不可</button>`,
			want: models.OutOfStock,
		},
		"disabled cart control": {
			html: `<button class="add-to-cart" disabled>追加不可</button>`,
			want: models.OutOfStock,
		},
		"nothing matches": {
			html: `<div class="unrelated">何もない</div>`,
			want: models.Unknown,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			record := det.Extract(productURL, mustDoc(t, "<html><body>"+tt.html+"</body></html>"))

			assert.Equal(t, tt.want, record.Availability, "priority chain should pick the expected state")
		})
	}
}

func TestUnitLoadSelectorsMissingFile(t *testing.T) {
	_, err := detector.LoadSelectors("/nonexistent/selectors.yaml")

	require.Error(t, err, "missing override file should be reported")
}
