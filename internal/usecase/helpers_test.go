package usecase

import (
	"testing"
	"time"

	"atelier-backend/config"
	"atelier-backend/internal/domain"
	infraCache "atelier-backend/internal/infrastructure/cache"
	"atelier-backend/internal/infrastructure/kvstore"
	"atelier-backend/internal/testutil"
	"atelier-backend/pkg/money"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Currency:            "TND",
		SettingsCacheTTL:    5 * time.Minute,
		CacheCatalogTTL:     10 * time.Minute,
		CacheRatesTTL:       15 * time.Minute,
		MaxCartQuantity:     10,
		PriceRoundingPlaces: 0,
		FrontendURL:         "https://atelier.example",
		CacheSitemapTTL:     time.Hour,
	}
}

// shop bundles every usecase over in-memory fakes.
type shop struct {
	cfg      *config.Config
	clock    *testutil.Clock
	settings *testutil.SettingsRepo
	rates    *testutil.ShippingRateRepo
	taxes    *testutil.TaxRateRepo
	promos   *testutil.PromotionRepo
	products *testutil.ProductRepo
	orders   *testutil.OrderRepo
	media    *testutil.MediaRepo
	stats    *testutil.StatsRepo
	tx       *testutil.TxManager
	carts    *kvstore.MemoryStore

	settingsCache *SettingsCache
	shipping      *ShippingUsecase
	tax           *TaxUsecase
	catalog       *CatalogUsecase
	promotion     *PromotionUsecase
	cart          *CartUsecase
	checkout      *CheckoutUsecase
	order         *OrderUsecase
	mediaUC       *MediaUsecase
	statsUC       *StatsUsecase
	sitemap       *SitemapUsecase
}

func newShop(t *testing.T, products ...domain.Product) *shop {
	t.Helper()
	s := &shop{
		cfg:      testConfig(),
		clock:    testutil.NewClock(t0),
		settings: testutil.NewSettingsRepo(nil),
		rates:    testutil.NewShippingRateRepo(),
		taxes:    testutil.NewTaxRateRepo(),
		promos:   &testutil.PromotionRepo{},
		products: testutil.NewProductRepo(products...),
		orders:   testutil.NewOrderRepo(),
		media:    testutil.NewMediaRepo(),
		tx:       &testutil.TxManager{},
		carts:    kvstore.NewMemory(),
	}
	c := infraCache.NewMemoryCache(time.Minute, time.Minute)

	s.settingsCache = NewSettingsCache(s.settings, s.cfg.SettingsCacheTTL, s.clock.Now)
	s.shipping = NewShippingUsecase(s.rates, s.settingsCache, c, s.cfg.CacheRatesTTL)
	s.tax = NewTaxUsecase(s.taxes, s.settingsCache)
	s.catalog = NewCatalogUsecase(s.products, s.promos, c, s.cfg, s.clock.Now)
	s.promotion = NewPromotionUsecase(s.promos, s.products, s.catalog, s.clock.Now)
	s.cart = NewCartUsecase(s.carts, s.catalog, s.shipping, s.cfg)
	s.checkout = NewCheckoutUsecase(s.cart, s.shipping, s.tax, s.products, s.orders, s.tx, s.cfg)
	s.order = NewOrderUsecase(s.orders, s.tx)
	s.mediaUC = NewMediaUsecase(s.media, c, time.Minute, s.clock.Now)
	s.stats = &testutil.StatsRepo{Orders: s.orders}
	s.statsUC = NewStatsUsecase(s.stats, c)
	s.sitemap = NewSitemapUsecase(s.products, c, s.cfg, s.clock.Now)
	return s
}

// productID returns the id of the product with the given slug.
func (s *shop) productID(t *testing.T, slug string) string {
	t.Helper()
	for id, p := range s.products.Products {
		if p.Slug == slug {
			return id
		}
	}
	t.Fatalf("no product %q", slug)
	return ""
}

func ptr[T any](v T) *T { return &v }

func vaseProduct() domain.Product {
	return domain.Product{
		Name:     "Clay vase",
		Slug:     "clay-vase",
		Price:    money.MustParse("150"),
		IsActive: true,
	}
}

func rugProduct() domain.Product {
	return domain.Product{
		Name:     "Kilim rug",
		Slug:     "kilim-rug",
		Price:    money.MustParse("300"),
		IsActive: true,
		Variants: []domain.Variant{
			{ID: "v-small", Name: "Small", IsActive: true},
			{ID: "v-large", Name: "Large", Price: ptr(money.MustParse("420")), IsActive: true},
			{ID: "v-retired", Name: "Retired", IsActive: false},
		},
	}
}
