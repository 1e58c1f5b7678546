package v1

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atelier-backend/config"
	"atelier-backend/internal/delivery/http/middleware"
	"atelier-backend/internal/domain"
	infraCache "atelier-backend/internal/infrastructure/cache"
	"atelier-backend/internal/infrastructure/kvstore"
	"atelier-backend/internal/testutil"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/money"
	"atelier-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testServer struct {
	mux      *http.ServeMux
	products *testutil.ProductRepo
	orders   *testutil.OrderRepo
	vaseID   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	utils.SetSecret(testSecret)

	cfg := &config.Config{Currency: "TND", MaxCartQuantity: 20, CacheCatalogTTL: time.Minute, FrontendURL: "https://atelier.example/", CacheSitemapTTL: time.Hour}
	clock := testutil.NewClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	products := testutil.NewProductRepo(domain.Product{
		Name: "Clay vase", Slug: "clay-vase", Price: money.MustParse("150"), IsActive: true,
	})
	settingsRepo := testutil.NewSettingsRepo(nil)
	rates := testutil.NewShippingRateRepo()
	promos := &testutil.PromotionRepo{}
	orders := testutil.NewOrderRepo()
	c := infraCache.NewMemoryCache(time.Minute, time.Minute)

	settingsCache := usecase.NewSettingsCache(settingsRepo, time.Minute, clock.Now)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, settingsCache)
	shippingUC := usecase.NewShippingUsecase(rates, settingsCache, c, time.Minute)
	taxUC := usecase.NewTaxUsecase(testutil.NewTaxRateRepo(), settingsCache)
	catalogUC := usecase.NewCatalogUsecase(products, promos, c, cfg, clock.Now)
	promotionUC := usecase.NewPromotionUsecase(promos, products, catalogUC, clock.Now)
	cartUC := usecase.NewCartUsecase(kvstore.NewMemory(), catalogUC, shippingUC, cfg)
	orderUC := usecase.NewOrderUsecase(orders, &testutil.TxManager{})
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, shippingUC, taxUC, products, orders, &testutil.TxManager{}, cfg)
	mediaUC := usecase.NewMediaUsecase(testutil.NewMediaRepo(), c, time.Minute, clock.Now)
	statsUC := usecase.NewStatsUsecase(&testutil.StatsRepo{Orders: orders}, c)
	sitemapUC := usecase.NewSitemapUsecase(products, c, cfg, clock.Now)

	mux := http.NewServeMux()
	Register(mux, Handlers{
		Shipping:      NewShippingHandler(settingsUC, shippingUC),
		Catalog:       NewCatalogHandler(catalogUC),
		Media:         NewMediaHandler(mediaUC),
		Cart:          NewCartHandler(cartUC),
		Order:         NewOrderHandler(checkoutUC, orderUC),
		AdminSettings: NewAdminSettingsHandler(settingsUC, shippingUC, taxUC),
		AdminCatalog:  NewAdminCatalogHandler(catalogUC, promotionUC),
		AdminOrder:    NewAdminOrderHandler(orderUC),
		AdminStats:    NewAdminStatsHandler(statsUC),
		Sitemap:       NewSitemapHandler(sitemapUC),
		Config:        NewConfigHandler(c),
		Health:        NewHealthHandler(nil),
	})

	s := &testServer{mux: mux, products: products, orders: orders}
	for id := range products.Products {
		s.vaseID = id
	}
	return s
}

type call struct {
	method, path string
	body         string
	cartID       string
	token        string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, bytes.NewBufferString(c.body))
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cartID != "" {
		req.Header.Set(middleware.CartIDHeader, c.cartID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func signed(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "admin-1",
		"exp":          time.Now().Add(time.Hour).Unix(),
		"app_metadata": map[string]interface{}{"role": role},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"productId":"` + s.vaseID + `","quantity":3}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := rec.Header().Get(middleware.CartIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "cart_id="+id)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/cart?country=TN", cartID: id})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[usecase.CartView](t, rec)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, "450", view.Subtotal.String())
	require.NotNil(t, view.Shipping)
	assert.Equal(t, "50", view.Shipping.AmountNeeded.String())

	line := view.Items[0].ID
	rec = s.do(t, call{method: http.MethodPut, path: "/api/v1/cart/items/" + line, body: `{"quantity":1}`, cartID: id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[usecase.CartView](t, rec).ItemCount)

	rec = s.do(t, call{method: http.MethodPut, path: "/api/v1/cart/items/ghost", body: `{"quantity":1}`, cartID: id})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/cart", cartID: id})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", cartID: id})
	assert.Empty(t, decodeBody[usecase.CartView](t, rec).Items)
}

func TestCart_MalformedIDIsReplaced(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", cartID: "../../etc/passwd"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "../../etc/passwd", rec.Header().Get(middleware.CartIDHeader))
}

func TestCart_AddErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"productId":"nope"}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"productId":"x","colour":"red"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.products.Products[s.vaseID].IsActive = false
	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"productId":"` + s.vaseID + `"}`})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	id := "6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: `{"productId":"` + s.vaseID + `","quantity":4}`, cartID: id})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/quote", body: `{"country":"TN","method":"standard"}`, cartID: id})
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decodeBody[usecase.CheckoutQuote](t, rec)
	assert.True(t, quote.Shipping.IsFree)
	assert.Equal(t, "600", quote.Breakdown.Total.String())

	body := `{
		"customer": {"name": "Amel B.", "email": "amel@example.com", "phone": "+21620000000"},
		"address": {"line1": "12 Rue de Marseille", "city": "Tunis", "postalCode": "1000", "country": "TN"},
		"method": "standard"
	}`
	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: body, cartID: id})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody[domain.Order](t, rec)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "600", order.Total.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + order.ID})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: body, cartID: id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: `{"customer":{"email":"nope"},"address":{}}`})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Fields, "customer.name")
	assert.Contains(t, resp.Fields, "customer.email")
	assert.Contains(t, resp.Fields, "address.country")
}

func TestShippingQuote(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/shipping/quote?country=tn&subtotal=450"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[domain.ShippingResult](t, rec)
	assert.Equal(t, "7", res.Cost.String())
	assert.Equal(t, "50", res.AmountNeeded.String())
	assert.False(t, res.IsFree)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/shipping/quote?country=TN&subtotal=520"})
	assert.True(t, decodeBody[domain.ShippingResult](t, rec).IsFree)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/shipping/quote?country=Tunisia&subtotal=abc&method=boat"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/settings/shipping"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "freeShippingThreshold")
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/products?page=1&limit=500"})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[struct {
		Data       []usecase.ProductView `json:"data"`
		Pagination domain.Pagination     `json:"pagination"`
	}](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "150", page.Data[0].EffectivePrice.String())
	assert.Equal(t, maxPageLimit, page.Pagination.Limit)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/products/clay-vase"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/products/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/banners"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/settings"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/settings", token: signed(t, "customer")})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/settings", token: signed(t, domain.RoleAdmin)})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminShippingRates(t *testing.T) {
	s := newTestServer(t)
	tok := signed(t, domain.RoleAdmin)
	body := `{"countryCode":"TN","method":"express","baseRate":12,"freeShippingThreshold":null,"estimatedDaysMin":1,"estimatedDaysMax":2}`

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/shipping-rates", body: body, token: tok})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rate := decodeBody[domain.ShippingRate](t, rec)
	assert.True(t, rate.FreeShippingThreshold.IsInherited())

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/shipping-rates", body: body, token: tok})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"method"`)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/shipping/rates?country=TN"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.ShippingRate](t, rec), 1)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/shipping-rates/" + rate.ID, token: tok})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminOrderStatus(t *testing.T) {
	s := newTestServer(t)
	tok := signed(t, domain.RoleAdmin)
	o := &domain.Order{Status: domain.OrderStatusShipped}
	require.NoError(t, s.orders.CreateOrder(context.Background(), o))

	rec := s.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + o.ID + "/status", body: `{"status":"pending"}`, token: tok})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + o.ID + "/status", body: `{"status":"delivered","note":"left with concierge"}`, token: tok})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders/" + o.ID + "/history", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]domain.OrderHistory](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "admin-1", *history[0].CreatedBy)
	assert.Equal(t, "left with concierge", *history[0].Reason)
}

func TestAdminPromotionAndEnums(t *testing.T) {
	s := newTestServer(t)
	tok := signed(t, domain.RoleAdmin)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/promotions", body: `{"productId":"` + s.vaseID + `","discountPercent":20}`, token: tok})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/products/clay-vase"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "120", decodeBody[usecase.ProductView](t, rec).EffectivePrice.String())

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/promotions", body: `{"productId":"` + s.vaseID + `","discountPercent":150}`, token: tok})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/config/enums", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "overnight"))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(failingPinger{}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	tok := signed(t, domain.RoleAdmin)
	placed := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	require.NoError(t, s.orders.CreateOrder(context.Background(), &domain.Order{
		Status: domain.OrderStatusConfirmed, Total: money.MustParse("457"), CreatedAt: placed,
	}))

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/stats/kpis?start=2025-05-01&end=2025-05-31", token: tok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	kpis := decodeBody[domain.SalesKPIs](t, rec)
	assert.Equal(t, int64(1), kpis.OrderCount)
	assert.Equal(t, "457", kpis.Revenue.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/stats/daily-sales?start=20-05-2025", token: tok})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"start"`)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/stats/top-products?start=2025-05-31&end=2025-05-01", token: tok})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/stats/kpis"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSitemap(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/sitemap.xml"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<loc>https://atelier.example/products/clay-vase</loc>")
	assert.Contains(t, body, "<loc>https://atelier.example</loc>")
}
