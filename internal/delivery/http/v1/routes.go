package v1

import (
	"net/http"

	"atelier-backend/internal/delivery/http/middleware"
)

// Handlers groups every handler mounted under /api/v1.
type Handlers struct {
	Shipping      *ShippingHandler
	Catalog       *CatalogHandler
	Media         *MediaHandler
	Cart          *CartHandler
	Order         *OrderHandler
	AdminSettings *AdminSettingsHandler
	AdminCatalog  *AdminCatalogHandler
	AdminOrder    *AdminOrderHandler
	AdminStats    *AdminStatsHandler
	Sitemap       *SitemapHandler
	Config        *ConfigHandler
	Health        *HealthHandler
}

// Register mounts the storefront and back-office routes on mux.
func Register(mux *http.ServeMux, h Handlers) {
	// Storefront (Public)
	mux.HandleFunc("GET /api/v1/settings/shipping", h.Shipping.GetShippingSettings)
	mux.HandleFunc("GET /api/v1/shipping/rates", h.Shipping.ListRates)
	mux.HandleFunc("GET /api/v1/shipping/quote", h.Shipping.Quote)

	mux.HandleFunc("GET /api/v1/categories", h.Catalog.GetCategories)
	mux.HandleFunc("GET /api/v1/products", h.Catalog.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", h.Catalog.GetProduct)

	mux.Handle("GET /sitemap.xml", h.Sitemap)

	mux.HandleFunc("GET /api/v1/banners", h.Media.Banners)
	mux.HandleFunc("GET /api/v1/reels", h.Media.Reels)

	// Guest cart
	mux.HandleFunc("GET /api/v1/cart", h.Cart.GetCart)
	mux.HandleFunc("DELETE /api/v1/cart", h.Cart.ClearCart)
	mux.HandleFunc("POST /api/v1/cart/items", h.Cart.AddItem)
	mux.HandleFunc("PUT /api/v1/cart/items/{id}", h.Cart.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{id}", h.Cart.RemoveItem)

	// Checkout
	mux.HandleFunc("POST /api/v1/checkout/quote", h.Order.Quote)
	mux.HandleFunc("POST /api/v1/checkout", h.Order.Checkout)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.Order.GetOrder)

	// Admin (Protected)
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.Admin(fn)
	}

	mux.Handle("GET /api/v1/admin/settings", admin(h.AdminSettings.GetSettings))
	mux.Handle("PUT /api/v1/admin/settings", admin(h.AdminSettings.UpdateSettings))

	mux.Handle("GET /api/v1/admin/shipping-rates", admin(h.AdminSettings.ListShippingRates))
	mux.Handle("POST /api/v1/admin/shipping-rates", admin(h.AdminSettings.CreateShippingRate))
	mux.Handle("PUT /api/v1/admin/shipping-rates/{id}", admin(h.AdminSettings.UpdateShippingRate))
	mux.Handle("DELETE /api/v1/admin/shipping-rates/{id}", admin(h.AdminSettings.DeleteShippingRate))

	mux.Handle("GET /api/v1/admin/tax-rates", admin(h.AdminSettings.ListTaxRates))
	mux.Handle("PUT /api/v1/admin/tax-rates/{country}", admin(h.AdminSettings.SetTaxRate))
	mux.Handle("DELETE /api/v1/admin/tax-rates/{country}", admin(h.AdminSettings.DeleteTaxRate))

	mux.Handle("GET /api/v1/admin/promotions", admin(h.AdminCatalog.ListPromotions))
	mux.Handle("POST /api/v1/admin/promotions", admin(h.AdminCatalog.CreatePromotion))
	mux.Handle("PUT /api/v1/admin/promotions/{id}", admin(h.AdminCatalog.UpdatePromotion))
	mux.Handle("DELETE /api/v1/admin/promotions/{id}", admin(h.AdminCatalog.DeletePromotion))

	mux.Handle("GET /api/v1/admin/products", admin(h.AdminCatalog.ListProducts))
	mux.Handle("POST /api/v1/admin/products", admin(h.AdminCatalog.CreateProduct))
	mux.Handle("GET /api/v1/admin/products/{id}", admin(h.AdminCatalog.GetProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", admin(h.AdminCatalog.UpdateProduct))
	mux.Handle("PATCH /api/v1/admin/products/{id}/status", admin(h.AdminCatalog.UpdateProductStatus))
	mux.Handle("DELETE /api/v1/admin/products/{id}", admin(h.AdminCatalog.DeleteProduct))

	mux.Handle("GET /api/v1/admin/categories", admin(h.AdminCatalog.ListCategories))
	mux.Handle("POST /api/v1/admin/categories", admin(h.AdminCatalog.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", admin(h.AdminCatalog.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", admin(h.AdminCatalog.DeleteCategory))

	mux.Handle("GET /api/v1/admin/orders", admin(h.AdminOrder.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(h.AdminOrder.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", admin(h.AdminOrder.UpdateStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", admin(h.AdminOrder.GetOrderHistory))

	mux.Handle("GET /api/v1/admin/stats/kpis", admin(h.AdminStats.GetRevenueKPIs))
	mux.Handle("GET /api/v1/admin/stats/daily-sales", admin(h.AdminStats.GetDailySales))
	mux.Handle("GET /api/v1/admin/stats/top-products", admin(h.AdminStats.GetTopSellingProducts))

	mux.Handle("GET /api/v1/admin/media", admin(h.Media.AdminList))
	mux.Handle("POST /api/v1/admin/media", admin(h.Media.Create))
	mux.Handle("PUT /api/v1/admin/media/{id}", admin(h.Media.Update))
	mux.Handle("DELETE /api/v1/admin/media/{id}", admin(h.Media.Delete))

	mux.Handle("GET /api/v1/admin/config/enums", admin(h.Config.GetEnums))

	// Health Check
	mux.HandleFunc("GET /api/v1/health", h.Health.Health)
	mux.HandleFunc("GET /health", h.Health.Health)
}
