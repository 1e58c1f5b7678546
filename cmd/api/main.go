package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier-backend/config"
	"atelier-backend/internal/delivery/http/middleware"
	v1 "atelier-backend/internal/delivery/http/v1"
	"atelier-backend/internal/domain"
	"atelier-backend/internal/infrastructure/cache"
	"atelier-backend/internal/infrastructure/kvstore"
	"atelier-backend/internal/repository/pgrepo"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const serviceName = "atelier-api"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	utils.SetSecret(cfg.AuthJWTSecret)
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	lg := logger.Get()

	// Initialize Database with pgx
	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	lg.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	settingsRepo := pgrepo.NewSettingsRepository(pgxPool)
	shippingRepo := pgrepo.NewShippingRateRepository(pgxPool)
	taxRepo := pgrepo.NewTaxRateRepository(pgxPool)
	productRepo := pgrepo.NewProductRepository(pgxPool)
	promotionRepo := pgrepo.NewPromotionRepository(pgxPool)
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	mediaRepo := pgrepo.NewMediaRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	cartStorage, err := newCartStorage(cfg, pgxPool)
	if err != nil {
		lg.Fatal().Err(err).Str("backend", cfg.CartStorage).Msg("Failed to initialize cart storage")
	}

	// Initialize Cache (In-Memory)
	// Default expiration follows the catalog TTL, cleanup every 30m
	memCache := cache.NewMemoryCache(cfg.CacheCatalogTTL, 30*time.Minute)

	// --- Modules Initialization ---
	settingsCache := usecase.NewSettingsCache(settingsRepo, cfg.SettingsCacheTTL, time.Now)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, settingsCache)
	shippingUC := usecase.NewShippingUsecase(shippingRepo, settingsCache, memCache, cfg.CacheRatesTTL)
	taxUC := usecase.NewTaxUsecase(taxRepo, settingsCache)

	catalogUC := usecase.NewCatalogUsecase(productRepo, promotionRepo, memCache, cfg, time.Now)
	promotionUC := usecase.NewPromotionUsecase(promotionRepo, productRepo, catalogUC, time.Now)
	mediaUC := usecase.NewMediaUsecase(mediaRepo, memCache, cfg.CacheCatalogTTL, time.Now)
	sitemapUC := usecase.NewSitemapUsecase(productRepo, memCache, cfg, time.Now)

	cartUC := usecase.NewCartUsecase(cartStorage, catalogUC, shippingUC, cfg)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, shippingUC, taxUC, productRepo, orderRepo, txManager, cfg)
	orderUC := usecase.NewOrderUsecase(orderRepo, txManager)
	statsUC := usecase.NewStatsUsecase(pgrepo.NewStatsRepository(pgxPool), memCache)

	// Set up Router
	mux := http.NewServeMux()
	v1.Register(mux, v1.Handlers{
		Shipping:      v1.NewShippingHandler(settingsUC, shippingUC),
		Catalog:       v1.NewCatalogHandler(catalogUC),
		Media:         v1.NewMediaHandler(mediaUC),
		Cart:          v1.NewCartHandler(cartUC),
		Order:         v1.NewOrderHandler(checkoutUC, orderUC),
		AdminSettings: v1.NewAdminSettingsHandler(settingsUC, shippingUC, taxUC),
		AdminCatalog:  v1.NewAdminCatalogHandler(catalogUC, promotionUC),
		AdminOrder:    v1.NewAdminOrderHandler(orderUC),
		AdminStats:    v1.NewAdminStatsHandler(statsUC),
		Sitemap:       v1.NewSitemapHandler(sitemapUC),
		Config:        v1.NewConfigHandler(memCache),
		Health:        v1.NewHealthHandler(pgxPool),
	})

	// Initialize Rate Limiter with lifecycle management
	// cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.ServiceStop(serviceName)
}

func newCartStorage(cfg *config.Config, pool *pgxpool.Pool) (domain.CartStorage, error) {
	switch cfg.CartStorage {
	case config.CartStorageFile:
		store, err := kvstore.NewFile(cfg.CartStorageDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CartStorageMemory:
		return kvstore.NewMemory(), nil
	default:
		return pgrepo.NewCartStorage(pool), nil
	}
}
