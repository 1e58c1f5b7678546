package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atelier-backend/config"
	"atelier-backend/internal/domain"
	"atelier-backend/pkg/cache"
)

const (
	sitemapKey       = "sitemap:items"
	sitemapBatchSize = 500
)

type SitemapItem struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float32
}

type SitemapUsecase struct {
	productRepo domain.ProductRepository
	baseURL     string
	cache       cache.CacheService
	ttl         time.Duration
	now         func() time.Time
}

func NewSitemapUsecase(repo domain.ProductRepository, cache cache.CacheService, cfg *config.Config, now func() time.Time) *SitemapUsecase {
	return &SitemapUsecase{
		productRepo: repo,
		baseURL:     strings.TrimRight(cfg.FrontendURL, "/"),
		cache:       cache,
		ttl:         cfg.CacheSitemapTTL,
		now:         now,
	}
}

// GenerateSitemap lists the storefront pages, every active product and every
// active category.
func (u *SitemapUsecase) GenerateSitemap(ctx context.Context) ([]SitemapItem, error) {
	return cache.Fetch(u.cache, sitemapKey, u.ttl, func() ([]SitemapItem, error) {
		return u.build(ctx)
	})
}

func (u *SitemapUsecase) build(ctx context.Context) ([]SitemapItem, error) {
	today := u.now().Format("2006-01-02")

	var items []SitemapItem
	for i, path := range []string{"", "/shop", "/cart"} {
		priority := float32(0.8)
		if i == 0 {
			priority = 1.0
		}
		items = append(items, SitemapItem{Loc: u.baseURL + path, LastMod: today, ChangeFreq: "daily", Priority: priority})
	}

	for offset := 0; ; offset += sitemapBatchSize {
		products, total, err := u.productRepo.GetProducts(ctx, domain.ProductFilter{
			ActiveOnly: true,
			Limit:      sitemapBatchSize,
			Offset:     offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products: %w", err)
		}
		for _, p := range products {
			items = append(items, SitemapItem{
				Loc:        fmt.Sprintf("%s/products/%s", u.baseURL, p.Slug),
				LastMod:    p.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "weekly",
				Priority:   0.9,
			})
		}
		if len(products) == 0 || int64(offset+len(products)) >= total {
			break
		}
	}

	categories, err := u.productRepo.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	for _, c := range categories {
		items = append(items, SitemapItem{
			Loc:        fmt.Sprintf("%s/shop?category=%s", u.baseURL, c.Slug),
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   0.8,
		})
	}
	return items, nil
}
