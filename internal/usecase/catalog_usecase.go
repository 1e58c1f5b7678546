package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"atelier-backend/config"
	"atelier-backend/internal/domain"
	"atelier-backend/internal/pricing"
	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// ProductView is a product priced at a point in time.
type ProductView struct {
	domain.Product
	EffectivePrice decimal.Decimal   `json:"effectivePrice"`
	Promotion      *domain.Promotion `json:"promotion,omitempty"`
	Countdown      *domain.Countdown `json:"countdown,omitempty"`
}

type CatalogUsecase struct {
	repo    domain.ProductRepository
	promos  domain.PromotionRepository
	cache   cache.CacheService
	cfg     *config.Config
	now     func() time.Time
	version atomic.Int64
}

func NewCatalogUsecase(repo domain.ProductRepository, promos domain.PromotionRepository, cache cache.CacheService, cfg *config.Config, now func() time.Time) *CatalogUsecase {
	if now == nil {
		now = time.Now
	}
	return &CatalogUsecase{
		repo:   repo,
		promos: promos,
		cache:  cache,
		cfg:    cfg,
		now:    now,
	}
}

// invalidate retires every cached catalog entry by bumping the key version.
func (uc *CatalogUsecase) invalidate() {
	uc.version.Add(1)
}

func (uc *CatalogUsecase) key(format string, args ...interface{}) string {
	return fmt.Sprintf("catalog:v%d:", uc.version.Load()) + fmt.Sprintf(format, args...)
}

// --- Pricing ---

// Price quotes a base price against the given promotions at the current time.
func (uc *CatalogUsecase) Price(base decimal.Decimal, promos []domain.Promotion) pricing.Quote {
	return pricing.QuotePrice(base, promos, uc.now(), uc.cfg.PriceRoundingPlaces)
}

func (uc *CatalogUsecase) view(p domain.Product, promos []domain.Promotion) ProductView {
	q := uc.Price(p.Price, promos)
	return ProductView{
		Product:        p,
		EffectivePrice: q.EffectivePrice,
		Promotion:      q.Promotion,
		Countdown:      q.Countdown,
	}
}

// --- Categories ---

func (uc *CatalogUsecase) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return cache.Fetch(uc.cache, uc.key("categories:%t", activeOnly), uc.cfg.CacheCatalogTTL, func() ([]domain.Category, error) {
		cats, err := uc.repo.ListCategories(ctx, activeOnly)
		if cats == nil && err == nil {
			cats = []domain.Category{}
		}
		return cats, err
	})
}

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.Slug == "" {
		category.Slug = utils.GenerateSlug(category.Name)
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := uc.repo.CreateCategory(ctx, category); err != nil {
		return conflictAsField(err, "slug", "is already taken")
	}
	uc.invalidate()
	return nil
}

func (uc *CatalogUsecase) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if category.Slug == "" {
		category.Slug = utils.GenerateSlug(category.Name)
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := uc.repo.UpdateCategory(ctx, category); err != nil {
		return conflictAsField(err, "slug", "is already taken")
	}
	uc.invalidate()
	return nil
}

func (uc *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

// --- Storefront ---

// ListProducts returns a page of active products with their current prices.
func (uc *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]ProductView, int64, error) {
	filter.ActiveOnly = true
	products, total, err := uc.products(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return uc.priceAll(ctx, products, total)
}

type productPage struct {
	products []domain.Product
	total    int64
}

func (uc *CatalogUsecase) products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	featured := "any"
	if filter.IsFeatured != nil {
		featured = fmt.Sprint(*filter.IsFeatured)
	}
	key := uc.key("products:%s:%s:%s:%t:%d:%d", filter.CategorySlug, filter.Query, featured,
		filter.ActiveOnly, filter.Limit, filter.Offset)
	page, err := cache.Fetch(uc.cache, key, uc.cfg.CacheCatalogTTL, func() (productPage, error) {
		products, total, err := uc.repo.GetProducts(ctx, filter)
		if products == nil {
			products = []domain.Product{}
		}
		return productPage{products: products, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return page.products, page.total, nil
}

// priceAll attaches promotions loaded in one query. A promotion lookup
// failure prices the page at base price instead of failing it.
func (uc *CatalogUsecase) priceAll(ctx context.Context, products []domain.Product, total int64) ([]ProductView, int64, error) {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	promos, err := uc.promos.ListByProducts(ctx, ids)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Promotions unavailable, listing base prices")
		promos = map[string][]domain.Promotion{}
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = uc.view(p, promos[p.ID])
	}
	return views, total, nil
}

// GetProductBySlug returns an active product with its current price.
func (uc *CatalogUsecase) GetProductBySlug(ctx context.Context, slug string) (*ProductView, error) {
	product, err := cache.Fetch(uc.cache, uc.key("product:slug:%s", slug), uc.cfg.CacheCatalogTTL, func() (*domain.Product, error) {
		return uc.repo.GetProductBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrNotFound
	}

	promos, err := uc.promos.ListByProduct(ctx, product.ID)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("product_id", product.ID).Msg("Promotions unavailable, using base price")
		promos = nil
	}
	v := uc.view(*product, promos)
	return &v, nil
}

// GetProductForCart loads a product bypassing the cache so cart prices
// reflect the latest admin edits.
func (uc *CatalogUsecase) GetProductForCart(ctx context.Context, id string) (*domain.Product, []domain.Promotion, error) {
	product, err := uc.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	promos, err := uc.promos.ListByProduct(ctx, product.ID)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("product_id", product.ID).Msg("Promotions unavailable, using base price")
		promos = nil
	}
	return product, promos, nil
}

// --- Admin ---

type VariantInput struct {
	ID       string           `json:"id" validate:"omitempty,uuid"`
	Name     string           `json:"name" validate:"required,max=120"`
	SKU      string           `json:"sku" validate:"max=64"`
	Price    *decimal.Decimal `json:"price"`
	Stock    int              `json:"stock" validate:"gte=0"`
	ImageURL string           `json:"imageUrl"`
	IsActive *bool            `json:"isActive"`
}

type ProductInput struct {
	CategoryID            *string              `json:"categoryId" validate:"omitempty,uuid"`
	Name                  string               `json:"name" validate:"required,max=200"`
	LocalizedNames        domain.LocalizedText `json:"localizedNames"`
	Slug                  string               `json:"slug" validate:"max=200"`
	Description           string               `json:"description"`
	LocalizedDescriptions domain.LocalizedText `json:"localizedDescriptions"`
	Price                 decimal.Decimal      `json:"price"`
	ImageURL              string               `json:"imageUrl"`
	Images                []string             `json:"images"`
	Stock                 int                  `json:"stock" validate:"gte=0"`
	IsFeatured            bool                 `json:"isFeatured"`
	IsActive              *bool                `json:"isActive"`
	Variants              []VariantInput       `json:"variants" validate:"dive"`
}

func (in ProductInput) validate() error {
	extra := &domain.ValidationError{}
	if in.Price.IsNegative() {
		extra.Add("price", "must not be negative")
	}
	for i, v := range in.Variants {
		if v.Price != nil && v.Price.IsNegative() {
			extra.Add(fmt.Sprintf("variants[%d].price", i), "must not be negative")
		}
	}
	checkLocales("localizedNames", in.LocalizedNames, extra)
	checkLocales("localizedDescriptions", in.LocalizedDescriptions, extra)
	if in.Slug != "" {
		if serr := slugError(in.Slug); serr != nil {
			for k, v := range serr.Fields {
				extra.Add(k, v)
			}
		}
	}
	return merge(validateStruct(in), extra)
}

func (in ProductInput) apply(p *domain.Product) {
	p.CategoryID = in.CategoryID
	p.Name = in.Name
	p.LocalizedNames = canonicalLocales(in.LocalizedNames)
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = utils.GenerateSlug(in.Name)
	}
	p.Description = utils.SanitizeHTML(in.Description)
	p.LocalizedDescriptions = sanitizeLocalized(canonicalLocales(in.LocalizedDescriptions))
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Images = in.Images
	p.Stock = in.Stock
	p.IsFeatured = in.IsFeatured
	p.IsActive = true
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.Variants = make([]domain.Variant, len(in.Variants))
	for i, v := range in.Variants {
		p.Variants[i] = domain.Variant{
			ID:       v.ID,
			Name:     v.Name,
			SKU:      v.SKU,
			Price:    v.Price,
			Stock:    v.Stock,
			ImageURL: v.ImageURL,
			IsActive: v.IsActive == nil || *v.IsActive,
		}
	}
}

func (uc *CatalogUsecase) AdminListProducts(ctx context.Context, filter domain.ProductFilter) ([]ProductView, int64, error) {
	products, total, err := uc.repo.GetProducts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return uc.priceAll(ctx, products, total)
}

func (uc *CatalogUsecase) AdminGetProduct(ctx context.Context, id string) (*ProductView, error) {
	product, promos, err := uc.GetProductForCart(ctx, id)
	if err != nil {
		return nil, err
	}
	v := uc.view(*product, promos)
	return &v, nil
}

func (uc *CatalogUsecase) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &domain.Product{}
	in.apply(product)
	if err := uc.repo.CreateProduct(ctx, product); err != nil {
		return nil, conflictAsField(err, "slug", "is already taken")
	}
	uc.invalidate()
	logger.WithContext(ctx).Info().Str("product_id", product.ID).Str("slug", product.Slug).Msg("Product created")
	return product, nil
}

func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(product)
	if err := uc.repo.UpdateProduct(ctx, product); err != nil {
		return nil, conflictAsField(err, "slug", "is already taken")
	}
	uc.invalidate()
	return product, nil
}

func (uc *CatalogUsecase) UpdateProductStatus(ctx context.Context, id string, isActive bool) error {
	if err := uc.repo.UpdateProductStatus(ctx, id, isActive); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

func validateCategory(category *domain.Category) error {
	extra := &domain.ValidationError{}
	if serr := slugError(category.Slug); serr != nil {
		extra = serr
	}
	checkLocales("localizedNames", category.LocalizedNames, extra)
	if err := merge(validateStruct(category), extra); err != nil {
		return err
	}
	category.LocalizedNames = canonicalLocales(category.LocalizedNames)
	return nil
}

func slugError(slug string) *domain.ValidationError {
	if slug == "" || utils.GenerateSlug(slug) != slug {
		return domain.NewValidationError("slug", "must contain only lowercase letters, digits and dashes")
	}
	return nil
}
