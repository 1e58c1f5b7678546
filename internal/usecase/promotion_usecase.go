package usecase

import (
	"context"
	"errors"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/pricing"
	"atelier-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

type PromotionUsecase struct {
	repo     domain.PromotionRepository
	products domain.ProductRepository
	catalog  *CatalogUsecase
	now      func() time.Time
}

func NewPromotionUsecase(repo domain.PromotionRepository, products domain.ProductRepository, catalog *CatalogUsecase, now func() time.Time) *PromotionUsecase {
	if now == nil {
		now = time.Now
	}
	return &PromotionUsecase{repo: repo, products: products, catalog: catalog, now: now}
}

type PromotionInput struct {
	ProductID       string          `json:"productId" validate:"required,uuid"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        *time.Time      `json:"startsAt"`
	EndsAt          *time.Time      `json:"endsAt"`
	Active          *bool           `json:"active"`
}

// validate enforces the 1–100 discount range and an ordered window.
func (in PromotionInput) validate() error {
	extra := &domain.ValidationError{}
	if in.DiscountPercent.LessThan(decimal.NewFromInt(1)) || in.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		extra.Add("discountPercent", "must be between 1 and 100")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.StartsAt.After(*in.EndsAt) {
		extra.Add("endsAt", "must not be before startsAt")
	}
	return merge(validateStruct(in), extra)
}

func (in PromotionInput) apply(p *domain.Promotion) {
	p.ProductID = in.ProductID
	p.DiscountPercent = in.DiscountPercent
	p.StartsAt = in.StartsAt
	p.EndsAt = in.EndsAt
	p.Active = in.Active == nil || *in.Active
}

// PromotionView annotates a promotion with its state at request time.
type PromotionView struct {
	domain.Promotion
	CurrentlyActive bool              `json:"currentlyActive"`
	Countdown       *domain.Countdown `json:"countdown,omitempty"`
}

func (u *PromotionUsecase) view(p domain.Promotion) PromotionView {
	now := u.now()
	v := PromotionView{Promotion: p, CurrentlyActive: pricing.IsPromotionActive(&p, now)}
	if v.CurrentlyActive && p.EndsAt != nil {
		cd := pricing.CountdownUntil(*p.EndsAt, now)
		v.Countdown = &cd
	}
	return v
}

func (u *PromotionUsecase) List(ctx context.Context, filter domain.PromotionFilter) ([]PromotionView, int64, error) {
	promos, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]PromotionView, len(promos))
	for i, p := range promos {
		views[i] = u.view(p)
	}
	return views, total, nil
}

func (u *PromotionUsecase) Get(ctx context.Context, id string) (*PromotionView, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := u.view(*p)
	return &v, nil
}

func (u *PromotionUsecase) Create(ctx context.Context, in PromotionInput) (*PromotionView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := u.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	promo := &domain.Promotion{}
	in.apply(promo)
	if err := u.repo.Create(ctx, promo); err != nil {
		return nil, err
	}
	u.catalog.invalidate()
	logger.WithContext(ctx).Info().Str("promotion_id", promo.ID).Str("product_id", promo.ProductID).
		Str("discount", promo.DiscountPercent.String()).Msg("Promotion created")
	v := u.view(*promo)
	return &v, nil
}

func (u *PromotionUsecase) Update(ctx context.Context, id string, in PromotionInput) (*PromotionView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	promo, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if promo.ProductID != in.ProductID {
		if err := u.ensureProduct(ctx, in.ProductID); err != nil {
			return nil, err
		}
	}
	in.apply(promo)
	if err := u.repo.Update(ctx, promo); err != nil {
		return nil, err
	}
	u.catalog.invalidate()
	v := u.view(*promo)
	return &v, nil
}

func (u *PromotionUsecase) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.catalog.invalidate()
	return nil
}

func (u *PromotionUsecase) ensureProduct(ctx context.Context, productID string) error {
	if _, err := u.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("productId", "does not reference an existing product")
		}
		return err
	}
	return nil
}
