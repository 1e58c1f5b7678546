package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a percentage discount on one product, optionally bounded by a
// time window. Both bounds nil means the promotion runs indefinitely.
type Promotion struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        *time.Time      `json:"startsAt"`
	EndsAt          *time.Time      `json:"endsAt"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Countdown is the remaining time of a promotion split for display.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

type PromotionFilter struct {
	ProductID  string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type PromotionRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]Promotion, error)
	ListByProducts(ctx context.Context, productIDs []string) (map[string][]Promotion, error)
	List(ctx context.Context, filter PromotionFilter) ([]Promotion, int64, error)
	GetByID(ctx context.Context, id string) (*Promotion, error)
	Create(ctx context.Context, promo *Promotion) error
	Update(ctx context.Context, promo *Promotion) error
	Delete(ctx context.Context, id string) error
}
