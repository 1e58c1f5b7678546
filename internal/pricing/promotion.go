// Package pricing evaluates promotion windows and composes checkout totals.
// Everything here is a pure function of its inputs; callers pass "now".
package pricing

import (
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/shopspring/decimal"
)

// IsPromotionActive reports whether promo applies at now: the flag is set and
// now falls inside the optional [StartsAt, EndsAt] window (bounds inclusive).
func IsPromotionActive(promo *domain.Promotion, now time.Time) bool {
	if promo == nil || !promo.Active {
		return false
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return false
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return false
	}
	return true
}

// EffectivePrice is basePrice × (1 − discountPercent/100), unrounded.
// Percent bounds are enforced when promotions are written.
func EffectivePrice(basePrice, discountPercent decimal.Decimal) decimal.Decimal {
	return money.ApplyDiscount(basePrice, discountPercent)
}

// BestActivePromotion picks the largest discount among promos active at now.
// Ties keep the earliest entry.
func BestActivePromotion(promos []domain.Promotion, now time.Time) *domain.Promotion {
	var best *domain.Promotion
	for i := range promos {
		p := &promos[i]
		if !IsPromotionActive(p, now) {
			continue
		}
		if best == nil || p.DiscountPercent.GreaterThan(best.DiscountPercent) {
			best = p
		}
	}
	return best
}

// CountdownUntil splits endsAt − now into days/hours/minutes/seconds,
// clamped to zero once the end has passed.
func CountdownUntil(endsAt, now time.Time) domain.Countdown {
	diff := endsAt.Sub(now).Milliseconds()
	if diff <= 0 {
		return domain.Countdown{Expired: true}
	}
	return domain.Countdown{
		Days:    diff / 86_400_000,
		Hours:   (diff / 3_600_000) % 24,
		Minutes: (diff / 60_000) % 60,
		Seconds: (diff / 1000) % 60,
	}
}

// Quote is the storefront view of a product price under its best promotion.
type Quote struct {
	BasePrice      decimal.Decimal   `json:"basePrice"`
	EffectivePrice decimal.Decimal   `json:"effectivePrice"`
	Promotion      *domain.Promotion `json:"promotion,omitempty"`
	Countdown      *domain.Countdown `json:"countdown,omitempty"`
}

// QuotePrice applies the best active promotion to basePrice and rounds the
// result to places minor units.
func QuotePrice(basePrice decimal.Decimal, promos []domain.Promotion, now time.Time, places int32) Quote {
	q := Quote{
		BasePrice:      basePrice,
		EffectivePrice: money.RoundUnits(basePrice, places),
	}
	best := BestActivePromotion(promos, now)
	if best == nil {
		return q
	}
	q.Promotion = best
	q.EffectivePrice = money.RoundUnits(EffectivePrice(basePrice, best.DiscountPercent), places)
	if best.EndsAt != nil {
		cd := CountdownUntil(*best.EndsAt, now)
		q.Countdown = &cd
	}
	return q
}
