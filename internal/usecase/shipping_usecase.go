package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/money"

	"github.com/shopspring/decimal"
)

type ShippingUsecase struct {
	rates    domain.ShippingRateRepository
	settings *SettingsCache
	cache    cache.CacheService
	cacheTTL time.Duration
}

func NewShippingUsecase(rates domain.ShippingRateRepository, settings *SettingsCache, cache cache.CacheService, cacheTTL time.Duration) *ShippingUsecase {
	return &ShippingUsecase{
		rates:    rates,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// CalculateShipping resolves the shipping cost of an order. It never fails: a
// missing or unreadable rate falls back to the global settings and the lookup
// error, if any, is carried in result.Err.
func (u *ShippingUsecase) CalculateShipping(ctx context.Context, countryCode string, subtotal decimal.Decimal, method domain.ShippingMethod) domain.ShippingResult {
	settings := u.settings.Get(ctx)
	if method == "" {
		method = domain.ShippingMethodStandard
	}

	rate, err := u.rates.GetActiveRate(ctx, domain.NormalizeCountry(countryCode), method)
	if err != nil {
		result := resolveShipping(settings, nil, subtotal)
		if !errors.Is(err, domain.ErrNotFound) {
			result.Err = err
			logger.WithContext(ctx).Warn().Err(err).
				Str("country", countryCode).Str("method", string(method)).
				Msg("Shipping rate lookup failed, using global defaults")
		}
		return result
	}
	return resolveShipping(settings, rate, subtotal)
}

// resolveShipping applies the free-shipping rule against a rate, or against
// the global settings when rate is nil.
func resolveShipping(settings domain.SiteSettings, rate *domain.ShippingRate, subtotal decimal.Decimal) domain.ShippingResult {
	threshold := settings.GlobalFreeShippingThreshold
	base := settings.DefaultShippingCost
	if rate != nil {
		threshold = rate.FreeShippingThreshold.Resolve(settings.GlobalFreeShippingThreshold)
		base = rate.BaseRate
	}

	isFree := settings.FreeShippingEnabled && subtotal.GreaterThanOrEqual(threshold)
	cost := money.NonNegative(base)
	if isFree {
		cost = decimal.Zero
	}
	return domain.ShippingResult{
		Cost:         cost,
		IsFree:       isFree,
		Rate:         rate,
		AmountNeeded: money.NonNegative(threshold.Sub(subtotal)),
		Threshold:    threshold,
	}
}

// ListRates returns the active rates of a country for the storefront picker.
func (u *ShippingUsecase) ListRates(ctx context.Context, countryCode string) ([]domain.ShippingRate, error) {
	country := domain.NormalizeCountry(countryCode)
	return cache.Fetch(u.cache, ratesCacheKey(country), u.cacheTTL, func() ([]domain.ShippingRate, error) {
		rates, err := u.rates.ListActiveByCountry(ctx, country)
		if rates == nil && err == nil {
			rates = []domain.ShippingRate{}
		}
		return rates, err
	})
}

// --- Admin ---

type ShippingRateInput struct {
	CountryCode           string                   `json:"countryCode" validate:"required,len=2,alpha"`
	Method                string                   `json:"method" validate:"omitempty,oneof=standard express overnight"`
	BaseRate              decimal.Decimal          `json:"baseRate"`
	FreeShippingThreshold domain.ThresholdOverride `json:"freeShippingThreshold"`
	EstimatedDaysMin      int                      `json:"estimatedDaysMin" validate:"gte=0,lte=90"`
	EstimatedDaysMax      int                      `json:"estimatedDaysMax" validate:"gte=0,lte=90"`
	IsActive              *bool                    `json:"isActive"`
	DisplayOrder          int                      `json:"displayOrder" validate:"gte=0"`
}

func (in ShippingRateInput) validate() error {
	extra := &domain.ValidationError{}
	if in.BaseRate.IsNegative() {
		extra.Add("baseRate", "must not be negative")
	}
	if v, ok := in.FreeShippingThreshold.Value(); ok && v.IsNegative() {
		extra.Add("freeShippingThreshold", "must not be negative")
	}
	if in.EstimatedDaysMin > in.EstimatedDaysMax {
		extra.Add("estimatedDaysMin", "must not exceed estimatedDaysMax")
	}
	return merge(validateStruct(in), extra)
}

func (in ShippingRateInput) apply(rate *domain.ShippingRate) {
	rate.CountryCode = domain.NormalizeCountry(in.CountryCode)
	rate.Method, _ = domain.ParseShippingMethod(in.Method)
	rate.BaseRate = in.BaseRate
	rate.FreeShippingThreshold = in.FreeShippingThreshold
	rate.EstimatedDaysMin = in.EstimatedDaysMin
	rate.EstimatedDaysMax = in.EstimatedDaysMax
	rate.IsActive = true
	if in.IsActive != nil {
		rate.IsActive = *in.IsActive
	}
	rate.DisplayOrder = in.DisplayOrder
}

func (u *ShippingUsecase) ListAllRates(ctx context.Context) ([]domain.ShippingRate, error) {
	rates, err := u.rates.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if rates == nil {
		rates = []domain.ShippingRate{}
	}
	return rates, nil
}

func duplicateRateMessage(rate *domain.ShippingRate) string {
	return fmt.Sprintf("a %s rate already exists for %s", rate.Method, rate.CountryCode)
}

func (u *ShippingUsecase) CreateRate(ctx context.Context, in ShippingRateInput) (*domain.ShippingRate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rate := &domain.ShippingRate{}
	in.apply(rate)
	if err := u.rates.Create(ctx, rate); err != nil {
		return nil, conflictAsField(err, "method", duplicateRateMessage(rate))
	}
	u.cache.Delete(ratesCacheKey(rate.CountryCode))
	logger.WithContext(ctx).Info().Str("rate_id", rate.ID).Str("country", rate.CountryCode).Msg("Shipping rate created")
	return rate, nil
}

func (u *ShippingUsecase) UpdateRate(ctx context.Context, id string, in ShippingRateInput) (*domain.ShippingRate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rate, err := u.rates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCountry := rate.CountryCode
	in.apply(rate)
	if err := u.rates.Update(ctx, rate); err != nil {
		return nil, conflictAsField(err, "method", duplicateRateMessage(rate))
	}
	u.cache.Delete(ratesCacheKey(previousCountry))
	u.cache.Delete(ratesCacheKey(rate.CountryCode))
	return rate, nil
}

func (u *ShippingUsecase) DeleteRate(ctx context.Context, id string) error {
	rate, err := u.rates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.rates.Delete(ctx, id); err != nil {
		return err
	}
	u.cache.Delete(ratesCacheKey(rate.CountryCode))
	return nil
}

func ratesCacheKey(country string) string {
	return "shipping:rates:" + country
}
