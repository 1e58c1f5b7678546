package usecase

import (
	"context"
	"errors"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

type TaxUsecase struct {
	repo     domain.TaxRateRepository
	settings *SettingsCache
}

func NewTaxUsecase(repo domain.TaxRateRepository, settings *SettingsCache) *TaxUsecase {
	return &TaxUsecase{repo: repo, settings: settings}
}

// RateFor returns the country override, or the general rate from settings.
// Lookup failures fall back to the general rate.
func (u *TaxUsecase) RateFor(ctx context.Context, countryCode string) decimal.Decimal {
	general := u.settings.Get(ctx).GeneralTaxRate
	rate, err := u.repo.GetByCountry(ctx, domain.NormalizeCountry(countryCode))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WithContext(ctx).Warn().Err(err).Str("country", countryCode).Msg("Tax rate lookup failed, using general rate")
		}
		return general
	}
	return rate.Rate
}

func (u *TaxUsecase) ListRates(ctx context.Context) ([]domain.CountryTaxRate, error) {
	rates, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if rates == nil {
		rates = []domain.CountryTaxRate{}
	}
	return rates, nil
}

func (u *TaxUsecase) SetRate(ctx context.Context, countryCode string, rate decimal.Decimal) (*domain.CountryTaxRate, error) {
	country := domain.NormalizeCountry(countryCode)
	verr := &domain.ValidationError{}
	if len(country) != 2 {
		verr.Add("countryCode", "must be exactly 2 characters")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		verr.Add("rate", "must be a fraction between 0 and 1")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	t := &domain.CountryTaxRate{CountryCode: country, Rate: rate}
	if err := u.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *TaxUsecase) DeleteRate(ctx context.Context, countryCode string) error {
	return u.repo.Delete(ctx, domain.NormalizeCountry(countryCode))
}
