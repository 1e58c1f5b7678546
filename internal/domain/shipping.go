package domain

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type ShippingMethod string

func (m ShippingMethod) Valid() bool {
	for _, known := range ShippingMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseShippingMethod normalizes user input; empty input means standard.
func ParseShippingMethod(s string) (ShippingMethod, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ShippingMethodStandard, true
	}
	m := ShippingMethod(s)
	return m, m.Valid()
}

// NormalizeCountry upper-cases and trims an ISO 3166 alpha-2 code.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ThresholdOverride is a per-rate free-shipping threshold. The zero value
// inherits the global threshold.
type ThresholdOverride struct {
	value decimal.Decimal
	set   bool
}

func InheritThreshold() ThresholdOverride {
	return ThresholdOverride{}
}

func OverrideThreshold(v decimal.Decimal) ThresholdOverride {
	return ThresholdOverride{value: v, set: true}
}

// Value returns the override and whether one is set.
func (t ThresholdOverride) Value() (decimal.Decimal, bool) {
	return t.value, t.set
}

func (t ThresholdOverride) IsInherited() bool {
	return !t.set
}

// Resolve returns the override, or global when inherited.
func (t ThresholdOverride) Resolve(global decimal.Decimal) decimal.Decimal {
	if t.set {
		return t.value
	}
	return global
}

func (t ThresholdOverride) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return t.value.MarshalJSON()
}

func (t *ThresholdOverride) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = InheritThreshold()
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = OverrideThreshold(v)
	return nil
}

type ShippingRate struct {
	ID                    string            `json:"id"`
	CountryCode           string            `json:"countryCode"`
	Method                ShippingMethod    `json:"method"`
	BaseRate              decimal.Decimal   `json:"baseRate"`
	FreeShippingThreshold ThresholdOverride `json:"freeShippingThreshold"`
	EstimatedDaysMin      int               `json:"estimatedDaysMin"`
	EstimatedDaysMax      int               `json:"estimatedDaysMax"`
	IsActive              bool              `json:"isActive"`
	DisplayOrder          int               `json:"displayOrder"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// ShippingResult is the resolver output. Err carries a lookup failure that was
// absorbed by the fallback branch; it is never serialized.
type ShippingResult struct {
	Cost         decimal.Decimal `json:"cost"`
	IsFree       bool            `json:"isFree"`
	Rate         *ShippingRate   `json:"rate"`
	AmountNeeded decimal.Decimal `json:"amountNeeded"`
	Threshold    decimal.Decimal `json:"threshold"`
	Err          error           `json:"-"`
}

type ShippingRateRepository interface {
	// GetActiveRate returns ErrNotFound when no active row matches.
	GetActiveRate(ctx context.Context, countryCode string, method ShippingMethod) (*ShippingRate, error)
	ListActiveByCountry(ctx context.Context, countryCode string) ([]ShippingRate, error)
	ListAll(ctx context.Context) ([]ShippingRate, error)
	GetByID(ctx context.Context, id string) (*ShippingRate, error)
	Create(ctx context.Context, rate *ShippingRate) error
	Update(ctx context.Context, rate *ShippingRate) error
	Delete(ctx context.Context, id string) error
}

// CountryTaxRate overrides the general tax rate for one country.
type CountryTaxRate struct {
	CountryCode string          `json:"countryCode"`
	Rate        decimal.Decimal `json:"rate"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type TaxRateRepository interface {
	GetByCountry(ctx context.Context, countryCode string) (*CountryTaxRate, error)
	ListAll(ctx context.Context) ([]CountryTaxRate, error)
	Upsert(ctx context.Context, rate *CountryTaxRate) error
	Delete(ctx context.Context, countryCode string) error
}
