package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Keys of the site_settings rows read by the settings cache.
const (
	SettingGlobalFreeShippingThreshold = "global_free_shipping_threshold"
	SettingFreeShippingEnabled         = "free_shipping_enabled"
	SettingDefaultShippingCost         = "default_shipping_cost"
	SettingShippingTaxRate             = "shipping_tax_rate"
	SettingGeneralTaxRate              = "general_tax_rate"
)

var SiteSettingKeys = []string{
	SettingGlobalFreeShippingThreshold,
	SettingFreeShippingEnabled,
	SettingDefaultShippingCost,
	SettingShippingTaxRate,
	SettingGeneralTaxRate,
}

// SiteSettings is the singleton shop configuration used by shipping and tax.
type SiteSettings struct {
	GlobalFreeShippingThreshold decimal.Decimal `json:"globalFreeShippingThreshold"`
	FreeShippingEnabled         bool            `json:"freeShippingEnabled"`
	DefaultShippingCost         decimal.Decimal `json:"defaultShippingCost"`
	ShippingTaxRate             decimal.Decimal `json:"shippingTaxRate"`
	GeneralTaxRate              decimal.Decimal `json:"generalTaxRate"`
}

// DefaultSiteSettings is served whenever storage is unreachable or a key is missing.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		GlobalFreeShippingThreshold: decimal.NewFromInt(500),
		FreeShippingEnabled:         true,
		DefaultShippingCost:         decimal.NewFromInt(7),
		ShippingTaxRate:             decimal.Zero,
		GeneralTaxRate:              decimal.RequireFromString("0.19"),
	}
}

// Values renders the settings as site_settings rows.
func (s SiteSettings) Values() map[string]string {
	enabled := "false"
	if s.FreeShippingEnabled {
		enabled = "true"
	}
	return map[string]string{
		SettingGlobalFreeShippingThreshold: s.GlobalFreeShippingThreshold.String(),
		SettingFreeShippingEnabled:         enabled,
		SettingDefaultShippingCost:         s.DefaultShippingCost.String(),
		SettingShippingTaxRate:             s.ShippingTaxRate.String(),
		SettingGeneralTaxRate:              s.GeneralTaxRate.String(),
	}
}

type SettingsRepository interface {
	// GetValues returns the raw values of the requested keys. Keys without a
	// row are absent from the map.
	GetValues(ctx context.Context, keys []string) (map[string]string, error)
	UpsertValues(ctx context.Context, values map[string]string) error
}
