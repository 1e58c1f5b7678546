package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// SettingsCache serves site settings from memory and refetches them once
// the TTL has elapsed. A failed fetch serves defaults and is not cached.
type SettingsCache struct {
	repo domain.SettingsRepository
	ttl  time.Duration
	now  func() time.Time

	mu         sync.RWMutex
	cached     *domain.SiteSettings
	fetchedAt  time.Time
	generation uint64
}

func NewSettingsCache(repo domain.SettingsRepository, ttl time.Duration, now func() time.Time) *SettingsCache {
	if now == nil {
		now = time.Now
	}
	return &SettingsCache{repo: repo, ttl: ttl, now: now}
}

// Get never fails. Concurrent misses may fetch in parallel. A fetch that
// overlapped an Invalidate is returned but not stored.
func (c *SettingsCache) Get(ctx context.Context) domain.SiteSettings {
	now := c.now()

	c.mu.RLock()
	if c.cached != nil && now.Sub(c.fetchedAt) < c.ttl {
		s := *c.cached
		c.mu.RUnlock()
		return s
	}
	generation := c.generation
	c.mu.RUnlock()

	values, err := c.repo.GetValues(ctx, domain.SiteSettingKeys)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Site settings unavailable, serving defaults")
		return domain.DefaultSiteSettings()
	}

	settings := parseSettings(ctx, values)
	c.mu.Lock()
	if c.generation == generation {
		c.cached = &settings
		c.fetchedAt = now
	}
	c.mu.Unlock()
	return settings
}

// Invalidate drops the cached value so the next Get refetches.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.fetchedAt = time.Time{}
	c.generation++
	c.mu.Unlock()
}

// parseSettings overlays stored values on the defaults key by key.
func parseSettings(ctx context.Context, values map[string]string) domain.SiteSettings {
	s := domain.DefaultSiteSettings()
	log := logger.WithContext(ctx)

	dec := func(key string, dst *decimal.Decimal) {
		raw, ok := values[key]
		if !ok {
			return
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			log.Warn().Str("key", key).Str("value", raw).Msg("Ignoring malformed site setting")
			return
		}
		*dst = v
	}
	dec(domain.SettingGlobalFreeShippingThreshold, &s.GlobalFreeShippingThreshold)
	dec(domain.SettingDefaultShippingCost, &s.DefaultShippingCost)
	dec(domain.SettingShippingTaxRate, &s.ShippingTaxRate)
	dec(domain.SettingGeneralTaxRate, &s.GeneralTaxRate)

	if raw, ok := values[domain.SettingFreeShippingEnabled]; ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.FreeShippingEnabled = v
		} else {
			log.Warn().Str("key", domain.SettingFreeShippingEnabled).Str("value", raw).Msg("Ignoring malformed site setting")
		}
	}
	return s
}

// SettingsUsecase exposes the settings to the storefront and back office.
type SettingsUsecase struct {
	repo  domain.SettingsRepository
	cache *SettingsCache
}

func NewSettingsUsecase(repo domain.SettingsRepository, cache *SettingsCache) *SettingsUsecase {
	return &SettingsUsecase{repo: repo, cache: cache}
}

func (u *SettingsUsecase) GetSettings(ctx context.Context) domain.SiteSettings {
	return u.cache.Get(ctx)
}

// UpdateSettings validates and stores every setting, then drops the cache.
func (u *SettingsUsecase) UpdateSettings(ctx context.Context, s domain.SiteSettings) (domain.SiteSettings, error) {
	verr := &domain.ValidationError{}
	if s.GlobalFreeShippingThreshold.IsNegative() {
		verr.Add("globalFreeShippingThreshold", "must not be negative")
	}
	if s.DefaultShippingCost.IsNegative() {
		verr.Add("defaultShippingCost", "must not be negative")
	}
	one := decimal.NewFromInt(1)
	if s.ShippingTaxRate.IsNegative() || s.ShippingTaxRate.GreaterThan(one) {
		verr.Add("shippingTaxRate", "must be a fraction between 0 and 1")
	}
	if s.GeneralTaxRate.IsNegative() || s.GeneralTaxRate.GreaterThan(one) {
		verr.Add("generalTaxRate", "must be a fraction between 0 and 1")
	}
	if verr.HasErrors() {
		return domain.SiteSettings{}, verr
	}

	if err := u.repo.UpsertValues(ctx, s.Values()); err != nil {
		return domain.SiteSettings{}, err
	}
	u.cache.Invalidate()
	logger.WithContext(ctx).Info().Msg("Site settings updated")
	return u.cache.Get(ctx), nil
}
