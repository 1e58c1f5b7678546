package pricing

import (
	"testing"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestIsPromotionActive(t *testing.T) {
	cases := []struct {
		name  string
		promo domain.Promotion
		want  bool
	}{
		{"indefinite", domain.Promotion{Active: true}, true},
		{"flag off", domain.Promotion{Active: false}, false},
		{"flag off inside window", domain.Promotion{Active: false, StartsAt: at(-time.Hour), EndsAt: at(time.Hour)}, false},
		{"inside window", domain.Promotion{Active: true, StartsAt: at(-time.Hour), EndsAt: at(time.Hour)}, true},
		{"not started", domain.Promotion{Active: true, StartsAt: at(time.Second)}, false},
		{"starts now", domain.Promotion{Active: true, StartsAt: at(0)}, true},
		{"ended a second ago", domain.Promotion{Active: true, EndsAt: at(-time.Second)}, false},
		{"ends now", domain.Promotion{Active: true, EndsAt: at(0)}, true},
		{"open start", domain.Promotion{Active: true, EndsAt: at(24 * time.Hour)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPromotionActive(&tc.promo, now))
		})
	}
	assert.False(t, IsPromotionActive(nil, now))
}

func TestIsPromotionActive_IndefiniteIgnoresNow(t *testing.T) {
	promo := &domain.Promotion{Active: true}
	for _, ts := range []time.Time{{}, now, now.AddDate(50, 0, 0), now.AddDate(-50, 0, 0)} {
		assert.True(t, IsPromotionActive(promo, ts))
	}
}

func TestEffectivePrice(t *testing.T) {
	assert.True(t, EffectivePrice(money.MustParse("100"), money.MustParse("20")).Equal(money.MustParse("80")))
	assert.True(t, EffectivePrice(money.MustParse("100"), money.MustParse("0")).Equal(money.MustParse("100")))
	assert.True(t, EffectivePrice(money.MustParse("85"), money.MustParse("10")).Equal(money.MustParse("76.5")))
}

func TestCountdownUntil(t *testing.T) {
	end := now.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second + 600*time.Millisecond)
	assert.Equal(t, domain.Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}, CountdownUntil(end, now))

	assert.Equal(t, domain.Countdown{Expired: true}, CountdownUntil(now.Add(-time.Minute), now))
	assert.Equal(t, domain.Countdown{Expired: true}, CountdownUntil(now, now))
}

func TestQuotePrice_PicksLargestActiveDiscount(t *testing.T) {
	promos := []domain.Promotion{
		{ID: "small", Active: true, DiscountPercent: money.MustParse("10")},
		{ID: "expired", Active: true, DiscountPercent: money.MustParse("50"), EndsAt: at(-time.Second)},
		{ID: "big", Active: true, DiscountPercent: money.MustParse("25"), EndsAt: at(90 * time.Minute)},
		{ID: "disabled", Active: false, DiscountPercent: money.MustParse("40")},
	}

	q := QuotePrice(money.MustParse("59"), promos, now, 0)
	require.NotNil(t, q.Promotion)
	assert.Equal(t, "big", q.Promotion.ID)
	// 59 × 0.75 = 44.25, rounded to whole units
	assert.Equal(t, "44", q.EffectivePrice.String())
	require.NotNil(t, q.Countdown)
	assert.Equal(t, int64(1), q.Countdown.Hours)
	assert.Equal(t, int64(30), q.Countdown.Minutes)
}

func TestQuotePrice_NoPromotion(t *testing.T) {
	q := QuotePrice(money.MustParse("120.4"), nil, now, 0)
	assert.Nil(t, q.Promotion)
	assert.Nil(t, q.Countdown)
	assert.Equal(t, "120", q.EffectivePrice.String())
	assert.Equal(t, "120.4", q.BasePrice.String())
}
