package usecase

import (
	"context"
	"math"
	"testing"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItemSnapshotsPromotionPrice(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	vaseID := s.productID(t, "clay-vase")
	s.promos.Promos = []domain.Promotion{{ProductID: vaseID, DiscountPercent: money.MustParse("25"), Active: true}}

	view, err := s.cart.AddItem(ctx, "cart-1", AddCartItemInput{ProductID: vaseID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	// 150 × 0.75 = 112.5, rounded half away from zero
	assert.Equal(t, "113", view.Items[0].UnitPrice.String())
	assert.Equal(t, "226", view.Subtotal.String())
	assert.Equal(t, 2, view.ItemCount)
	assert.False(t, view.IsLoading)

	// Ending the promotion does not reprice lines already in the cart.
	s.promos.Promos = nil
	view, err = s.cart.AddItem(ctx, "cart-1", AddCartItemInput{ProductID: vaseID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "113", view.Items[0].UnitPrice.String())
}

func TestCart_VariantLines(t *testing.T) {
	s := newShop(t, rugProduct())
	ctx := context.Background()
	rugID := s.productID(t, "kilim-rug")

	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, VariantID: ptr("v-small"), Quantity: 1})
	require.NoError(t, err)
	view, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, VariantID: ptr("v-large"), Quantity: 1})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, rugID+":v-small", view.Items[0].ID)
	assert.Equal(t, "Kilim rug (Small)", view.Items[0].Name)
	assert.Equal(t, "300", view.Items[0].UnitPrice.String())
	assert.Equal(t, "420", view.Items[1].UnitPrice.String())
	assert.Equal(t, "720", view.Subtotal.String())
}

func TestCart_AddItemRejectsUnavailable(t *testing.T) {
	inactive := vaseProduct()
	inactive.IsActive = false
	s := newShop(t, inactive, rugProduct())
	ctx := context.Background()
	rugID := s.productID(t, "kilim-rug")

	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase")})
	assert.ErrorIs(t, err, domain.ErrProductInactive)

	_, err = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, VariantID: ptr("v-ghost")})
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)

	_, err = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, VariantID: ptr("v-retired")})
	assert.ErrorIs(t, err, domain.ErrProductInactive)

	_, err = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.cart.AddItem(ctx, "c", AddCartItemInput{})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCart_QuantityClampedToConfiguredMax(t *testing.T) {
	s := newShop(t, vaseProduct())
	view, err := s.cart.AddItem(context.Background(), "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, s.cfg.MaxCartQuantity, view.Items[0].Quantity)
}

func TestCart_AddItemRejectsHugeQuantity(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	vaseID := s.productID(t, "clay-vase")

	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID, Quantity: 1})
	require.NoError(t, err)

	_, err = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID, Quantity: math.MaxInt})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")

	view, err := s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	s := newShop(t, vaseProduct(), rugProduct())
	ctx := context.Background()
	vaseID := s.productID(t, "clay-vase")
	rugID := s.productID(t, "kilim-rug")

	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID, Quantity: 1})
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, Quantity: 1})

	view, err := s.cart.UpdateItem(ctx, "c", vaseID, 4)
	require.NoError(t, err)
	assert.Equal(t, "900", view.Subtotal.String())

	_, err = s.cart.UpdateItem(ctx, "c", "ghost", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err = s.cart.RemoveItem(ctx, "c", rugID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	view, err = s.cart.UpdateItem(ctx, "c", vaseID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID})
	require.NoError(t, s.cart.Clear(ctx, "c"))
	view, err = s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
}

func TestCart_GetWithShippingProgress(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 3})
	require.NoError(t, err)

	view, err := s.cart.Get(ctx, "c", "TN", domain.ShippingMethodStandard)
	require.NoError(t, err)
	require.NotNil(t, view.Shipping)
	assert.False(t, view.Shipping.IsFree)
	assert.Equal(t, "50", view.Shipping.AmountNeeded.String())

	view, err = s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	assert.Nil(t, view.Shipping)
}

func TestCart_CartsAreIsolated(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	_, err := s.cart.AddItem(ctx, "a", AddCartItemInput{ProductID: s.productID(t, "clay-vase")})
	require.NoError(t, err)

	view, err := s.cart.Get(ctx, "b", "", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
