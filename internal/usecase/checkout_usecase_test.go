package usecase

import (
	"context"
	"errors"
	"testing"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		Customer: domain.Customer{Name: "Amel B.", Email: "amel@example.com", Phone: "+21620000000"},
		Address:  domain.ShippingAddress{Line1: "12 Rue de Marseille", City: "Tunis", PostalCode: "1000", Country: "tn"},
	}
}

func TestCheckout_QuoteBelowThreshold(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 3})
	require.NoError(t, err)

	q, err := s.checkout.Quote(ctx, "c", "tn", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ShippingMethodStandard, q.Method)
	assert.Equal(t, "450", q.Breakdown.Subtotal.String())
	assert.Equal(t, "7", q.Breakdown.Shipping.String())
	assert.True(t, q.Breakdown.TaxAmount.IsZero())
	assert.Equal(t, "457", q.Breakdown.Total.String())
	assert.Equal(t, "TND", q.Currency)
}

func TestCheckout_QuoteWithTax(t *testing.T) {
	s := newShop(t, vaseProduct(), rugProduct())
	s.cfg.ApplyTaxAtCheckout = true
	ctx := context.Background()
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 1})
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "kilim-rug"), Quantity: 1})

	q, err := s.checkout.Quote(ctx, "c", "TN", "standard")
	require.NoError(t, err)
	// 450 × 0.19 = 85.5, rounded to 86
	assert.Equal(t, "86", q.Breakdown.TaxAmount.String())
	assert.Equal(t, "543", q.Breakdown.Total.String())
}

func TestCheckout_QuoteValidation(t *testing.T) {
	s := newShop(t)
	_, err := s.checkout.Quote(context.Background(), "c", "Tunisia", "drone")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "country")
	assert.Contains(t, verr.Fields, "method")

	_, err = s.checkout.Quote(context.Background(), "c", "TN", "")
	assert.ErrorIs(t, err, domain.ErrCartEmpty)
}

func TestCheckout_PlaceOrder(t *testing.T) {
	s := newShop(t, vaseProduct(), rugProduct())
	ctx := context.Background()
	rugID := s.productID(t, "kilim-rug")
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 1})
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: rugID, VariantID: ptr("v-large"), Quantity: 1})

	order, err := s.checkout.PlaceOrder(ctx, "c", checkoutInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "TN", order.CountryCode)
	assert.Equal(t, "TN", order.ShippingAddress.Country)
	assert.Equal(t, "570", order.Subtotal.String())
	assert.True(t, order.ShippingCost.IsZero())
	assert.Equal(t, "570", order.Total.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "420", order.Items[1].LineTotal.String())
	assert.Equal(t, 1, s.tx.Calls)

	history, err := s.order.GetOrderHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.OrderStatusPending, history[0].NewStatus)
	assert.Nil(t, history[0].PreviousStatus)

	view, err := s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCheckout_PlaceOrderEmptyCart(t *testing.T) {
	s := newShop(t)
	_, err := s.checkout.PlaceOrder(context.Background(), "c", checkoutInput())
	assert.ErrorIs(t, err, domain.ErrCartEmpty)
	assert.Zero(t, s.tx.Calls)
}

func TestCheckout_PlaceOrderValidation(t *testing.T) {
	s := newShop(t)
	in := checkoutInput()
	in.Customer.Email = "not-an-email"
	in.Address.City = ""
	in.Method = "pigeon"

	_, err := s.checkout.PlaceOrder(context.Background(), "c", in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "customer.email")
	assert.Contains(t, verr.Fields, "address.city")
	assert.Contains(t, verr.Fields, "method")
}

func TestCheckout_ProductDeactivatedAfterAdding(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	vaseID := s.productID(t, "clay-vase")
	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.catalog.UpdateProductStatus(ctx, vaseID, false))
	_, err = s.checkout.PlaceOrder(ctx, "c", checkoutInput())
	assert.ErrorIs(t, err, domain.ErrProductInactive)
	assert.Empty(t, s.orders.Orders)

	view, err := s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCheckout_UsesAddTimePrice(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	vaseID := s.productID(t, "clay-vase")
	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: vaseID, Quantity: 2})
	require.NoError(t, err)

	s.products.Products[vaseID].Price = money.MustParse("180")

	order, err := s.checkout.PlaceOrder(ctx, "c", checkoutInput())
	require.NoError(t, err)
	assert.Equal(t, "150", order.Items[0].UnitPrice.String())
	assert.Equal(t, "300", order.Subtotal.String())
}

func TestCheckout_FailedOrderKeepsCart(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	_, err := s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 1})
	require.NoError(t, err)
	s.orders.CreateErr = errors.New("deadlock detected")

	_, err = s.checkout.PlaceOrder(ctx, "c", checkoutInput())
	assert.Error(t, err)

	view, err := s.cart.Get(ctx, "c", "", "")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCheckout_PlaceOrderTotalsUseResolvedShipping(t *testing.T) {
	s := newShop(t, vaseProduct())
	ctx := context.Background()
	_, err := s.shipping.CreateRate(ctx, ShippingRateInput{
		CountryCode: "TN",
		Method:      "express",
		BaseRate:    money.MustParse("15"),
	})
	require.NoError(t, err)
	_, _ = s.cart.AddItem(ctx, "c", AddCartItemInput{ProductID: s.productID(t, "clay-vase"), Quantity: 2})

	in := checkoutInput()
	in.Method = "express"
	order, err := s.checkout.PlaceOrder(ctx, "c", in)
	require.NoError(t, err)
	assert.Equal(t, domain.ShippingMethodExpress, order.ShippingMethod)
	assert.Equal(t, "15", order.ShippingCost.String())
	assert.Equal(t, "315", order.Total.String())
}
