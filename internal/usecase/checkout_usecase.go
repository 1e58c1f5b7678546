package usecase

import (
	"context"
	"errors"
	"fmt"

	"atelier-backend/config"
	"atelier-backend/internal/cart"
	"atelier-backend/internal/domain"
	"atelier-backend/internal/pricing"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/money"

	"github.com/shopspring/decimal"
)

type CheckoutInput struct {
	Customer domain.Customer        `json:"customer"`
	Address  domain.ShippingAddress `json:"address"`
	Method   string                 `json:"method" validate:"omitempty,oneof=standard express overnight"`
	Notes    string                 `json:"notes" validate:"max=1000"`
}

// CheckoutQuote is the priced cart for a destination.
type CheckoutQuote struct {
	Items     []domain.CartItem     `json:"items"`
	Method    domain.ShippingMethod `json:"method"`
	Shipping  domain.ShippingResult `json:"shipping"`
	Breakdown pricing.Breakdown     `json:"breakdown"`
	Currency  string                `json:"currency"`
}

type CheckoutUsecase struct {
	carts     *CartUsecase
	shipping  *ShippingUsecase
	tax       *TaxUsecase
	products  domain.ProductRepository
	orders    domain.OrderRepository
	txManager domain.TransactionManager
	cfg       *config.Config
}

func NewCheckoutUsecase(carts *CartUsecase, shipping *ShippingUsecase, tax *TaxUsecase, products domain.ProductRepository, orders domain.OrderRepository, txManager domain.TransactionManager, cfg *config.Config) *CheckoutUsecase {
	return &CheckoutUsecase{
		carts:     carts,
		shipping:  shipping,
		tax:       tax,
		products:  products,
		orders:    orders,
		txManager: txManager,
		cfg:       cfg,
	}
}

// taxRate is zero unless tax is charged on top of the displayed prices.
func (u *CheckoutUsecase) taxRate(ctx context.Context, country string) decimal.Decimal {
	if !u.cfg.ApplyTaxAtCheckout {
		return decimal.Zero
	}
	return u.tax.RateFor(ctx, country)
}

func (u *CheckoutUsecase) quote(ctx context.Context, store *cart.Store, country string, method domain.ShippingMethod) CheckoutQuote {
	subtotal := store.Subtotal()
	shipping := u.shipping.CalculateShipping(ctx, country, subtotal, method)
	breakdown := pricing.Compose(subtotal, shipping, u.taxRate(ctx, country))
	breakdown.TaxAmount = money.RoundUnits(breakdown.TaxAmount, u.cfg.PriceRoundingPlaces)
	breakdown.Total = breakdown.Subtotal.Add(breakdown.Shipping).Add(breakdown.TaxAmount)
	return CheckoutQuote{
		Items:     store.Items(),
		Method:    method,
		Shipping:  shipping,
		Breakdown: breakdown,
		Currency:  u.cfg.Currency,
	}
}

// Quote prices the cart for a destination without placing an order.
func (u *CheckoutUsecase) Quote(ctx context.Context, cartID, country, method string) (*CheckoutQuote, error) {
	m, ok := domain.ParseShippingMethod(method)
	verr := &domain.ValidationError{}
	if !ok {
		verr.Add("method", "must be one of: standard express overnight")
	}
	if len(domain.NormalizeCountry(country)) != 2 {
		verr.Add("country", "must be exactly 2 characters")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	store, err := u.carts.Open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if store.IsEmpty() {
		return nil, domain.ErrCartEmpty
	}
	q := u.quote(ctx, store, domain.NormalizeCountry(country), m)
	return &q, nil
}

// PlaceOrder turns the cart into a pending order. The order, its items and the
// first history row are written in one transaction; the cart is cleared
// afterwards.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, cartID string, in CheckoutInput) (*domain.Order, error) {
	if err := validateStruct(in); err.HasErrors() {
		return nil, err
	}
	method, _ := domain.ParseShippingMethod(in.Method)
	country := domain.NormalizeCountry(in.Address.Country)
	in.Address.Country = country

	store, err := u.carts.Open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if store.IsEmpty() {
		return nil, domain.ErrCartEmpty
	}
	if err := u.ensureAvailable(ctx, store.Items()); err != nil {
		return nil, err
	}

	q := u.quote(ctx, store, country, method)
	order := &domain.Order{
		Status:          domain.OrderStatusPending,
		Customer:        in.Customer,
		ShippingAddress: in.Address,
		CountryCode:     country,
		ShippingMethod:  method,
		Subtotal:        q.Breakdown.Subtotal,
		ShippingCost:    q.Breakdown.Shipping,
		TaxRate:         q.Breakdown.TaxRate,
		TaxAmount:       q.Breakdown.TaxAmount,
		Total:           q.Breakdown.Total,
		Currency:        u.cfg.Currency,
		Notes:           in.Notes,
	}
	for _, it := range q.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: money.LineTotal(it.UnitPrice, it.Quantity),
		})
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orders.CreateOrder(txCtx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		reason := "Order placed"
		return u.orders.CreateOrderHistory(txCtx, &domain.OrderHistory{
			OrderID:   order.ID,
			NewStatus: domain.OrderStatusPending,
			Reason:    &reason,
		})
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx)
	if err := store.Clear(ctx); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Str("order_id", order.ID).Msg("Order placed but cart could not be cleared")
	}
	log.Info().
		Str("order_id", order.ID).
		Str("country", country).
		Str("total", order.Total.String()).
		Bool("free_shipping", q.Shipping.IsFree).
		Msg("Order placed")
	return order, nil
}

func (u *CheckoutUsecase) ensureAvailable(ctx context.Context, items []domain.CartItem) error {
	for _, it := range items {
		p, err := u.products.GetProductByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s: %w", it.Name, domain.ErrProductInactive)
		}
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%s: %w", it.Name, domain.ErrProductInactive)
		}
		if it.VariantID != nil {
			v := p.FindVariant(*it.VariantID)
			if v == nil || !v.IsActive {
				return fmt.Errorf("%s: %w", it.Name, domain.ErrProductInactive)
			}
		}
	}
	return nil
}
