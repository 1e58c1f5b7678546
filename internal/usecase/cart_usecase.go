package usecase

import (
	"context"
	"errors"

	"atelier-backend/config"
	"atelier-backend/internal/cart"
	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// CartView is the storefront representation of a cart.
type CartView struct {
	ID        string                 `json:"id"`
	Items     []domain.CartItem      `json:"items"`
	Subtotal  decimal.Decimal        `json:"subtotal"`
	ItemCount int                    `json:"itemCount"`
	IsLoading bool                   `json:"isLoading"`
	Shipping  *domain.ShippingResult `json:"shipping,omitempty"`
}

type AddCartItemInput struct {
	ProductID string  `json:"productId" validate:"required"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity" validate:"gte=0,lte=1000"`
}

type CartUsecase struct {
	storage  domain.CartStorage
	catalog  *CatalogUsecase
	shipping *ShippingUsecase
	cfg      *config.Config
}

func NewCartUsecase(storage domain.CartStorage, catalog *CatalogUsecase, shipping *ShippingUsecase, cfg *config.Config) *CartUsecase {
	return &CartUsecase{
		storage:  storage,
		catalog:  catalog,
		shipping: shipping,
		cfg:      cfg,
	}
}

// Open returns the hydrated cart stored under cartID.
func (u *CartUsecase) Open(ctx context.Context, cartID string) (*cart.Store, error) {
	store := cart.New(u.storage, cartID,
		cart.WithMaxQuantity(u.cfg.MaxCartQuantity),
		cart.WithAddListener(func(item domain.CartItem) {
			logger.WithContext(ctx).Info().
				Str("cart_id", cartID).
				Str("line", item.ID).
				Int("quantity", item.Quantity).
				Msg("Cart item added")
		}),
	)
	if err := store.Hydrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// View renders the cart. A non-empty country adds free-shipping progress.
func (u *CartUsecase) View(ctx context.Context, store *cart.Store, country string, method domain.ShippingMethod) CartView {
	v := CartView{
		ID:        store.Key(),
		Items:     store.Items(),
		Subtotal:  store.Subtotal(),
		ItemCount: store.ItemCount(),
		IsLoading: store.Loading(),
	}
	if country != "" {
		result := u.shipping.CalculateShipping(ctx, country, v.Subtotal, method)
		v.Shipping = &result
	}
	return v
}

func (u *CartUsecase) Get(ctx context.Context, cartID, country string, method domain.ShippingMethod) (CartView, error) {
	store, err := u.Open(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	return u.View(ctx, store, country, method), nil
}

// AddItem prices the product at the current promotion and merges it into the
// cart. The unit price is a snapshot taken at insertion time.
func (u *CartUsecase) AddItem(ctx context.Context, cartID string, in AddCartItemInput) (CartView, error) {
	if verr := validateStruct(in); verr.HasErrors() {
		return CartView{}, verr
	}

	item, err := u.lineFor(ctx, in.ProductID, in.VariantID)
	if err != nil {
		return CartView{}, err
	}

	store, err := u.Open(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	if _, err := store.AddItem(ctx, item, in.Quantity); err != nil {
		return CartView{}, err
	}
	return u.View(ctx, store, "", ""), nil
}

func (u *CartUsecase) lineFor(ctx context.Context, productID string, variantID *string) (domain.CartItem, error) {
	product, promos, err := u.catalog.GetProductForCart(ctx, productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if !product.IsActive {
		return domain.CartItem{}, domain.ErrProductInactive
	}

	name := product.Name
	image := product.ImageURL
	var variant *domain.Variant
	if variantID != nil && *variantID != "" {
		variant = product.FindVariant(*variantID)
		if variant == nil {
			return domain.CartItem{}, domain.ErrVariantNotFound
		}
		if !variant.IsActive {
			return domain.CartItem{}, domain.ErrProductInactive
		}
		name = product.Name + " (" + variant.Name + ")"
		if variant.ImageURL != "" {
			image = variant.ImageURL
		}
	} else {
		variantID = nil
	}

	quote := u.catalog.Price(variant.BasePrice(product.Price), promos)
	return domain.CartItem{
		ID:             domain.CartLineKey(product.ID, variantID),
		ProductID:      product.ID,
		VariantID:      variantID,
		Name:           name,
		LocalizedNames: product.LocalizedNames,
		UnitPrice:      quote.EffectivePrice,
		ImageURL:       image,
	}, nil
}

func (u *CartUsecase) UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (CartView, error) {
	store, err := u.Open(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	if err := store.UpdateQuantity(ctx, lineID, quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			return CartView{}, domain.ErrNotFound
		}
		return CartView{}, err
	}
	return u.View(ctx, store, "", ""), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, cartID, lineID string) (CartView, error) {
	store, err := u.Open(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	if err := store.RemoveItem(ctx, lineID); err != nil {
		return CartView{}, err
	}
	return u.View(ctx, store, "", ""), nil
}

func (u *CartUsecase) Clear(ctx context.Context, cartID string) error {
	store, err := u.Open(ctx, cartID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}
