package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a guest cart. ID is the line key: the product id,
// suffixed with ":<variantId>" for variant lines.
type CartItem struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	VariantID      *string         `json:"variantId,omitempty"`
	Name           string          `json:"name"`
	LocalizedNames LocalizedText   `json:"localizedNames,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	ImageURL       string          `json:"imageUrl"`
	Quantity       int             `json:"quantity"`
}

// CartLineKey builds the line key for a product and optional variant.
func CartLineKey(productID string, variantID *string) string {
	if variantID == nil || *variantID == "" {
		return productID
	}
	return productID + ":" + *variantID
}

// CartStorage is the key-value capability the cart store persists through.
// Get reports found=false for unknown keys.
type CartStorage interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
