package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID             string        `json:"id"`
	Name           string        `json:"name" validate:"required,max=120"`
	LocalizedNames LocalizedText `json:"localizedNames"`
	Slug           string        `json:"slug"`
	ImageURL       string        `json:"imageUrl" validate:"omitempty,url"`
	DisplayOrder   int           `json:"displayOrder"`
	IsActive       bool          `json:"isActive"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type Product struct {
	ID                    string          `json:"id"`
	CategoryID            *string         `json:"categoryId"`
	Name                  string          `json:"name"`
	LocalizedNames        LocalizedText   `json:"localizedNames"`
	Slug                  string          `json:"slug"`
	Description           string          `json:"description"`
	LocalizedDescriptions LocalizedText   `json:"localizedDescriptions"`
	Price                 decimal.Decimal `json:"price"`
	ImageURL              string          `json:"imageUrl"`
	Images                []string        `json:"images"`
	Stock                 int             `json:"stock"`
	IsFeatured            bool            `json:"isFeatured"`
	IsActive              bool            `json:"isActive"`
	Variants              []Variant       `json:"variants"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// FindVariant returns the variant with the given id, or nil.
func (p *Product) FindVariant(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

type Variant struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	SKU       string           `json:"sku"`
	Price     *decimal.Decimal `json:"price"` // Overrides the product price when set
	Stock     int              `json:"stock"`
	ImageURL  string           `json:"imageUrl"`
	IsActive  bool             `json:"isActive"`
}

// BasePrice is the variant override or the product price.
func (v *Variant) BasePrice(productPrice decimal.Decimal) decimal.Decimal {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return productPrice
}

type ProductFilter struct {
	CategorySlug string
	Query        string
	IsFeatured   *bool
	ActiveOnly   bool
	Limit        int
	Offset       int
}

type ProductRepository interface {
	// Categories
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Products
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	UpdateProductStatus(ctx context.Context, id string, isActive bool) error
	DeleteProduct(ctx context.Context, id string) error
}
