package pricing

import (
	"atelier-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Breakdown is the composed checkout total.
type Breakdown struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
}

// ComposeTotal returns subtotal + shipping cost + subtotal × taxRate.
// Tax is charged on the subtotal only, never on shipping; a non-positive
// rate means no tax.
func ComposeTotal(subtotal decimal.Decimal, shipping domain.ShippingResult, taxRate decimal.Decimal) decimal.Decimal {
	return Compose(subtotal, shipping, taxRate).Total
}

// Compose is ComposeTotal with the intermediate amounts kept.
func Compose(subtotal decimal.Decimal, shipping domain.ShippingResult, taxRate decimal.Decimal) Breakdown {
	b := Breakdown{
		Subtotal:  subtotal,
		Shipping:  shipping.Cost,
		TaxRate:   decimal.Zero,
		TaxAmount: decimal.Zero,
	}
	if taxRate.IsPositive() {
		b.TaxRate = taxRate
		b.TaxAmount = subtotal.Mul(taxRate)
	}
	b.Total = b.Subtotal.Add(b.Shipping).Add(b.TaxAmount)
	return b
}
