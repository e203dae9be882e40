package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of a sale. Values are unrounded.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// LineTotal is quantity × unitPrice.
func LineTotal(quantity float64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromFloat(quantity))
}

// CalculateTotals applies taxRate and discountPercent to the subtotal independently.
func CalculateTotals(items []Item, taxRate, discountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	taxAmount := subtotal.Mul(taxRate).Div(hundred)
	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    subtotal.Add(taxAmount).Sub(discountAmount),
	}
}
