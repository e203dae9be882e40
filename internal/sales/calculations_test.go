package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateTotalsTaxOnly(t *testing.T) {
	items := []Item{
		{ProductID: "product-001", Quantity: 1, UnitPrice: dec("25.99"), TotalPrice: LineTotal(1, dec("25.99"))},
		{ProductID: "product-002", Quantity: 2, UnitPrice: dec("3.99"), TotalPrice: LineTotal(2, dec("3.99"))},
	}

	got := CalculateTotals(items, dec("7"), decimal.Zero)

	assert.True(t, dec("33.97").Equal(got.Subtotal), "subtotal %s", got.Subtotal)
	assert.True(t, dec("2.3779").Equal(got.TaxAmount), "tax %s", got.TaxAmount)
	assert.True(t, dec("36.3479").Equal(got.TotalAmount), "total %s", got.TotalAmount)
	assert.True(t, got.DiscountAmount.IsZero())
}

func TestCalculateTotalsInvariants(t *testing.T) {
	cases := []struct {
		name     string
		items    []Item
		tax      string
		discount string
	}{
		{name: "empty", tax: "7", discount: "10"},
		{name: "discount only", items: []Item{{TotalPrice: dec("13.5")}}, tax: "0", discount: "15"},
		{name: "tax and discount", items: []Item{{TotalPrice: dec("10")}, {TotalPrice: dec("4.25")}}, tax: "8.25", discount: "5"},
		{name: "full discount", items: []Item{{TotalPrice: dec("9.99")}}, tax: "0", discount: "100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateTotals(tc.items, dec(tc.tax), dec(tc.discount))

			sum := decimal.Zero
			for _, item := range tc.items {
				sum = sum.Add(item.TotalPrice)
			}
			assert.True(t, sum.Equal(got.Subtotal))
			assert.True(t, got.Subtotal.Add(got.TaxAmount).Sub(got.DiscountAmount).Equal(got.TotalAmount))
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.True(t, dec("13.5").Equal(LineTotal(3, dec("4.50"))))
	assert.True(t, dec("1.25").Equal(LineTotal(0.5, dec("2.50"))))
}
