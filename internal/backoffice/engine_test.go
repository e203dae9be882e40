package backoffice_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backoffice"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/sales"
	"github.com/odyssey-erp/backoffice/internal/seed"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

func newEngine(t *testing.T) (*backoffice.Engine, *shared.FixedClock) {
	t.Helper()
	clock := shared.NewFixedClock(time.Date(2023, 4, 21, 9, 0, 0, 0, time.UTC))
	e := backoffice.New(backoffice.Options{
		Clock: clock,
		IDs:   shared.SequentialIDs("rec"),
		Sales: sales.Options{DefaultPaymentMethod: "Cash", DefaultTaxRate: decimal.NewFromInt(7)},
	})
	require.NoError(t, seed.Load(e, seed.Bakery()))
	return e, clock
}

func TestEnginesAreIsolated(t *testing.T) {
	a := backoffice.New(backoffice.Options{})
	b := backoffice.New(backoffice.Options{})

	_, err := a.Customers.Create(customers.CreateCustomerInput{Name: "Only In A"})
	require.NoError(t, err)
	assert.Len(t, a.Customers.All(), 2)
	assert.Len(t, b.Customers.All(), 1)
}

func TestSeededDashboard(t *testing.T) {
	e, _ := newEngine(t)

	d, err := e.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Empty(t, d.LowStock)
	require.Len(t, d.RecentSales, 2)
	assert.Equal(t, "SALE-002", d.RecentSales[0].ID)

	require.Len(t, d.TopProducts, 3)
	assert.Equal(t, "product-003", d.TopProducts[0].Product.ID)
	assert.Equal(t, 3.0, d.TopProducts[0].TotalSold)

	require.Len(t, d.TopCustomers, 3)
	assert.Equal(t, "customer2", d.TopCustomers[0].ID)

	h := d.Headline()
	assert.Equal(t, "246.00", h.TotalInventoryValue.StringFixed(2))
	assert.Equal(t, "50.79", h.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, h.SalesCount)
}

func TestCheckoutDoesNotMoveStock(t *testing.T) {
	e, clock := newEngine(t)
	clock.Advance(time.Hour)

	sale, err := e.Checkout(backoffice.CheckoutRequest{
		CustomerID: "customer3",
		Lines:      []backoffice.Line{{ProductID: "product-002", Quantity: 2}, {ProductID: "product-002", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 3.0, sale.Items[0].Quantity)
	assert.Equal(t, "Cash", sale.PaymentMethod)

	cupcake, err := e.Products.Get("product-002")
	require.NoError(t, err)
	assert.Equal(t, 24.0, cupcake.Quantity)

	bob, err := e.Customers.Get("customer3")
	require.NoError(t, err)
	assert.Equal(t, 4, bob.TotalPurchases)
	assert.True(t, decimal.RequireFromString("89.50").Add(sale.TotalAmount).Equal(bob.TotalSpent))
	assert.Equal(t, clock.Now(), *bob.LastPurchaseDate)
}

func TestCheckoutSurfacesStockShortage(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.Checkout(backoffice.CheckoutRequest{
		Lines: []backoffice.Line{{ProductID: "product-001", Quantity: 11}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Len(t, e.Sales.All(), 2)
}

func TestSnapshotRevisionTracksMutations(t *testing.T) {
	e, _ := newEngine(t)
	before := e.Snapshot().Revision

	_, err := e.Inventory.Decrease("inv-005", 160, "shipping")
	require.NoError(t, err)
	after := e.Snapshot()
	assert.Greater(t, after.Revision, before)

	d, err := e.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "inv-005", d.LowStock[0].ID)
}

func TestVoidKeepsSaleInAggregates(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.Sales.Void("SALE-001")
	require.NoError(t, err)

	d, err := e.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Sales.Count)

	john, err := e.Customers.Get("customer1")
	require.NoError(t, err)
	assert.Equal(t, 5, john.TotalPurchases)
}

func TestProductionRunThroughEngine(t *testing.T) {
	e, _ := newEngine(t)

	run, err := e.Products.Produce("product-003", 10)
	require.NoError(t, err)
	assert.Equal(t, 25.0, run.Product.Quantity)
	assert.Empty(t, run.Missing)

	flour, err := e.Inventory.Get("inv-001")
	require.NoError(t, err)
	assert.Equal(t, 45.0, flour.Quantity)

	card := e.Inventory.StockCard("inv-001")
	require.Len(t, card, 1)
	assert.Equal(t, inventory.MovementOut, card[0].Type)
}

func TestRecostUsesCurrentInventory(t *testing.T) {
	e, _ := newEngine(t)

	p, err := e.Products.Recost("product-001")
	require.NoError(t, err)
	assert.Equal(t, "2.46", p.ProductionCost.StringFixed(2))
	assert.True(t, products.ProfitMargin(p.SellingPrice, p.ProductionCost).GreaterThan(decimal.NewFromInt(90)))
}

func TestCheckoutAppliesOverridesAndNeverLowersSpend(t *testing.T) {
	e, _ := newEngine(t)
	zero, overDiscount := decimal.Zero, decimal.NewFromInt(150)

	sale, err := e.Checkout(backoffice.CheckoutRequest{
		CustomerID:      "customer1",
		PaymentMethod:   "Debit Card",
		TaxRate:         &zero,
		DiscountPercent: &overDiscount,
		Lines:           []backoffice.Line{{ProductID: "product-003", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Debit Card", sale.PaymentMethod)
	assert.True(t, sale.TaxRate.IsZero())
	assert.Equal(t, "-2.25", sale.TotalAmount.String())

	john, err := e.Customers.Get("customer1")
	require.NoError(t, err)
	assert.Equal(t, "234.75", john.TotalSpent.StringFixed(2))
	assert.Equal(t, 5, john.TotalPurchases)
}
