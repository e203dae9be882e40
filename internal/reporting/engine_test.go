package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/sales"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(day, hour int) time.Time { return time.Date(2023, 4, day, hour, 0, 0, 0, time.UTC) }

func sale(id string, status sales.Status, created time.Time, total string, lines ...sales.Item) sales.Sale {
	return sales.Sale{ID: id, Status: status, CreatedAt: created, TotalAmount: dec(total), Items: lines}
}

func line(productID string, qty float64) sales.Item {
	return sales.Item{ProductID: productID, Quantity: qty}
}

func TestTopProductsSumsUnitsAcrossSales(t *testing.T) {
	catalog := []products.Product{{ID: "p1", Name: "Cake"}, {ID: "p2", Name: "Bun"}}
	all := []sales.Sale{
		sale("s1", sales.StatusCompleted, at(1, 9), "10", line("p1", 2), line("p2", 1)),
		sale("s2", sales.StatusCompleted, at(2, 9), "10", line("p1", 3), line("gone", 50)),
	}

	top := TopProducts(all, catalog, 5, false)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].Product.ID)
	assert.Equal(t, 5.0, top[0].TotalSold)
	assert.Equal(t, "p2", top[1].Product.ID)

	assert.Len(t, TopProducts(all, catalog, 1, false), 1)
}

func TestTopProductsVoidedSales(t *testing.T) {
	catalog := []products.Product{{ID: "p1"}}
	all := []sales.Sale{
		sale("s1", sales.StatusCompleted, at(1, 9), "10", line("p1", 2)),
		sale("s2", sales.StatusVoided, at(2, 9), "10", line("p1", 3)),
	}

	assert.Equal(t, 5.0, TopProducts(all, catalog, 5, false)[0].TotalSold)
	assert.Equal(t, 2.0, TopProducts(all, catalog, 5, true)[0].TotalSold)
}

func TestRecentSalesNewestFirst(t *testing.T) {
	all := []sales.Sale{
		sale("old", sales.StatusCompleted, at(1, 9), "1"),
		sale("new", sales.StatusCompleted, at(3, 9), "1"),
		sale("mid", sales.StatusCompleted, at(2, 9), "1"),
	}

	recent := RecentSales(all, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].ID)
	assert.Equal(t, "mid", recent[1].ID)
	assert.Equal(t, "old", all[0].ID, "input is not reordered")
}

func TestTopCustomersSkipsWalkInAndNonBuyers(t *testing.T) {
	all := []customers.Customer{
		{ID: customers.WalkInID, TotalSpent: dec("9999")},
		{ID: "a", TotalSpent: dec("89.50")},
		{ID: "b", TotalSpent: dec("1250")},
		{ID: "c", TotalSpent: decimal.Zero},
	}

	top := TopCustomers(all, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "a", top[1].ID)
}

func TestInventoryValuation(t *testing.T) {
	items := []inventory.Item{
		{ID: "i1", Name: "Flour", Category: "Ingredients", Quantity: 50, CostPerUnit: dec("0.80")},
		{ID: "i2", Name: "Sugar", Category: "Ingredients", Quantity: 30, CostPerUnit: dec("1.20")},
		{ID: "i3", Name: "Twine", Quantity: 4, CostPerUnit: dec("0.25")},
	}

	got := InventoryValuation(items)
	assert.True(t, dec("77").Equal(got.Total), "total %s", got.Total)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, "Ingredients", got.Categories[0].Category)
	assert.True(t, dec("76").Equal(got.Categories[0].Value))
	assert.Equal(t, UncategorizedBucket, got.Categories[1].Category)
	assert.Equal(t, UncategorizedBucket, got.Items[2].Category)
}

func TestSalesMetrics(t *testing.T) {
	empty := SalesMetrics(nil, false)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.AverageSale.IsZero())

	all := []sales.Sale{
		sale("s1", sales.StatusCompleted, at(1, 9), "36.3479"),
		sale("s2", sales.StatusVoided, at(1, 10), "14.445"),
	}
	got := SalesMetrics(all, false)
	assert.Equal(t, 2, got.Count)
	assert.True(t, dec("50.7929").Equal(got.TotalRevenue))

	got = SalesMetrics(all, true)
	assert.Equal(t, 1, got.Count)
	assert.True(t, dec("36.3479").Equal(got.AverageSale))
}

func TestProductPortfolio(t *testing.T) {
	got := ProductPortfolio([]products.Product{
		{SellingPrice: dec("25.99"), ProductionCost: dec("8.75"), Quantity: 10},
		{SellingPrice: dec("3.99"), ProductionCost: dec("1.25"), Quantity: 24},
	})
	assert.True(t, dec("355.66").Equal(got.StockValue), "stock %s", got.StockValue)
	assert.True(t, dec("117.5").Equal(got.ProductionCost))
	assert.True(t, dec("238.16").Equal(got.PotentialProfit))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "2.38", Round2(dec("2.3779")).StringFixed(2))
	assert.Equal(t, "36.35", Round2(dec("36.3479")).StringFixed(2))
}

func TestBuildAndHeadline(t *testing.T) {
	snap := Snapshot{
		Inventory: []inventory.Item{{ID: "i1", Quantity: 2, ReorderLevel: 5, CostPerUnit: dec("1.005")}},
		Sales:     []sales.Sale{sale("s1", sales.StatusCompleted, at(1, 9), "36.3479")},
		Revision:  7,
	}

	d := Build(snap, Options{}, at(5, 12))
	assert.Equal(t, uint64(7), d.Revision)
	assert.Len(t, d.LowStock, 1)
	assert.Len(t, d.RecentSales, 1)
	assert.Empty(t, d.TopProducts)

	h := d.Headline()
	assert.Equal(t, "36.35", h.TotalRevenue.StringFixed(2))
	assert.Equal(t, "2.01", h.TotalInventoryValue.StringFixed(2))
	assert.Equal(t, 1, h.LowStockCount)
}
