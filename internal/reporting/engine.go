package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/sales"
)

// UncategorizedBucket collects inventory items without a category.
const UncategorizedBucket = "Uncategorized"

// Snapshot is a consistent read of every collection. Revision changes whenever
// any collection is mutated.
type Snapshot struct {
	Inventory []inventory.Item
	Products  []products.Product
	Sales     []sales.Sale
	Customers []customers.Customer
	Revision  uint64
}

// Options tunes the projections.
type Options struct {
	TopN          int
	RecentN       int
	ExcludeVoided bool
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 5
	}
	if o.RecentN <= 0 {
		o.RecentN = 5
	}
	return o
}

// Round2 rounds a money value to cents for display. Stored values stay unrounded.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LowStockItems returns the items at or below their reorder level.
func LowStockItems(items []inventory.Item) []inventory.Item {
	out := []inventory.Item{}
	for _, item := range items {
		if inventory.IsLowStock(item) {
			out = append(out, item)
		}
	}
	return out
}

// RecentSales returns the n newest sales.
func RecentSales(all []sales.Sale, n int) []sales.Sale {
	out := make([]sales.Sale, len(all))
	copy(out, all)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopProduct is a product together with the units sold across all sales.
type TopProduct struct {
	Product   products.Product `json:"product"`
	TotalSold float64          `json:"totalSold"`
}

// TopProducts ranks products by units sold. Sales lines whose product no
// longer resolves are dropped.
func TopProducts(all []sales.Sale, catalog []products.Product, n int, excludeVoided bool) []TopProduct {
	sold := map[string]float64{}
	var order []string
	for _, sale := range all {
		if excludeVoided && sale.Status == sales.StatusVoided {
			continue
		}
		for _, item := range sale.Items {
			if _, seen := sold[item.ProductID]; !seen {
				order = append(order, item.ProductID)
			}
			sold[item.ProductID] += item.Quantity
		}
	}
	byID := make(map[string]products.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	out := []TopProduct{}
	for _, id := range order {
		p, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, TopProduct{Product: p, TotalSold: sold[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSold > out[j].TotalSold })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopCustomers ranks customers with spend by totalSpent. The walk-in customer is excluded.
func TopCustomers(all []customers.Customer, n int) []customers.Customer {
	out := []customers.Customer{}
	for _, c := range all {
		if c.IsWalkIn() || c.TotalSpent.IsZero() {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSpent.GreaterThan(out[j].TotalSpent) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ItemValue is the stock value of one inventory item.
type ItemValue struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity float64         `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// CategoryValue is the stock value of one category.
type CategoryValue struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// Valuation is the inventory stock value breakdown.
type Valuation struct {
	Items      []ItemValue     `json:"items"`
	Categories []CategoryValue `json:"categories"`
	Total      decimal.Decimal `json:"total"`
}

// InventoryValuation values every item at costPerUnit × quantity.
func InventoryValuation(items []inventory.Item) Valuation {
	out := Valuation{Items: []ItemValue{}, Categories: []CategoryValue{}, Total: decimal.Zero}
	byCategory := map[string]decimal.Decimal{}
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = UncategorizedBucket
		}
		value := item.Value()
		out.Items = append(out.Items, ItemValue{ID: item.ID, Name: item.Name, Category: category, Quantity: item.Quantity, Value: value})
		out.Total = out.Total.Add(value)
		byCategory[category] = byCategory[category].Add(value)
	}
	for category, value := range byCategory {
		out.Categories = append(out.Categories, CategoryValue{Category: category, Value: value})
	}
	sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Category < out.Categories[j].Category })
	return out
}

// SalesSummary aggregates revenue across sales.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Count        int             `json:"count"`
	AverageSale  decimal.Decimal `json:"averageSale"`
}

// SalesMetrics totals revenue and the average sale value.
func SalesMetrics(all []sales.Sale, excludeVoided bool) SalesSummary {
	out := SalesSummary{TotalRevenue: decimal.Zero, AverageSale: decimal.Zero}
	for _, sale := range all {
		if excludeVoided && sale.Status == sales.StatusVoided {
			continue
		}
		out.TotalRevenue = out.TotalRevenue.Add(sale.TotalAmount)
		out.Count++
	}
	if out.Count > 0 {
		out.AverageSale = out.TotalRevenue.Div(decimal.NewFromInt(int64(out.Count)))
	}
	return out
}

// Portfolio values finished-goods stock.
type Portfolio struct {
	StockValue      decimal.Decimal `json:"stockValue"`
	ProductionCost  decimal.Decimal `json:"productionCost"`
	PotentialProfit decimal.Decimal `json:"potentialProfit"`
}

// ProductPortfolio values finished stock at selling price and at production cost.
func ProductPortfolio(catalog []products.Product) Portfolio {
	out := Portfolio{StockValue: decimal.Zero, ProductionCost: decimal.Zero}
	for _, p := range catalog {
		qty := decimal.NewFromFloat(p.Quantity)
		out.StockValue = out.StockValue.Add(p.SellingPrice.Mul(qty))
		out.ProductionCost = out.ProductionCost.Add(p.ProductionCost.Mul(qty))
	}
	out.PotentialProfit = out.StockValue.Sub(out.ProductionCost)
	return out
}

// Dashboard bundles every projection for one snapshot.
type Dashboard struct {
	Revision     uint64               `json:"revision"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	LowStock     []inventory.Item     `json:"lowStock"`
	RecentSales  []sales.Sale         `json:"recentSales"`
	TopProducts  []TopProduct         `json:"topProducts"`
	TopCustomers []customers.Customer `json:"topCustomers"`
	Inventory    Valuation            `json:"inventory"`
	Sales        SalesSummary         `json:"sales"`
	Portfolio    Portfolio            `json:"portfolio"`
}

// Build computes the dashboard for snap.
func Build(snap Snapshot, opts Options, now time.Time) Dashboard {
	opts = opts.withDefaults()
	return Dashboard{
		Revision:     snap.Revision,
		GeneratedAt:  now,
		LowStock:     LowStockItems(snap.Inventory),
		RecentSales:  RecentSales(snap.Sales, opts.RecentN),
		TopProducts:  TopProducts(snap.Sales, snap.Products, opts.TopN, opts.ExcludeVoided),
		TopCustomers: TopCustomers(snap.Customers, opts.TopN),
		Inventory:    InventoryValuation(snap.Inventory),
		Sales:        SalesMetrics(snap.Sales, opts.ExcludeVoided),
		Portfolio:    ProductPortfolio(snap.Products),
	}
}

// Headline is the rounded summary shown at the top of the dashboard.
type Headline struct {
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	AverageSale         decimal.Decimal `json:"averageSale"`
	SalesCount          int             `json:"salesCount"`
	LowStockCount       int             `json:"lowStockCount"`
	PotentialProfit     decimal.Decimal `json:"potentialProfit"`
}

// Headline rounds the dashboard totals for display.
func (d Dashboard) Headline() Headline {
	return Headline{
		TotalInventoryValue: Round2(d.Inventory.Total),
		TotalRevenue:        Round2(d.Sales.TotalRevenue),
		AverageSale:         Round2(d.Sales.AverageSale),
		SalesCount:          d.Sales.Count,
		LowStockCount:       len(d.LowStock),
		PotentialProfit:     Round2(d.Portfolio.PotentialProfit),
	}
}
