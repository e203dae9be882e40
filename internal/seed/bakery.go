// Package seed provides the sample bakery data set used for demos and tests.
package seed

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/backoffice"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/sales"
)

// Dataset is a complete set of records to import into an engine.
type Dataset struct {
	Inventory []inventory.Item
	Products  []products.Product
	Customers []customers.Customer
	Sales     []sales.Sale
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id, name, sku, description string, qty float64, unit, cost, category string, reorder float64, created string) inventory.Item {
	at := ts(created)
	return inventory.Item{
		ID: id, Name: name, SKU: sku, Description: description,
		Quantity: qty, Unit: unit, CostPerUnit: money(cost), Category: category,
		ReorderLevel: reorder, CreatedAt: at, UpdatedAt: at,
	}
}

func customer(id, name, email, phone, address, zip string, typ customers.Type, purchases int, spent, last, notes, created string) customers.Customer {
	lastAt := ts(last)
	return customers.Customer{
		ID: id, Name: name, Email: email, Phone: phone,
		Address: address, City: "Springfield", State: "IL", ZipCode: zip, Notes: notes,
		Type: typ, TotalPurchases: purchases, TotalSpent: money(spent), LastPurchaseDate: &lastAt,
		IsActive: true, CreatedAt: ts(created), UpdatedAt: lastAt,
	}
}

func completedSale(id, customerID, customerName, method, created string, taxRate decimal.Decimal, lines ...sales.Item) sales.Sale {
	totals := sales.CalculateTotals(lines, taxRate, decimal.Zero)
	at := ts(created)
	return sales.Sale{
		ID: id, CustomerID: customerID, CustomerName: customerName, Items: lines,
		Subtotal: totals.Subtotal, TaxRate: taxRate, TaxAmount: totals.TaxAmount,
		DiscountPercent: decimal.Zero, DiscountAmount: totals.DiscountAmount, TotalAmount: totals.TotalAmount,
		PaymentMethod: method, Status: sales.StatusCompleted, CreatedAt: at, UpdatedAt: at,
	}
}

func saleLine(productID, name string, qty float64, price string) sales.Item {
	unit := money(price)
	return sales.Item{ProductID: productID, ProductName: name, Quantity: qty, UnitPrice: unit, TotalPrice: sales.LineTotal(qty, unit)}
}

// Bakery returns the sample data set: five raw materials, three products,
// the walk-in customer plus three named customers, and two completed sales.
func Bakery() Dataset {
	cakeAt := ts("2023-04-16T09:30:00Z")
	cupcakeAt := ts("2023-04-16T09:45:00Z")
	breadAt := ts("2023-04-16T10:00:00Z")
	walkInAt := ts("2023-04-15T10:30:00Z")
	seven := decimal.NewFromInt(7)

	return Dataset{
		Inventory: []inventory.Item{
			item("inv-001", "Flour", "FL-001", "All-purpose flour", 50, "kg", "0.80", "Ingredients", 10, "2023-04-15T10:30:00Z"),
			item("inv-002", "Sugar", "SG-001", "White granulated sugar", 30, "kg", "1.20", "Ingredients", 5, "2023-04-15T10:35:00Z"),
			item("inv-003", "Butter", "BT-001", "Unsalted butter", 20, "kg", "4.50", "Ingredients", 8, "2023-04-15T10:40:00Z"),
			item("inv-004", "Eggs", "EG-001", "Large eggs", 100, "pcs", "0.20", "Ingredients", 24, "2023-04-15T10:45:00Z"),
			item("inv-005", "Packaging Box", "PK-001", "Small cake box", 200, "pcs", "0.30", "Packaging", 50, "2023-04-15T11:00:00Z"),
		},
		Products: []products.Product{
			{
				ID: "product-001", Name: "Chocolate Cake", SKU: "CK-001", Description: "Delicious chocolate cake",
				SellingPrice: money("25.99"), Quantity: 10, IsActive: true, ProductionCost: money("8.75"),
				Materials: []products.Material{
					{InventoryItemID: "inv-001", Quantity: 0.5},
					{InventoryItemID: "inv-002", Quantity: 0.3},
					{InventoryItemID: "inv-003", Quantity: 0.2},
					{InventoryItemID: "inv-004", Quantity: 4},
				},
				CreatedAt: cakeAt, UpdatedAt: cakeAt,
			},
			{
				ID: "product-002", Name: "Vanilla Cupcake", SKU: "CP-001", Description: "Sweet vanilla cupcake with frosting",
				SellingPrice: money("3.99"), Quantity: 24, IsActive: true, ProductionCost: money("1.25"),
				Materials: []products.Material{
					{InventoryItemID: "inv-001", Quantity: 0.1},
					{InventoryItemID: "inv-002", Quantity: 0.08},
					{InventoryItemID: "inv-003", Quantity: 0.05},
					{InventoryItemID: "inv-004", Quantity: 1},
				},
				CreatedAt: cupcakeAt, UpdatedAt: cupcakeAt,
			},
			{
				ID: "product-003", Name: "Bread Loaf", SKU: "BL-001", Description: "Freshly baked bread loaf",
				SellingPrice: money("4.50"), Quantity: 15, IsActive: true, ProductionCost: money("1.80"),
				Materials: []products.Material{
					{InventoryItemID: "inv-001", Quantity: 0.5},
					{InventoryItemID: "inv-002", Quantity: 0.05},
					{InventoryItemID: "inv-003", Quantity: 0.1},
				},
				CreatedAt: breadAt, UpdatedAt: breadAt,
			},
		},
		Customers: []customers.Customer{
			customers.WalkIn(walkInAt),
			customer("customer1", "John Doe", "john.doe@email.com", "(555) 123-4567", "123 Main Street", "62701",
				customers.TypeRegular, 5, "234.75", "2023-04-20T14:30:00Z", "Preferred customer - likes discounts", "2023-03-15T10:30:00Z"),
			customer("customer2", "Jane Smith", "jane.smith@email.com", "(555) 987-6543", "456 Oak Avenue", "62702",
				customers.TypeVIP, 12, "1250.00", "2023-04-18T16:45:00Z", "VIP customer - always pays on time", "2023-02-10T09:15:00Z"),
			customer("customer3", "Bob Johnson", "bob.johnson@email.com", "(555) 456-7890", "789 Pine Road", "62703",
				customers.TypeRegular, 3, "89.50", "2023-04-10T11:20:00Z", "", "2023-04-01T14:22:00Z"),
		},
		Sales: []sales.Sale{
			completedSale("SALE-001", "customer1", "John Doe", "Credit Card", "2023-04-20T14:30:00Z", seven,
				saleLine("product-001", "Chocolate Cake", 1, "25.99"),
				saleLine("product-002", "Vanilla Cupcake", 2, "3.99"),
			),
			completedSale("SALE-002", customers.WalkInID, "Walk-in Customer", "Cash", "2023-04-20T16:45:00Z", seven,
				saleLine("product-003", "Bread Loaf", 3, "4.50"),
			),
		},
	}
}

// Load imports d into e. Records keep their ids, timestamps and statistics;
// nothing is recomputed or accrued.
func Load(e *backoffice.Engine, d Dataset) error {
	for _, it := range d.Inventory {
		if err := e.Inventory.Import(it); err != nil {
			return fmt.Errorf("seed inventory %s: %w", it.ID, err)
		}
	}
	for _, p := range d.Products {
		if err := e.Products.Import(p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, c := range d.Customers {
		if err := e.Customers.Import(c); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}
	for _, s := range d.Sales {
		if err := e.Sales.Import(s); err != nil {
			return fmt.Errorf("seed sale %s: %w", s.ID, err)
		}
	}
	return nil
}
