// Package backoffice wires the entity collections and domain services into one
// explicit store object.
package backoffice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/reporting"
	"github.com/odyssey-erp/backoffice/internal/sales"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// Options configures New. Zero values fall back to production defaults.
type Options struct {
	Clock    shared.Clock
	IDs      shared.IDGenerator
	Logger   *slog.Logger
	Recorder shared.Recorder
	Sales    sales.Options
	Reports  reporting.Options
	// Cache stores dashboards in Redis. Nil computes them on every request.
	Cache *reporting.Cache
}

// Engine owns every collection and the services operating on them.
type Engine struct {
	Inventory *inventory.Service
	Products  *products.Service
	Customers *customers.Service
	Sales     *sales.Service
	Reports   *reporting.Service

	items     *store.Collection[inventory.Item]
	catalog   *store.Collection[products.Product]
	people    *store.Collection[customers.Customer]
	ledger    *store.Collection[sales.Sale]
	movements *store.Collection[inventory.Movement]
}

// New builds an isolated engine. The walk-in customer exists from the start.
func New(opts Options) *Engine {
	rt := shared.Runtime{
		Clock:    opts.Clock,
		IDs:      opts.IDs,
		Logger:   opts.Logger,
		Recorder: opts.Recorder,
	}.WithDefaults()

	e := &Engine{
		items:     store.NewCollection[inventory.Item]("inventory item", rt.Clock),
		catalog:   store.NewCollection[products.Product]("product", rt.Clock),
		people:    store.NewCollection[customers.Customer]("customer", rt.Clock),
		ledger:    store.NewCollection[sales.Sale]("sale", rt.Clock),
		movements: store.NewCollection[inventory.Movement]("stock movement", rt.Clock),
	}

	stock := inventory.NewLedger(e.movements, rt)
	e.Inventory = inventory.NewService(e.items, stock, rt.WithLogger(rt.Logger.With(slog.String("service", "inventory"))))
	e.Products = products.NewService(e.catalog, e.Inventory, stock, rt.WithLogger(rt.Logger.With(slog.String("service", "products"))))
	e.Customers = customers.NewService(e.people, rt.WithLogger(rt.Logger.With(slog.String("service", "customers"))))
	e.Sales = sales.NewService(e.ledger, e.Products, e.Customers, opts.Sales, rt.WithLogger(rt.Logger.With(slog.String("service", "sales"))))
	e.Reports = reporting.NewService(e, opts.Cache, opts.Reports, rt.WithLogger(rt.Logger.With(slog.String("service", "reporting"))))
	return e
}

// Snapshot reads every collection. Revision is the sum of the collection
// revisions and therefore grows with every mutation.
func (e *Engine) Snapshot() reporting.Snapshot {
	return reporting.Snapshot{
		Inventory: e.items.List(),
		Products:  e.catalog.List(),
		Sales:     e.ledger.List(),
		Customers: e.people.List(),
		Revision:  e.items.Revision() + e.catalog.Revision() + e.people.Revision() + e.ledger.Revision(),
	}
}

// Dashboard is a shortcut for Reports.Dashboard.
func (e *Engine) Dashboard(ctx context.Context) (reporting.Dashboard, error) {
	return e.Reports.Dashboard(ctx)
}

// Line is one product and quantity of a CheckoutRequest.
type Line struct {
	ProductID string
	Quantity  float64
}

// CheckoutRequest describes a sale to stage and commit in one step. Nil rates
// keep the configured defaults.
type CheckoutRequest struct {
	CustomerID      string
	PaymentMethod   string
	TaxRate         *decimal.Decimal
	DiscountPercent *decimal.Decimal
	Lines           []Line
}

// Checkout stages the request on a fresh draft and commits it.
func (e *Engine) Checkout(req CheckoutRequest) (sales.Sale, error) {
	d := e.Sales.NewDraft()
	if req.CustomerID != "" {
		if err := d.SetCustomer(req.CustomerID); err != nil {
			return sales.Sale{}, fmt.Errorf("checkout: %w", err)
		}
	}
	if req.PaymentMethod != "" {
		if err := d.SetPaymentMethod(req.PaymentMethod); err != nil {
			return sales.Sale{}, fmt.Errorf("checkout: %w", err)
		}
	}
	if req.TaxRate != nil {
		if err := d.SetTaxRate(*req.TaxRate); err != nil {
			return sales.Sale{}, fmt.Errorf("checkout: %w", err)
		}
	}
	if req.DiscountPercent != nil {
		if err := d.SetDiscountPercent(*req.DiscountPercent); err != nil {
			return sales.Sale{}, fmt.Errorf("checkout: %w", err)
		}
	}
	for _, l := range req.Lines {
		if err := d.AddItem(l.ProductID, l.Quantity); err != nil {
			return sales.Sale{}, fmt.Errorf("checkout %s: %w", l.ProductID, err)
		}
	}
	return e.Sales.Commit(d)
}
