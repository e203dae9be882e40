package sales

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// CustomerDirectory resolves customers and accrues their purchases.
type CustomerDirectory interface {
	Get(id string) (customers.Customer, error)
	AccruePurchase(id string, amount decimal.Decimal) (customers.Customer, error)
}

// Options carries checkout defaults.
type Options struct {
	DefaultPaymentMethod string
	DefaultTaxRate       decimal.Decimal
}

// Service records sales and manages their lifecycle.
type Service struct {
	sales     *store.Collection[Sale]
	products  ProductLookup
	customers CustomerDirectory
	opts      Options
	rt        shared.Runtime
}

// NewService builds Service.
func NewService(sales *store.Collection[Sale], products ProductLookup, customers CustomerDirectory, opts Options, rt shared.Runtime) *Service {
	return &Service{sales: sales, products: products, customers: customers, opts: opts, rt: rt.WithDefaults()}
}

// NewDraft starts a draft with the configured checkout defaults.
func (s *Service) NewDraft() *Draft {
	return NewDraft(s.products, DraftDefaults{
		PaymentMethod: s.opts.DefaultPaymentMethod,
		TaxRate:       s.opts.DefaultTaxRate,
	})
}

// Commit turns a staged draft into a Completed sale and accrues the customer's
// statistics. On failure the draft is left untouched and can be corrected.
func (s *Service) Commit(d *Draft) (Sale, error) {
	if d.State() == DraftCommitted {
		return Sale{}, shared.ErrDraftCommitted
	}
	errs := shared.FieldErrors{}
	if len(d.items) == 0 {
		errs.Add("items", "Add at least one item to the sale")
	}
	if d.paymentMethod == "" {
		errs.Add("paymentMethod", "Select a payment method")
	}
	customer, err := s.customers.Get(d.customerID)
	if err != nil || !customer.IsActive {
		errs.Add("customerId", "Select an active customer")
	}
	if len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("sale")
		return Sale{}, errs
	}

	totals := d.Totals()
	now := s.rt.Clock.Now()
	sale := Sale{
		ID:              s.rt.IDs.NewID(),
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		Items:           d.Items(),
		Subtotal:        totals.Subtotal,
		TaxRate:         d.taxRate,
		TaxAmount:       totals.TaxAmount,
		DiscountPercent: d.discountPercent,
		DiscountAmount:  totals.DiscountAmount,
		TotalAmount:     totals.TotalAmount,
		PaymentMethod:   d.paymentMethod,
		Status:          StatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sales.Add(sale); err != nil {
		return Sale{}, fmt.Errorf("commit sale: %w", err)
	}
	switch {
	case customer.IsWalkIn():
	case sale.TotalAmount.IsNegative():
		// discounts above the taxed subtotal never reduce a customer's spend
		s.rt.Logger.Warn("skipped accrual of negative sale total",
			slog.String("sale", sale.ID), slog.String("customer", customer.ID),
			slog.String("total", sale.TotalAmount.String()))
	default:
		if _, err := s.customers.AccruePurchase(customer.ID, sale.TotalAmount); err != nil {
			s.rt.Logger.Error("accrue customer purchase",
				slog.String("sale", sale.ID), slog.String("customer", customer.ID), slog.Any("error", err))
		}
	}
	d.markCommitted(sale.ID)
	s.rt.Recorder.SaleCommitted(sale.TotalAmount)
	s.rt.Logger.Info("sale committed",
		slog.String("sale", sale.ID),
		slog.String("customer", customer.ID),
		slog.Int("lines", len(sale.Items)),
		slog.String("total", sale.TotalAmount.StringFixed(2)))
	return sale, nil
}

// Void marks a Completed sale Voided. Stock and customer statistics are not reversed.
func (s *Service) Void(id string) (Sale, error) {
	current, err := s.sales.Get(id)
	if err != nil {
		return Sale{}, fmt.Errorf("void sale: %w", err)
	}
	if current.Status != StatusCompleted {
		return Sale{}, fmt.Errorf("void sale %q in status %s: %w", id, current.Status, shared.ErrInvalidStatus)
	}
	updated, err := s.sales.Update(id, func(sale *Sale) { sale.Status = StatusVoided })
	if err != nil {
		return Sale{}, fmt.Errorf("void sale: %w", err)
	}
	s.rt.Recorder.SaleVoided()
	s.rt.Logger.Info("sale voided", slog.String("sale", id))
	return updated, nil
}

// Import stores a historical sale after checking its money fields hold
// together: every line total is quantity × unit price, the subtotal is their
// sum and the total is subtotal + tax − discount.
func (s *Service) Import(sale Sale) error {
	if errs := checkRecorded(sale); len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("sale")
		return fmt.Errorf("import sale %q: %w", sale.ID, errs)
	}
	items := make([]Item, len(sale.Items))
	copy(items, sale.Items)
	sale.Items = items
	return s.sales.Add(sale)
}

// Get resolves a sale by id.
func (s *Service) Get(id string) (Sale, error) {
	return s.sales.Get(id)
}

// All returns every sale in insertion order.
func (s *Service) All() []Sale {
	return s.sales.List()
}

// List searches sale id and customer name, applies the date range and status,
// then orders and paginates. The default order is newest first.
func (s *Service) List(filter ListFilter) ([]Sale, shared.Pagination) {
	var from, until time.Time
	if filter.From != nil {
		from = startOfDay(*filter.From)
	}
	if filter.To != nil {
		until = startOfDay(*filter.To).AddDate(0, 0, 1)
	}
	var rows []Sale
	for _, sale := range s.sales.List() {
		if !shared.ContainsFold(sale.ID, filter.Search) && !shared.ContainsFold(sale.CustomerName, filter.Search) {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !until.IsZero() && !sale.CreatedAt.Before(until) {
			continue
		}
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		rows = append(rows, sale)
	}
	field, dir := filter.SortBy, filter.SortDir
	if field == "" {
		field = SortByCreatedAt
		if dir == "" {
			dir = shared.SortDesc
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return shared.Directed(compareSales(rows[i], rows[j], field), dir) < 0
	})
	page := shared.NewPagination(filter.Page, filter.PerPage, len(rows))
	return shared.Paginate(rows, page), page
}

func checkRecorded(sale Sale) shared.FieldErrors {
	errs := shared.FieldErrors{}
	switch sale.Status {
	case StatusCompleted, StatusVoided, StatusPending:
	default:
		errs.Add("status", "Unknown sale status")
	}
	if len(sale.Items) == 0 {
		errs.Add("items", "A sale needs at least one item")
	}
	subtotal := decimal.Zero
	for i, item := range sale.Items {
		if item.Quantity <= 0 {
			errs.Add(fmt.Sprintf("items[%d].quantity", i), "Quantity must be greater than zero")
		}
		if !item.TotalPrice.Equal(LineTotal(item.Quantity, item.UnitPrice)) {
			errs.Add(fmt.Sprintf("items[%d].totalPrice", i), "Line total must equal quantity × unit price")
		}
		subtotal = subtotal.Add(item.TotalPrice)
	}
	if !sale.Subtotal.Equal(subtotal) {
		errs.Add("subtotal", "Subtotal must equal the sum of line totals")
	}
	if !sale.TotalAmount.Equal(sale.Subtotal.Add(sale.TaxAmount).Sub(sale.DiscountAmount)) {
		errs.Add("totalAmount", "Total must equal subtotal plus tax minus discount")
	}
	return errs
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func compareSales(a, b Sale, field SortField) int {
	switch field {
	case SortByID:
		return strings.Compare(a.ID, b.ID)
	case SortByCustomerName:
		return shared.CompareText(a.CustomerName, b.CustomerName)
	case SortByTotalAmount:
		return a.TotalAmount.Cmp(b.TotalAmount)
	case SortByPaymentMethod:
		return shared.CompareText(a.PaymentMethod, b.PaymentMethod)
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
