package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

type recorder struct {
	shared.NopRecorder
	committed []decimal.Decimal
	voided    int
	failures  map[string]int
}

func (r *recorder) SaleCommitted(total decimal.Decimal) { r.committed = append(r.committed, total) }
func (r *recorder) SaleVoided()                         { r.voided++ }
func (r *recorder) ValidationFailed(entity string) {
	if r.failures == nil {
		r.failures = map[string]int{}
	}
	r.failures[entity]++
}

type fixture struct {
	svc       *Service
	customers *customers.Service
	clock     *shared.FixedClock
	rec       *recorder
	johnID    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := shared.NewFixedClock(time.Date(2023, 4, 20, 14, 30, 0, 0, time.UTC))
	rec := &recorder{}
	rt := shared.Runtime{Clock: clock, IDs: shared.SequentialIDs("sale"), Recorder: rec}
	people := customers.NewService(store.NewCollection[customers.Customer]("customer", clock), rt)
	john, err := people.Create(customers.CreateCustomerInput{Name: "John Doe"})
	require.NoError(t, err)
	svc := NewService(store.NewCollection[Sale]("sale", clock), bakery(), people,
		Options{DefaultPaymentMethod: "Cash", DefaultTaxRate: dec("7")}, rt)
	return fixture{svc: svc, customers: people, clock: clock, rec: rec, johnID: john.ID}
}

func TestCommitRequiresItemsAndPaymentMethod(t *testing.T) {
	f := newFixture(t)
	d := f.svc.NewDraft()
	require.NoError(t, d.SetPaymentMethod(" "))

	_, err := f.svc.Commit(d)
	fields, ok := shared.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Add at least one item to the sale", fields["items"])
	assert.Equal(t, "Select a payment method", fields["paymentMethod"])
	assert.Equal(t, DraftEmpty, d.State())
	assert.Empty(t, f.svc.All())
	assert.Equal(t, 1, f.rec.failures["sale"])
}

func TestCommitRejectsInactiveOrUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.customers.ToggleActive(f.johnID)
	require.NoError(t, err)

	d := f.svc.NewDraft()
	require.NoError(t, d.AddItem("cake", 1))
	require.NoError(t, d.SetCustomer(f.johnID))
	_, err = f.svc.Commit(d)
	fields, _ := shared.AsFieldErrors(err)
	assert.Contains(t, fields, "customerId")
	assert.Equal(t, DraftStaging, d.State())

	require.NoError(t, d.SetCustomer("ghost"))
	_, err = f.svc.Commit(d)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCommitBuildsSaleAndAccruesCustomer(t *testing.T) {
	f := newFixture(t)
	d := f.svc.NewDraft()
	require.NoError(t, d.SetCustomer(f.johnID))
	require.NoError(t, d.SetPaymentMethod("Credit Card"))
	require.NoError(t, d.AddItem("cake", 1))
	require.NoError(t, d.AddItem("cupcake", 2))

	sale, err := f.svc.Commit(d)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sale.Status)
	assert.Equal(t, "John Doe", sale.CustomerName)
	assert.True(t, dec("33.97").Equal(sale.Subtotal))
	assert.True(t, dec("2.3779").Equal(sale.TaxAmount))
	assert.True(t, dec("36.3479").Equal(sale.TotalAmount))
	assert.Equal(t, "36.35", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, f.clock.Now(), sale.CreatedAt)

	assert.Equal(t, DraftCommitted, d.State())
	assert.Equal(t, sale.ID, d.SaleID())

	john, err := f.customers.Get(f.johnID)
	require.NoError(t, err)
	assert.Equal(t, 1, john.TotalPurchases)
	assert.True(t, sale.TotalAmount.Equal(john.TotalSpent))
	require.Len(t, f.rec.committed, 1)

	_, err = f.svc.Commit(d)
	require.ErrorIs(t, err, shared.ErrDraftCommitted)
	john, _ = f.customers.Get(f.johnID)
	assert.Equal(t, 1, john.TotalPurchases, "a second commit must not accrue again")
}

func TestCommitWalkInSkipsAccrual(t *testing.T) {
	f := newFixture(t)
	before, err := f.customers.Get(customers.WalkInID)
	require.NoError(t, err)

	d := f.svc.NewDraft()
	require.NoError(t, d.AddItem("cupcake", 1))
	sale, err := f.svc.Commit(d)
	require.NoError(t, err)
	assert.Equal(t, customers.WalkInID, sale.CustomerID)
	assert.Equal(t, "Cash", sale.PaymentMethod)

	after, err := f.customers.Get(customers.WalkInID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestVoid(t *testing.T) {
	f := newFixture(t)
	d := f.svc.NewDraft()
	require.NoError(t, d.SetCustomer(f.johnID))
	require.NoError(t, d.AddItem("cake", 1))
	sale, err := f.svc.Commit(d)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	voided, err := f.svc.Void(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVoided, voided.Status)
	assert.Equal(t, f.clock.Now(), voided.UpdatedAt)
	assert.Equal(t, sale.Items, voided.Items)
	assert.True(t, sale.TotalAmount.Equal(voided.TotalAmount))
	assert.Equal(t, 1, f.rec.voided)

	john, _ := f.customers.Get(f.johnID)
	assert.Equal(t, 1, john.TotalPurchases, "void does not reverse accrual")

	_, err = f.svc.Void(sale.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
	_, err = f.svc.Void("ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListSearchDateRangeAndSort(t *testing.T) {
	f := newFixture(t)
	day := func(d, h int) time.Time { return time.Date(2023, 4, d, h, 0, 0, 0, time.UTC) }
	for _, s := range []Sale{
		recordedSale("SALE-001", "John Doe", "Credit Card", StatusCompleted, day(20, 14), "36.35"),
		recordedSale("SALE-002", "Walk-in Customer", "Cash", StatusCompleted, day(20, 16), "14.45"),
		recordedSale("SALE-003", "Jane Smith", "Cash", StatusVoided, day(22, 9), "99.00"),
	} {
		require.NoError(t, f.svc.Import(s))
	}

	rows, _ := f.svc.List(ListFilter{})
	assert.Equal(t, []string{"SALE-003", "SALE-002", "SALE-001"}, saleIDs(rows), "newest first by default")

	rows, _ = f.svc.List(ListFilter{Search: "jane"})
	assert.Equal(t, []string{"SALE-003"}, saleIDs(rows))

	from, to := day(20, 0), day(20, 0)
	rows, _ = f.svc.List(ListFilter{From: &from, To: &to, SortBy: SortByID})
	assert.Equal(t, []string{"SALE-001", "SALE-002"}, saleIDs(rows), "end date covers the whole day")

	rows, _ = f.svc.List(ListFilter{SortBy: SortByTotalAmount, SortDir: shared.SortDesc})
	assert.Equal(t, []string{"SALE-003", "SALE-001", "SALE-002"}, saleIDs(rows))

	rows, _ = f.svc.List(ListFilter{Status: StatusVoided})
	assert.Equal(t, []string{"SALE-003"}, saleIDs(rows))
}

// recordedSale builds a consistent one-line sale without tax or discount.
func recordedSale(id, customerName, method string, status Status, at time.Time, price string) Sale {
	line := Item{ProductID: "cake", ProductName: "Chocolate Cake", Quantity: 1, UnitPrice: dec(price), TotalPrice: dec(price)}
	return Sale{
		ID: id, CustomerName: customerName, Items: []Item{line},
		Subtotal: dec(price), TaxAmount: decimal.Zero, DiscountAmount: decimal.Zero, TotalAmount: dec(price),
		PaymentMethod: method, Status: status, CreatedAt: at, UpdatedAt: at,
	}
}

func TestImportRejectsInconsistentTotals(t *testing.T) {
	f := newFixture(t)
	at := f.clock.Now()

	broken := recordedSale("SALE-009", "John Doe", "Cash", StatusCompleted, at, "10.00")
	broken.Subtotal = dec("999")
	broken.TotalAmount = dec("5")
	err := f.svc.Import(broken)
	require.ErrorIs(t, err, shared.ErrValidation)
	fields, ok := shared.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "subtotal")
	assert.Contains(t, fields, "totalAmount")

	badLine := recordedSale("SALE-010", "John Doe", "Cash", StatusCompleted, at, "10.00")
	badLine.Items[0].Quantity = 2
	fields, _ = shared.AsFieldErrors(f.svc.Import(badLine))
	assert.Contains(t, fields, "items[0].totalPrice")

	noStatus := recordedSale("SALE-011", "John Doe", "Cash", "", at, "10.00")
	fields, _ = shared.AsFieldErrors(f.svc.Import(noStatus))
	assert.Equal(t, "Unknown sale status", fields["status"])

	assert.Empty(t, f.svc.All())
	assert.Equal(t, 3, f.rec.failures["sale"])

	taxed := recordedSale("SALE-012", "John Doe", "Cash", StatusCompleted, at, "33.97")
	totals := CalculateTotals(taxed.Items, dec("7"), decimal.Zero)
	taxed.TaxRate, taxed.TaxAmount, taxed.TotalAmount = dec("7"), totals.TaxAmount, totals.TotalAmount
	require.NoError(t, f.svc.Import(taxed))
}

func TestCommitNegativeTotalDoesNotReduceSpend(t *testing.T) {
	f := newFixture(t)
	_, err := f.customers.AccruePurchase(f.johnID, dec("50"))
	require.NoError(t, err)

	d := f.svc.NewDraft()
	require.NoError(t, d.SetCustomer(f.johnID))
	require.NoError(t, d.SetTaxRate(decimal.Zero))
	require.NoError(t, d.SetDiscountPercent(dec("150")))
	require.NoError(t, d.AddItem("cupcake", 1))

	sale, err := f.svc.Commit(d)
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.IsNegative())

	john, err := f.customers.Get(f.johnID)
	require.NoError(t, err)
	assert.Equal(t, "50", john.TotalSpent.String())
	assert.Equal(t, 1, john.TotalPurchases)
}

func saleIDs(rows []Sale) []string {
	out := make([]string, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.ID)
	}
	return out
}
