package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Status is the lifecycle state of a recorded sale.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusVoided    Status = "Voided"
	StatusPending   Status = "Pending"
)

// PaymentMethods lists the methods offered at checkout. Other non-empty
// methods are accepted as well.
var PaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "Mobile Payment"}

// Item is one sale line. Name and price are snapshots taken when the line was staged.
type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// Sale is a committed transaction. Only Status and UpdatedAt change after commit.
type Sale struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Key implements store.Record.
func (s Sale) Key() string { return s.ID }

// Touched implements store.Record.
func (s Sale) Touched(at time.Time) Sale {
	s.UpdatedAt = at
	return s
}

// SortField enumerates list orderings.
type SortField string

const (
	SortByID            SortField = "id"
	SortByCreatedAt     SortField = "createdAt"
	SortByCustomerName  SortField = "customerName"
	SortByTotalAmount   SortField = "totalAmount"
	SortByPaymentMethod SortField = "paymentMethod"
	SortByStatus        SortField = "status"
)

// ListFilter narrows and orders List results. From and To are calendar days;
// To includes the whole day.
type ListFilter struct {
	Search  string
	From    *time.Time
	To      *time.Time
	Status  Status
	SortBy  SortField
	SortDir shared.SortDir
	Page    int
	PerPage int
}
