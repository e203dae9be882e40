package customers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// WalkInID identifies the anonymous customer that always exists.
const WalkInID = "walk-in"

// Type classifies customers.
type Type string

const (
	TypeRegular   Type = "regular"
	TypeVIP       Type = "vip"
	TypeWholesale Type = "wholesale"
	TypeWalkIn    Type = "walk-in"
)

// Customer is a buyer together with the purchase statistics accrued from sales.
type Customer struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Address          string          `json:"address,omitempty"`
	City             string          `json:"city,omitempty"`
	State            string          `json:"state,omitempty"`
	ZipCode          string          `json:"zipCode,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Type             Type            `json:"customerType"`
	TotalPurchases   int             `json:"totalPurchases"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	LastPurchaseDate *time.Time      `json:"lastPurchaseDate"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Key implements store.Record.
func (c Customer) Key() string { return c.ID }

// Touched implements store.Record.
func (c Customer) Touched(at time.Time) Customer {
	c.UpdatedAt = at
	return c
}

// IsWalkIn reports whether c is the walk-in sentinel.
func (c Customer) IsWalkIn() bool { return c.ID == WalkInID }

// WalkIn returns the sentinel record stamped at now.
func WalkIn(now time.Time) Customer {
	return Customer{
		ID:         WalkInID,
		Name:       "Walk-in Customer",
		Type:       TypeWalkIn,
		TotalSpent: decimal.Zero,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateCustomerInput carries the fields of the add-customer form. Email and
// phone are optional but must be well formed when given.
type CreateCustomerInput struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Notes   string `json:"notes"`
	// Type defaults to regular when empty.
	Type Type `json:"customerType" validate:"omitempty,oneof=regular vip wholesale"`
}

// CustomerPatch changes only the non-nil fields.
type CustomerPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	City     *string
	State    *string
	ZipCode  *string
	Notes    *string
	Type     *Type
	IsActive *bool
}

func (p CustomerPatch) apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.City != nil {
		c.City = *p.City
	}
	if p.State != nil {
		c.State = *p.State
	}
	if p.ZipCode != nil {
		c.ZipCode = *p.ZipCode
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// SortField enumerates list orderings.
type SortField string

const (
	SortByName             SortField = "name"
	SortByTotalSpent       SortField = "totalSpent"
	SortByTotalPurchases   SortField = "totalPurchases"
	SortByLastPurchaseDate SortField = "lastPurchaseDate"
)

// ListFilter narrows and orders List results. An empty Type matches all.
type ListFilter struct {
	Search  string
	Type    Type
	SortBy  SortField
	SortDir shared.SortDir
	Page    int
	PerPage int
}

// Stats summarises the customer base.
type Stats struct {
	ActiveCustomers int             `json:"activeCustomers"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	AverageSpent    decimal.Decimal `json:"averageSpent"`
}
