package customers

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// Service manages customers and accrues their purchase statistics.
type Service struct {
	customers *store.Collection[Customer]
	rt        shared.Runtime
}

// NewService builds Service and makes sure the walk-in customer exists.
func NewService(customers *store.Collection[Customer], rt shared.Runtime) *Service {
	s := &Service{customers: customers, rt: rt.WithDefaults()}
	if _, err := customers.Get(WalkInID); err != nil {
		if err := customers.Add(WalkIn(s.rt.Clock.Now())); err != nil {
			s.rt.Logger.Error("seed walk-in customer", slog.Any("error", err))
		}
	}
	return s
}

// Create validates the input and stores a new active customer with zeroed statistics.
func (s *Service) Create(in CreateCustomerInput) (Customer, error) {
	if errs := s.validate(in); len(errs) > 0 {
		return Customer{}, errs
	}
	typ := in.Type
	if typ == "" {
		typ = TypeRegular
	}
	now := s.rt.Clock.Now()
	c := Customer{
		ID:         s.rt.IDs.NewID(),
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		ZipCode:    in.ZipCode,
		Notes:      in.Notes,
		Type:       typ,
		TotalSpent: decimal.Zero,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.customers.Add(c); err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// Import stores a fully formed customer, statistics included. Importing the
// walk-in record replaces the existing sentinel.
func (s *Service) Import(c Customer) error {
	if c.IsWalkIn() {
		c.Type = TypeWalkIn
		c.IsActive = true
		_, err := s.customers.Update(WalkInID, func(cur *Customer) { *cur = c })
		return err
	}
	if errs := s.validate(inputFromCustomer(c)); len(errs) > 0 {
		return errs
	}
	return s.customers.Add(c)
}

// Get resolves a customer by id.
func (s *Service) Get(id string) (Customer, error) {
	return s.customers.Get(id)
}

// All returns every customer in insertion order.
func (s *Service) All() []Customer {
	return s.customers.List()
}

// Active returns the customers a sale may be attributed to.
func (s *Service) Active() []Customer {
	var out []Customer
	for _, c := range s.customers.List() {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// Update applies patch. The walk-in customer cannot be deactivated or retyped.
func (s *Service) Update(id string, patch CustomerPatch) (Customer, error) {
	current, err := s.customers.Get(id)
	if err != nil {
		return Customer{}, err
	}
	if current.IsWalkIn() {
		if (patch.IsActive != nil && !*patch.IsActive) || (patch.Type != nil && *patch.Type != TypeWalkIn) {
			return Customer{}, fmt.Errorf("update customer %q: %w", id, shared.ErrSentinelProtected)
		}
	}
	next := current
	patch.apply(&next)
	in := inputFromCustomer(next)
	if next.IsWalkIn() {
		// walk-in is not a selectable type; the remaining rules still apply
		in.Type = ""
	}
	if errs := s.validate(in); len(errs) > 0 {
		return Customer{}, errs
	}
	updated, err := s.customers.Update(id, func(c *Customer) { patch.apply(c) })
	if err != nil {
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// Delete removes a customer. Past sales keep their name snapshot.
func (s *Service) Delete(id string) error {
	if id == WalkInID {
		s.rt.Logger.Warn("rejected walk-in delete")
		return fmt.Errorf("delete customer %q: %w", id, shared.ErrSentinelProtected)
	}
	if err := s.customers.Remove(id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// ToggleActive flips isActive.
func (s *Service) ToggleActive(id string) (Customer, error) {
	if id == WalkInID {
		s.rt.Logger.Warn("rejected walk-in deactivation")
		return Customer{}, fmt.Errorf("toggle customer %q: %w", id, shared.ErrSentinelProtected)
	}
	updated, err := s.customers.Update(id, func(c *Customer) { c.IsActive = !c.IsActive })
	if err != nil {
		return Customer{}, fmt.Errorf("toggle customer: %w", err)
	}
	return updated, nil
}

// AccruePurchase records one purchase of amount against the customer.
// The walk-in customer carries no statistics and is rejected. Negative amounts
// are rejected so totalSpent never decreases.
func (s *Service) AccruePurchase(id string, amount decimal.Decimal) (Customer, error) {
	if id == WalkInID {
		return Customer{}, fmt.Errorf("accrue purchase: %w", shared.ErrSentinelProtected)
	}
	if amount.IsNegative() {
		return Customer{}, fmt.Errorf("accrue purchase: %w", shared.FieldErrors{"amount": "Amount cannot be negative"})
	}
	now := s.rt.Clock.Now()
	updated, err := s.customers.Update(id, func(c *Customer) {
		c.TotalPurchases++
		c.TotalSpent = c.TotalSpent.Add(amount)
		c.LastPurchaseDate = &now
	})
	if err != nil {
		return Customer{}, fmt.Errorf("accrue purchase: %w", err)
	}
	return updated, nil
}

// List searches name, email and phone, filters by type, then orders and paginates.
func (s *Service) List(filter ListFilter) ([]Customer, shared.Pagination) {
	var rows []Customer
	for _, c := range s.customers.List() {
		match := shared.ContainsFold(c.Name, filter.Search) ||
			(c.Email != "" && shared.ContainsFold(c.Email, filter.Search)) ||
			(c.Phone != "" && strings.Contains(c.Phone, filter.Search))
		if !match {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		rows = append(rows, c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return lessCustomer(rows[i], rows[j], filter.SortBy, filter.SortDir)
	})
	page := shared.NewPagination(filter.Page, filter.PerPage, len(rows))
	return shared.Paginate(rows, page), page
}

// Stats reports active customers, revenue across all customers and average spend per active customer.
func (s *Service) Stats() Stats {
	stats := Stats{TotalRevenue: decimal.Zero, AverageSpent: decimal.Zero}
	for _, c := range s.customers.List() {
		if c.IsActive {
			stats.ActiveCustomers++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(c.TotalSpent)
	}
	if stats.ActiveCustomers > 0 {
		stats.AverageSpent = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.ActiveCustomers)))
	}
	return stats
}

func (s *Service) validate(in CreateCustomerInput) shared.FieldErrors {
	errs := s.rt.Validator.Struct(in)
	if _, ok := errs["name"]; ok {
		errs["name"] = "Customer name is required"
	}
	if len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("customer")
	}
	return errs
}

func inputFromCustomer(c Customer) CreateCustomerInput {
	return CreateCustomerInput{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		City:    c.City,
		State:   c.State,
		ZipCode: c.ZipCode,
		Notes:   c.Notes,
		Type:    c.Type,
	}
}

// lessCustomer orders a before b. Missing purchase dates sort last ascending and first descending.
func lessCustomer(a, b Customer, field SortField, dir shared.SortDir) bool {
	var cmp int
	switch field {
	case SortByTotalSpent:
		cmp = a.TotalSpent.Cmp(b.TotalSpent)
	case SortByTotalPurchases:
		cmp = a.TotalPurchases - b.TotalPurchases
	case SortByLastPurchaseDate:
		switch {
		case a.LastPurchaseDate == nil && b.LastPurchaseDate == nil:
			return false
		case a.LastPurchaseDate == nil:
			return dir == shared.SortDesc
		case b.LastPurchaseDate == nil:
			return dir != shared.SortDesc
		}
		cmp = a.LastPurchaseDate.Compare(*b.LastPurchaseDate)
	default:
		cmp = shared.CompareText(a.Name, b.Name)
	}
	return shared.Directed(cmp, dir) < 0
}
