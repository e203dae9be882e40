package inventory

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// Service coordinates raw-material inventory operations.
type Service struct {
	items  *store.Collection[Item]
	ledger *Ledger
	rt     shared.Runtime
}

// NewService builds Service. ledger may be nil when no stock card is kept.
func NewService(items *store.Collection[Item], ledger *Ledger, rt shared.Runtime) *Service {
	return &Service{items: items, ledger: ledger, rt: rt.WithDefaults()}
}

// Create validates the input and stores a new item with a fresh id.
func (s *Service) Create(in CreateItemInput) (Item, error) {
	if errs := s.rt.Validator.Struct(in); len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("inventory")
		return Item{}, errs
	}
	now := s.rt.Clock.Now()
	item := Item{
		ID:           s.rt.IDs.NewID(),
		Name:         strings.TrimSpace(in.Name),
		SKU:          strings.TrimSpace(in.SKU),
		Description:  in.Description,
		Quantity:     in.Quantity,
		Unit:         strings.TrimSpace(in.Unit),
		CostPerUnit:  in.CostPerUnit,
		Category:     strings.TrimSpace(in.Category),
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.items.Add(item); err != nil {
		return Item{}, fmt.Errorf("create inventory item: %w", err)
	}
	return item, nil
}

// Import stores a fully formed item as-is, keeping its id and timestamps.
func (s *Service) Import(item Item) error {
	if errs := s.rt.Validator.Struct(inputFromItem(item)); len(errs) > 0 {
		return errs
	}
	return s.items.Add(item)
}

// Get resolves an item by id.
func (s *Service) Get(id string) (Item, error) {
	return s.items.Get(id)
}

// All returns every item in insertion order.
func (s *Service) All() []Item {
	return s.items.List()
}

// Update applies patch after validating the resulting item.
func (s *Service) Update(id string, patch ItemPatch) (Item, error) {
	current, err := s.items.Get(id)
	if err != nil {
		return Item{}, err
	}
	next := current
	patch.apply(&next)
	if errs := s.rt.Validator.Struct(inputFromItem(next)); len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("inventory")
		return Item{}, errs
	}
	updated, err := s.items.Update(id, func(item *Item) { patch.apply(item) })
	if err != nil {
		return Item{}, fmt.Errorf("update inventory item: %w", err)
	}
	if delta := updated.Quantity - current.Quantity; delta != 0 {
		s.ledger.Post(SubjectMaterial, id, MovementAdjust, delta, updated.Quantity, "manual edit")
	}
	return updated, nil
}

// Delete removes the item. Products whose bill of materials names it keep the dangling id.
func (s *Service) Delete(id string) error {
	if err := s.items.Remove(id); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

// Decrease removes qty from stock, clamping the balance at zero.
func (s *Service) Decrease(id string, qty float64, note string) (Item, error) {
	if qty <= 0 {
		return Item{}, shared.FieldErrors{"quantity": "Quantity must be greater than zero"}
	}
	var removed float64
	updated, err := s.items.Update(id, func(item *Item) {
		next := item.Quantity - qty
		if next < 0 {
			next = 0
		}
		removed = item.Quantity - next
		item.Quantity = next
	})
	if err != nil {
		return Item{}, fmt.Errorf("decrease inventory: %w", err)
	}
	s.ledger.Post(SubjectMaterial, id, MovementOut, -removed, updated.Quantity, note)
	if IsLowStock(updated) {
		s.rt.Logger.Warn("inventory item at reorder level",
			slog.String("id", id), slog.String("name", updated.Name), slog.Float64("quantity", updated.Quantity))
	}
	return updated, nil
}

// Increase adds qty to stock without an upper bound.
func (s *Service) Increase(id string, qty float64, note string) (Item, error) {
	if qty <= 0 {
		return Item{}, shared.FieldErrors{"quantity": "Quantity must be greater than zero"}
	}
	updated, err := s.items.Update(id, func(item *Item) {
		item.Quantity += qty
	})
	if err != nil {
		return Item{}, fmt.Errorf("increase inventory: %w", err)
	}
	s.ledger.Post(SubjectMaterial, id, MovementIn, qty, updated.Quantity, note)
	return updated, nil
}

// LowStock returns the items at or below their reorder level.
func (s *Service) LowStock() []Item {
	var out []Item
	for _, item := range s.items.List() {
		if IsLowStock(item) {
			out = append(out, item)
		}
	}
	s.rt.Recorder.LowStockItems(len(out))
	return out
}

// StockCard lists the quantity movements recorded for one item.
func (s *Service) StockCard(id string) []Movement {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.StockCard(SubjectMaterial, id)
}

// List searches by name or SKU, then orders and paginates.
func (s *Service) List(filter ListFilter) ([]Item, shared.Pagination) {
	var rows []Item
	for _, item := range s.items.List() {
		if !shared.ContainsFold(item.Name, filter.Search) && !shared.ContainsFold(item.SKU, filter.Search) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
			continue
		}
		if filter.LowStockOnly && !IsLowStock(item) {
			continue
		}
		rows = append(rows, item)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return shared.Directed(compareItems(rows[i], rows[j], filter.SortBy), filter.SortDir) < 0
	})
	p := shared.NewPagination(filter.Page, filter.PerPage, len(rows))
	return shared.Paginate(rows, p), p
}

func compareItems(a, b Item, field SortField) int {
	switch field {
	case SortBySKU:
		return shared.CompareText(a.SKU, b.SKU)
	case SortByQuantity:
		return compareFloat(a.Quantity, b.Quantity)
	case SortByCostPerUnit:
		return a.CostPerUnit.Cmp(b.CostPerUnit)
	case SortByCategory:
		return shared.CompareText(a.Category, b.Category)
	case SortByReorderLevel:
		return compareFloat(a.ReorderLevel, b.ReorderLevel)
	case SortByValue:
		return a.Value().Cmp(b.Value())
	default:
		return shared.CompareText(a.Name, b.Name)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
