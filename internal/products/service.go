package products

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// MaterialStock is the inventory surface production runs draw from.
type MaterialStock interface {
	ItemLookup
	Decrease(id string, qty float64, note string) (inventory.Item, error)
}

// Service manages finished products and their bill of materials.
type Service struct {
	products  *store.Collection[Product]
	materials MaterialStock
	ledger    *inventory.Ledger
	rt        shared.Runtime
}

// NewService builds Service. ledger may be nil.
func NewService(products *store.Collection[Product], materials MaterialStock, ledger *inventory.Ledger, rt shared.Runtime) *Service {
	return &Service{products: products, materials: materials, ledger: ledger, rt: rt.WithDefaults()}
}

// Create validates the input, merges duplicate materials and captures the production cost.
func (s *Service) Create(in CreateProductInput) (Product, error) {
	if errs := s.rt.Validator.Struct(in); len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("product")
		return Product{}, errs
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.rt.Clock.Now()
	p := Product{
		ID:           s.rt.IDs.NewID(),
		Name:         strings.TrimSpace(in.Name),
		SKU:          strings.TrimSpace(in.SKU),
		Description:  in.Description,
		SellingPrice: in.SellingPrice,
		Quantity:     in.Quantity,
		IsActive:     active,
		Materials:    MergeMaterials(in.Materials),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	breakdown := s.cost(p.ID, p.Materials)
	p.ProductionCost, p.UncostedMaterials = breakdown.Total, breakdown.Missing
	if err := s.products.Add(p); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Import stores a fully formed product as-is, keeping its stored production cost.
func (s *Service) Import(p Product) error {
	if errs := s.rt.Validator.Struct(inputFromProduct(p)); len(errs) > 0 {
		return errs
	}
	p.Materials = cloneMaterials(p.Materials)
	p.UncostedMaterials = append([]string(nil), p.UncostedMaterials...)
	return s.products.Add(p)
}

// Get resolves a product by id.
func (s *Service) Get(id string) (Product, error) {
	return s.products.Get(id)
}

// All returns every product in insertion order.
func (s *Service) All() []Product {
	return s.products.List()
}

// Update applies patch after validating the resulting product. Replacing the
// material list recomputes productionCost from current inventory costs.
func (s *Service) Update(id string, patch ProductPatch) (Product, error) {
	current, err := s.products.Get(id)
	if err != nil {
		return Product{}, err
	}
	if patch.Materials != nil {
		patch.Materials = MergeMaterials(patch.Materials)
	}
	next := current
	patch.apply(&next)
	if errs := s.rt.Validator.Struct(inputFromProduct(next)); len(errs) > 0 {
		s.rt.Recorder.ValidationFailed("product")
		return Product{}, errs
	}
	breakdown := CostBreakdown{Total: current.ProductionCost, Missing: current.UncostedMaterials}
	if patch.Materials != nil {
		breakdown = s.cost(id, next.Materials)
	}
	updated, err := s.products.Update(id, func(p *Product) {
		patch.apply(p)
		p.ProductionCost, p.UncostedMaterials = breakdown.Total, breakdown.Missing
	})
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if delta := updated.Quantity - current.Quantity; delta != 0 {
		s.ledger.Post(inventory.SubjectProduct, id, inventory.MovementAdjust, delta, updated.Quantity, "manual edit")
	}
	return updated, nil
}

// Recost refreshes productionCost from the current inventory costs.
func (s *Service) Recost(id string) (Product, error) {
	current, err := s.products.Get(id)
	if err != nil {
		return Product{}, err
	}
	breakdown := s.cost(id, current.Materials)
	updated, err := s.products.Update(id, func(p *Product) {
		p.ProductionCost, p.UncostedMaterials = breakdown.Total, breakdown.Missing
	})
	if err != nil {
		return Product{}, fmt.Errorf("recost product: %w", err)
	}
	return updated, nil
}

// Delete removes the product. Past sales keep their snapshot of it.
func (s *Service) Delete(id string) error {
	if err := s.products.Remove(id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Decrease removes qty finished units, clamping at zero.
func (s *Service) Decrease(id string, qty float64, note string) (Product, error) {
	if qty <= 0 {
		return Product{}, shared.FieldErrors{"quantity": "Quantity must be greater than zero"}
	}
	var removed float64
	updated, err := s.products.Update(id, func(p *Product) {
		next := p.Quantity - qty
		if next < 0 {
			next = 0
		}
		removed = p.Quantity - next
		p.Quantity = next
	})
	if err != nil {
		return Product{}, fmt.Errorf("decrease product stock: %w", err)
	}
	s.ledger.Post(inventory.SubjectProduct, id, inventory.MovementOut, -removed, updated.Quantity, note)
	return updated, nil
}

// Increase adds qty finished units.
func (s *Service) Increase(id string, qty float64, note string) (Product, error) {
	if qty <= 0 {
		return Product{}, shared.FieldErrors{"quantity": "Quantity must be greater than zero"}
	}
	updated, err := s.products.Update(id, func(p *Product) { p.Quantity += qty })
	if err != nil {
		return Product{}, fmt.Errorf("increase product stock: %w", err)
	}
	s.ledger.Post(inventory.SubjectProduct, id, inventory.MovementIn, qty, updated.Quantity, note)
	return updated, nil
}

// StockCard lists the finished-goods movements of one product.
func (s *Service) StockCard(id string) []inventory.Movement {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.StockCard(inventory.SubjectProduct, id)
}

// CheckAvailability fails with *shared.InsufficientStockError when fewer than
// requested finished units are in stock.
func CheckAvailability(p Product, requested float64) error {
	if p.Quantity < requested {
		return &shared.InsufficientStockError{ProductID: p.ID, Requested: requested, Available: p.Quantity}
	}
	return nil
}

// Produce runs a production batch: every resolvable material is drawn down by
// quantity × units (clamped at zero) and the product gains units finished goods.
func (s *Service) Produce(id string, units float64) (ProductionRun, error) {
	if units <= 0 {
		return ProductionRun{}, shared.FieldErrors{"units": "Units must be greater than zero"}
	}
	p, err := s.products.Get(id)
	if err != nil {
		return ProductionRun{}, fmt.Errorf("produce: %w", err)
	}
	run := ProductionRun{Units: units}
	note := fmt.Sprintf("production of %s", p.Name)
	for _, m := range p.Materials {
		if _, err := s.materials.Decrease(m.InventoryItemID, m.Quantity*units, note); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return ProductionRun{}, fmt.Errorf("produce: %w", err)
			}
			run.Missing = append(run.Missing, m.InventoryItemID)
			continue
		}
		run.Consumed = append(run.Consumed, Material{InventoryItemID: m.InventoryItemID, Quantity: m.Quantity * units})
	}
	if len(run.Missing) > 0 {
		s.rt.Logger.Warn("production skipped missing materials",
			slog.String("product", id), slog.Any("missing", run.Missing))
	}
	run.Product, err = s.Increase(id, units, note)
	if err != nil {
		return ProductionRun{}, err
	}
	s.rt.Logger.Info("production run", slog.String("product", id), slog.Float64("units", units))
	return run, nil
}

// List searches by name or SKU, then orders and paginates.
func (s *Service) List(filter ListFilter) ([]Product, shared.Pagination) {
	var rows []Product
	for _, p := range s.products.List() {
		if !shared.ContainsFold(p.Name, filter.Search) && !shared.ContainsFold(p.SKU, filter.Search) {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		rows = append(rows, p)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return shared.Directed(compareProducts(rows[i], rows[j], filter.SortBy), filter.SortDir) < 0
	})
	page := shared.NewPagination(filter.Page, filter.PerPage, len(rows))
	return shared.Paginate(rows, page), page
}

func (s *Service) cost(id string, materials []Material) CostBreakdown {
	breakdown := ComputeProductionCost(materials, s.materials)
	if len(breakdown.Missing) > 0 {
		s.rt.Logger.Warn("bill of materials references missing inventory",
			slog.String("product", id), slog.Any("missing", breakdown.Missing))
	}
	return breakdown
}

func compareProducts(a, b Product, field SortField) int {
	switch field {
	case SortBySKU:
		return shared.CompareText(a.SKU, b.SKU)
	case SortBySellingPrice:
		return a.SellingPrice.Cmp(b.SellingPrice)
	case SortByQuantity:
		switch {
		case a.Quantity < b.Quantity:
			return -1
		case a.Quantity > b.Quantity:
			return 1
		}
		return 0
	case SortByProductionCost:
		return a.ProductionCost.Cmp(b.ProductionCost)
	case SortByMargin:
		return a.Margin().Cmp(b.Margin())
	default:
		return shared.CompareText(a.Name, b.Name)
	}
}
