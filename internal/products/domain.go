package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Material is one bill-of-materials line: a weak reference to an inventory item.
type Material struct {
	InventoryItemID string  `json:"inventoryItemId" validate:"notblank"`
	Quantity        float64 `json:"quantity" validate:"gt=0"`
}

// Product is a finished good assembled from inventory materials.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description,omitempty"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     float64         `json:"quantity"`
	IsActive     bool            `json:"isActive"`
	Materials    []Material      `json:"materials"`
	// ProductionCost is captured when the material list is set and is not
	// refreshed when inventory costs move. See Service.Recost.
	ProductionCost decimal.Decimal `json:"productionCost"`
	// UncostedMaterials lists material ids that did not resolve the last time
	// productionCost was computed. They contributed nothing to it.
	UncostedMaterials []string  `json:"uncostedMaterials,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// FullyCosted reports whether every material resolved when the cost was taken.
func (p Product) FullyCosted() bool { return len(p.UncostedMaterials) == 0 }

// Key implements store.Record.
func (p Product) Key() string { return p.ID }

// Touched implements store.Record.
func (p Product) Touched(at time.Time) Product {
	p.UpdatedAt = at
	return p
}

// Margin is the profit margin percentage at the stored production cost.
func (p Product) Margin() decimal.Decimal {
	return ProfitMargin(p.SellingPrice, p.ProductionCost)
}

// ProfitPerUnit is sellingPrice − productionCost.
func (p Product) ProfitPerUnit() decimal.Decimal {
	return ProfitPerUnit(p.SellingPrice, p.ProductionCost)
}

// CreateProductInput carries the fields of the add-product form.
type CreateProductInput struct {
	Name         string          `json:"name" validate:"notblank"`
	SKU          string          `json:"sku" validate:"notblank"`
	Description  string          `json:"description"`
	SellingPrice decimal.Decimal `json:"sellingPrice" validate:"gt=0"`
	Quantity     float64         `json:"quantity" validate:"gte=0"`
	// IsActive defaults to true when nil.
	IsActive  *bool      `json:"isActive"`
	Materials []Material `json:"materials" validate:"min=1,dive"`
}

// ProductPatch changes only the non-nil fields. A non-nil Materials replaces
// the whole bill of materials and recomputes productionCost.
type ProductPatch struct {
	Name         *string
	SKU          *string
	Description  *string
	SellingPrice *decimal.Decimal
	Quantity     *float64
	IsActive     *bool
	Materials    []Material
}

func (p ProductPatch) apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.SellingPrice != nil {
		product.SellingPrice = *p.SellingPrice
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
	if p.Materials != nil {
		product.Materials = cloneMaterials(p.Materials)
	}
}

func inputFromProduct(p Product) CreateProductInput {
	active := p.IsActive
	return CreateProductInput{
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		SellingPrice: p.SellingPrice,
		Quantity:     p.Quantity,
		IsActive:     &active,
		Materials:    p.Materials,
	}
}

func cloneMaterials(in []Material) []Material {
	if in == nil {
		return nil
	}
	out := make([]Material, len(in))
	copy(out, in)
	return out
}

// SortField enumerates list orderings.
type SortField string

const (
	SortByName           SortField = "name"
	SortBySKU            SortField = "sku"
	SortBySellingPrice   SortField = "sellingPrice"
	SortByQuantity       SortField = "quantity"
	SortByProductionCost SortField = "productionCost"
	SortByMargin         SortField = "margin"
)

// ListFilter narrows and orders List results.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	SortBy     SortField
	SortDir    shared.SortDir
	Page       int
	PerPage    int
}

// ProductionRun reports the outcome of Service.Produce.
type ProductionRun struct {
	Product  Product
	Units    float64
	Consumed []Material
	// Missing lists material ids that no longer resolve; they were skipped.
	Missing []string
}
