package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Item is a raw material kept in stock.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description,omitempty"`
	Quantity     float64         `json:"quantity"`
	Unit         string          `json:"unit"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	Category     string          `json:"category,omitempty"`
	ReorderLevel float64         `json:"reorderLevel"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Key implements store.Record.
func (i Item) Key() string { return i.ID }

// Touched implements store.Record.
func (i Item) Touched(at time.Time) Item {
	i.UpdatedAt = at
	return i
}

// Value is quantity × costPerUnit.
func (i Item) Value() decimal.Decimal {
	return i.CostPerUnit.Mul(decimal.NewFromFloat(i.Quantity))
}

// IsLowStock reports whether the item sits at or below its reorder level.
func IsLowStock(item Item) bool {
	return item.Quantity <= item.ReorderLevel
}

// CreateItemInput carries the fields of the add-item form.
type CreateItemInput struct {
	Name         string          `json:"name" validate:"notblank"`
	SKU          string          `json:"sku" validate:"notblank"`
	Description  string          `json:"description"`
	Quantity     float64         `json:"quantity" validate:"gte=0"`
	Unit         string          `json:"unit" validate:"notblank"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit" validate:"gt=0"`
	Category     string          `json:"category"`
	ReorderLevel float64         `json:"reorderLevel" validate:"gte=0"`
}

// ItemPatch changes only the non-nil fields.
type ItemPatch struct {
	Name         *string
	SKU          *string
	Description  *string
	Quantity     *float64
	Unit         *string
	CostPerUnit  *decimal.Decimal
	Category     *string
	ReorderLevel *float64
}

func (p ItemPatch) apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.SKU != nil {
		item.SKU = *p.SKU
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.CostPerUnit != nil {
		item.CostPerUnit = *p.CostPerUnit
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.ReorderLevel != nil {
		item.ReorderLevel = *p.ReorderLevel
	}
}

func inputFromItem(item Item) CreateItemInput {
	return CreateItemInput{
		Name:         item.Name,
		SKU:          item.SKU,
		Description:  item.Description,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		CostPerUnit:  item.CostPerUnit,
		Category:     item.Category,
		ReorderLevel: item.ReorderLevel,
	}
}

// SortField enumerates list orderings.
type SortField string

const (
	SortByName         SortField = "name"
	SortBySKU          SortField = "sku"
	SortByQuantity     SortField = "quantity"
	SortByCostPerUnit  SortField = "costPerUnit"
	SortByCategory     SortField = "category"
	SortByReorderLevel SortField = "reorderLevel"
	SortByValue        SortField = "value"
)

// ListFilter narrows and orders List results.
type ListFilter struct {
	Search       string
	Category     string
	LowStockOnly bool
	SortBy       SortField
	SortDir      shared.SortDir
	Page         int
	PerPage      int
}
