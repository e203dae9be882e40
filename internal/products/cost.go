package products

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/inventory"
)

var hundred = decimal.NewFromInt(100)

// ItemLookup resolves inventory items by id.
type ItemLookup interface {
	Get(id string) (inventory.Item, error)
}

// CostBreakdown is the result of rolling a bill of materials up to a unit cost.
type CostBreakdown struct {
	Total decimal.Decimal
	// Missing holds material ids that did not resolve and contributed zero.
	Missing []string
}

// ComputeProductionCost sums costPerUnit × quantity over every resolvable material.
func ComputeProductionCost(materials []Material, items ItemLookup) CostBreakdown {
	out := CostBreakdown{Total: decimal.Zero}
	for _, m := range materials {
		item, err := items.Get(m.InventoryItemID)
		if err != nil {
			out.Missing = append(out.Missing, m.InventoryItemID)
			continue
		}
		out.Total = out.Total.Add(item.CostPerUnit.Mul(decimal.NewFromFloat(m.Quantity)))
	}
	return out
}

// ProfitMargin returns ((sellingPrice − productionCost) / sellingPrice) × 100,
// or zero when sellingPrice is not positive. The result may be negative.
func ProfitMargin(sellingPrice, productionCost decimal.Decimal) decimal.Decimal {
	if !sellingPrice.IsPositive() {
		return decimal.Zero
	}
	return sellingPrice.Sub(productionCost).Div(sellingPrice).Mul(hundred)
}

// ProfitPerUnit returns sellingPrice − productionCost.
func ProfitPerUnit(sellingPrice, productionCost decimal.Decimal) decimal.Decimal {
	return sellingPrice.Sub(productionCost)
}

// MergeMaterials folds duplicate inventory ids into one line, summing
// quantities and keeping first-seen order.
func MergeMaterials(materials []Material) []Material {
	out := make([]Material, 0, len(materials))
	index := make(map[string]int, len(materials))
	for _, m := range materials {
		if i, ok := index[m.InventoryItemID]; ok {
			out[i].Quantity += m.Quantity
			continue
		}
		index[m.InventoryItemID] = len(out)
		out = append(out, m)
	}
	return out
}
