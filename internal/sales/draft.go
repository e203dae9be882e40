package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/products"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// DraftState tracks where a draft sits in its lifecycle.
type DraftState int

const (
	DraftEmpty DraftState = iota
	DraftStaging
	DraftCommitted
)

func (s DraftState) String() string {
	switch s {
	case DraftEmpty:
		return "empty"
	case DraftStaging:
		return "staging"
	case DraftCommitted:
		return "committed"
	}
	return fmt.Sprintf("DraftState(%d)", int(s))
}

// ProductLookup resolves products for line staging.
type ProductLookup interface {
	Get(id string) (products.Product, error)
}

// DraftDefaults seeds a new draft.
type DraftDefaults struct {
	CustomerID    string
	PaymentMethod string
	TaxRate       decimal.Decimal
}

// Draft is a sale being assembled. It is not safe for concurrent use.
type Draft struct {
	products        ProductLookup
	items           []Item
	customerID      string
	paymentMethod   string
	taxRate         decimal.Decimal
	discountPercent decimal.Decimal
	state           DraftState
	saleID          string
}

// NewDraft starts an empty draft. The customer defaults to walk-in.
func NewDraft(lookup ProductLookup, defaults DraftDefaults) *Draft {
	customerID := defaults.CustomerID
	if customerID == "" {
		customerID = customers.WalkInID
	}
	return &Draft{
		products:        lookup,
		customerID:      customerID,
		paymentMethod:   defaults.PaymentMethod,
		taxRate:         defaults.TaxRate,
		discountPercent: decimal.Zero,
	}
}

// State reports the lifecycle state.
func (d *Draft) State() DraftState { return d.state }

// SaleID is the id of the committed sale, empty before commit.
func (d *Draft) SaleID() string { return d.saleID }

// CustomerID is the selected customer.
func (d *Draft) CustomerID() string { return d.customerID }

// PaymentMethod is the selected payment method.
func (d *Draft) PaymentMethod() string { return d.paymentMethod }

// TaxRate is the tax percentage.
func (d *Draft) TaxRate() decimal.Decimal { return d.taxRate }

// DiscountPercent is the discount percentage.
func (d *Draft) DiscountPercent() decimal.Decimal { return d.discountPercent }

// Items returns a copy of the staged lines.
func (d *Draft) Items() []Item {
	out := make([]Item, len(d.items))
	copy(out, d.items)
	return out
}

// Totals computes the live totals of the staged lines.
func (d *Draft) Totals() Totals {
	return CalculateTotals(d.items, d.taxRate, d.discountPercent)
}

// AddItem stages qty units of a product. Adding a product that is already
// staged merges into the existing line; the combined quantity must fit in stock.
func (d *Draft) AddItem(productID string, qty float64) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	errs := shared.FieldErrors{}
	if strings.TrimSpace(productID) == "" {
		errs.Add("productId", "Please select a product")
	}
	if qty <= 0 {
		errs.Add("quantity", "Quantity must be greater than zero")
	}
	if len(errs) > 0 {
		return errs
	}
	p, err := d.products.Get(productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.FieldErrors{"productId": "Please select a product"}
		}
		return fmt.Errorf("add sale item: %w", err)
	}
	if !p.IsActive {
		return shared.FieldErrors{"productId": "Product is not available for sale"}
	}

	for i := range d.items {
		line := &d.items[i]
		if line.ProductID != productID {
			continue
		}
		if p.Quantity < line.Quantity+qty {
			return &shared.InsufficientStockError{
				ProductID: productID,
				Requested: qty,
				Available: p.Quantity - line.Quantity,
				Staged:    line.Quantity,
			}
		}
		line.Quantity += qty
		line.TotalPrice = LineTotal(line.Quantity, line.UnitPrice)
		return nil
	}

	if err := products.CheckAvailability(p, qty); err != nil {
		return err
	}
	d.items = append(d.items, Item{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.SellingPrice,
		TotalPrice:  LineTotal(qty, p.SellingPrice),
	})
	d.state = DraftStaging
	return nil
}

// RemoveItem drops the line for productID. Removing the last line empties the draft.
func (d *Draft) RemoveItem(productID string) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	for i, line := range d.items {
		if line.ProductID == productID {
			d.items = append(d.items[:i], d.items[i+1:]...)
			if len(d.items) == 0 {
				d.state = DraftEmpty
			}
			return nil
		}
	}
	return fmt.Errorf("remove sale item %q: %w", productID, shared.ErrNotFound)
}

// SetCustomer selects the customer the sale is attributed to.
func (d *Draft) SetCustomer(customerID string) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	d.customerID = customerID
	return nil
}

// SetPaymentMethod selects the payment method.
func (d *Draft) SetPaymentMethod(method string) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	d.paymentMethod = strings.TrimSpace(method)
	return nil
}

// SetTaxRate sets the tax percentage.
func (d *Draft) SetTaxRate(rate decimal.Decimal) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	d.taxRate = rate
	return nil
}

// SetDiscountPercent sets the discount percentage. 0 to 100 is expected but not enforced.
func (d *Draft) SetDiscountPercent(percent decimal.Decimal) error {
	if d.state == DraftCommitted {
		return shared.ErrDraftCommitted
	}
	d.discountPercent = percent
	return nil
}

func (d *Draft) markCommitted(saleID string) {
	d.state = DraftCommitted
	d.saleID = saleID
}
