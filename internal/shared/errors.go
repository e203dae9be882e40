package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the target id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID indicates an add with an id already present.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrValidation is matched by every FieldErrors value.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock is matched by every InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrSentinelProtected indicates an attempt to delete or deactivate the walk-in customer.
	ErrSentinelProtected = errors.New("walk-in customer is protected")
	// ErrInvalidStatus indicates a status transition that is not allowed.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrDraftCommitted indicates a mutation on a draft that was already committed.
	ErrDraftCommitted = errors.New("draft already committed")
)

// FieldErrors maps an input field name to a message suitable for display next to it.
type FieldErrors map[string]string

// Add records msg for field unless the field already carries a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match field errors.
func (f FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// AsFieldErrors extracts the field map from err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// InsufficientStockError reports how many units can still be claimed for a product.
type InsufficientStockError struct {
	ProductID string
	Requested float64
	Available float64
	// Staged is the quantity already claimed by the current draft.
	Staged float64
}

func (e *InsufficientStockError) Error() string {
	if e.Staged > 0 {
		return fmt.Sprintf("can't add %s more units: only %s units available",
			formatQty(e.Requested), formatQty(e.Available))
	}
	return fmt.Sprintf("only %s units available in stock", formatQty(e.Available))
}

// Is lets errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func formatQty(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
