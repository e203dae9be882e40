package shared

import (
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Recorder receives domain events worth counting. observability.Metrics implements it.
type Recorder interface {
	ValidationFailed(entity string)
	SaleCommitted(total decimal.Decimal)
	SaleVoided()
	LowStockItems(n int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) ValidationFailed(string)       {}
func (NopRecorder) SaleCommitted(decimal.Decimal) {}
func (NopRecorder) SaleVoided()                   {}
func (NopRecorder) LowStockItems(int)             {}

// Runtime bundles the collaborators every service needs.
type Runtime struct {
	Clock     Clock
	IDs       IDGenerator
	Logger    *slog.Logger
	Validator *Validator
	Recorder  Recorder
}

// WithDefaults fills unset collaborators with production defaults.
func (r Runtime) WithDefaults() Runtime {
	if r.Clock == nil {
		r.Clock = SystemClock{}
	}
	if r.IDs == nil {
		r.IDs = UUIDGenerator{}
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.Validator == nil {
		r.Validator = NewValidator()
	}
	if r.Recorder == nil {
		r.Recorder = NopRecorder{}
	}
	return r
}

// WithLogger returns a copy of r logging through logger.
func (r Runtime) WithLogger(logger *slog.Logger) Runtime {
	r.Logger = logger
	return r
}
