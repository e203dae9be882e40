package inventory

import (
	"log/slog"
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/store"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementIn represents an inbound movement.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound movement.
	MovementOut MovementType = "OUT"
	// MovementAdjust indicates a manual quantity edit.
	MovementAdjust MovementType = "ADJUST"
)

// Subject distinguishes raw materials from finished goods on the stock card.
type Subject string

const (
	SubjectMaterial Subject = "material"
	SubjectProduct  Subject = "product"
)

// Movement is one stock card entry. Qty is signed: the change actually applied.
type Movement struct {
	ID         string       `json:"id"`
	Subject    Subject      `json:"subject"`
	SubjectID  string       `json:"subjectId"`
	Type       MovementType `json:"type"`
	Qty        float64      `json:"qty"`
	BalanceQty float64      `json:"balanceQty"`
	Note       string       `json:"note,omitempty"`
	PostedAt   time.Time    `json:"postedAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Key implements store.Record.
func (m Movement) Key() string { return m.ID }

// Touched implements store.Record.
func (m Movement) Touched(at time.Time) Movement {
	m.UpdatedAt = at
	return m
}

// Ledger records every quantity change applied to materials and products.
type Ledger struct {
	movements *store.Collection[Movement]
	rt        shared.Runtime
}

// NewLedger builds a Ledger over movements.
func NewLedger(movements *store.Collection[Movement], rt shared.Runtime) *Ledger {
	return &Ledger{movements: movements, rt: rt.WithDefaults()}
}

// Post appends a movement. Zero-quantity movements are not recorded.
func (l *Ledger) Post(subject Subject, subjectID string, typ MovementType, qty, balance float64, note string) {
	if l == nil || qty == 0 {
		return
	}
	now := l.rt.Clock.Now()
	m := Movement{
		ID:         l.rt.IDs.NewID(),
		Subject:    subject,
		SubjectID:  subjectID,
		Type:       typ,
		Qty:        qty,
		BalanceQty: balance,
		Note:       note,
		PostedAt:   now,
		UpdatedAt:  now,
	}
	if err := l.movements.Add(m); err != nil {
		l.rt.Logger.Error("post stock movement", slog.String("subject", string(subject)), slog.String("id", subjectID), slog.Any("error", err))
	}
}

// StockCard lists the movements of one subject in posting order.
func (l *Ledger) StockCard(subject Subject, subjectID string) []Movement {
	var out []Movement
	for _, m := range l.movements.List() {
		if m.Subject == subject && m.SubjectID == subjectID {
			out = append(out, m)
		}
	}
	return out
}
