package observability

import (
	"math/big"

	"custodia/core/events"
	"custodia/core/types"
	"custodia/native/escrow"
	"custodia/observability/metrics"
)

// MetricsEmitter decorates another emitter and updates the prometheus
// collectors from escrow event traffic before forwarding.
type MetricsEmitter struct {
	next    events.Emitter
	escrows *metrics.EscrowMetrics
}

// NewMetricsEmitter wraps next with metric recording. A nil next discards
// events after counting them.
func NewMetricsEmitter(next events.Emitter) *MetricsEmitter {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &MetricsEmitter{next: next, escrows: metrics.Escrow()}
}

// Emit implements events.Emitter.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	switch evt.EventType() {
	case escrow.EventTypeEscrowCreated:
		m.escrows.ObserveCreated()
		m.escrows.ObserveTransition(escrow.ActionCreated)
	case escrow.EventTypeEscrowFunded:
		m.escrows.ObserveTransition(escrow.ActionFunded)
		m.escrows.ObserveVolume(eventAmount(evt))
	case escrow.EventTypeEscrowConfirmed:
		m.escrows.ObserveTransition(escrow.ActionConfirmed)
	case escrow.EventTypeEscrowCompleted:
		m.escrows.ObserveTransition(escrow.ActionCompleted)
	case escrow.EventTypeEscrowDisputed:
		m.escrows.ObserveTransition(escrow.ActionDisputed)
	case escrow.EventTypeEscrowResolved:
		m.escrows.ObserveTransition(escrow.ActionResolved)
		m.escrows.ObserveResolved()
	case escrow.EventTypeEscrowRefunded:
		m.escrows.ObserveTransition(escrow.ActionRefunded)
	}
	m.next.Emit(evt)
}

type eventPayload interface {
	Event() *types.Event
}

func eventAmount(evt events.Event) *big.Int {
	carrier, ok := evt.(eventPayload)
	if !ok {
		return nil
	}
	payload := carrier.Event()
	if payload == nil || payload.Attributes == nil {
		return nil
	}
	amount, ok := new(big.Int).SetString(payload.Attributes["amount"], 10)
	if !ok {
		return nil
	}
	return amount
}
