package escrow

import (
	"encoding/hex"
	"strconv"

	"custodia/core/types"
)

const (
	EventTypeEscrowCreated   = "escrow.created"
	EventTypeEscrowFunded    = "escrow.funded"
	EventTypeEscrowConfirmed = "escrow.confirmed"
	EventTypeEscrowCompleted = "escrow.completed"
	EventTypeEscrowDisputed  = "escrow.disputed"
	EventTypeEscrowResolved  = "escrow.resolved"
	EventTypeEscrowRefunded  = "escrow.refunded"
)

// NewCreatedEvent returns the canonical event payload for a newly created
// escrow.
func NewCreatedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowCreated, e) }

// NewFundedEvent returns the canonical event payload emitted when an escrow is
// funded by a counterparty.
func NewFundedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowFunded, e) }

// NewConfirmedEvent returns the event payload for a single-party confirmation.
func NewConfirmedEvent(e *Escrow, role ParticipantRole) *types.Event {
	evt := newEscrowEvent(EventTypeEscrowConfirmed, e)
	evt.Attributes["role"] = role.String()
	return evt
}

// NewCompletedEvent returns the event payload emitted when both parties have
// confirmed and funds have been released.
func NewCompletedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowCompleted, e) }

// NewDisputedEvent returns the event payload emitted when an escrow is marked
// as disputed.
func NewDisputedEvent(e *Escrow) *types.Event {
	evt := newEscrowEvent(EventTypeEscrowDisputed, e)
	if e != nil && e.DisputeReason != nil {
		evt.Attributes["reason"] = *e.DisputeReason
	}
	return evt
}

// NewResolvedEvent returns the event payload emitted when a dispute is
// resolved with the arbiter's split.
func NewResolvedEvent(e *Escrow, buyerBps uint32) *types.Event {
	evt := newEscrowEvent(EventTypeEscrowResolved, e)
	evt.Attributes["buyerBps"] = strconv.FormatUint(uint64(buyerBps), 10)
	return evt
}

// NewRefundedEvent returns the event payload for a refund to the depositor.
func NewRefundedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowRefunded, e) }

func newEscrowEvent(eventType string, e *Escrow) *types.Event {
	attrs := make(map[string]string)
	if e == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(e.ID, 10)
	attrs["buyer"] = hex.EncodeToString(e.Buyer[:])
	attrs["seller"] = hex.EncodeToString(e.Seller[:])
	attrs["arbiter"] = hex.EncodeToString(e.Arbiter[:])
	if e.Amount != nil {
		attrs["amount"] = e.Amount.String()
	}
	attrs["status"] = e.Status.String()
	attrs["createdAt"] = strconv.FormatInt(e.CreatedAt, 10)
	if e.ExpiresAt != nil {
		attrs["expiresAt"] = strconv.FormatInt(*e.ExpiresAt, 10)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
