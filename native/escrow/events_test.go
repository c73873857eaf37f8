package escrow

import (
	"encoding/hex"
	"math/big"
	"testing"
)

func sampleEscrow() *Escrow {
	expires := int64(1_700_000_500)
	return &Escrow{
		ID:        42,
		Buyer:     newTestAddress(0x10),
		Seller:    newTestAddress(0x11),
		Arbiter:   newTestAddress(0x12),
		Amount:    big.NewInt(100_000),
		Status:    StatusFunded,
		CreatedAt: 1_700_000_000,
		ExpiresAt: &expires,
	}
}

func TestEventAttributes(t *testing.T) {
	esc := sampleEscrow()
	evt := NewFundedEvent(esc)
	if evt.Type != EventTypeEscrowFunded {
		t.Fatalf("unexpected type %q", evt.Type)
	}
	want := map[string]string{
		"id":        "42",
		"buyer":     hex.EncodeToString(esc.Buyer[:]),
		"seller":    hex.EncodeToString(esc.Seller[:]),
		"arbiter":   hex.EncodeToString(esc.Arbiter[:]),
		"amount":    "100000",
		"status":    "funded",
		"createdAt": "1700000000",
		"expiresAt": "1700000500",
	}
	if len(evt.Attributes) != len(want) {
		t.Fatalf("expected %d attributes, got %v", len(want), evt.Attributes)
	}
	for key, value := range want {
		if got := evt.Attributes[key]; got != value {
			t.Fatalf("attribute %q: expected %q, got %q", key, value, got)
		}
	}
}

func TestConfirmedEventCarriesRole(t *testing.T) {
	evt := NewConfirmedEvent(sampleEscrow(), RoleSeller)
	if evt.Type != EventTypeEscrowConfirmed {
		t.Fatalf("unexpected type %q", evt.Type)
	}
	if evt.Attributes["role"] != "seller" {
		t.Fatalf("expected seller role, got %q", evt.Attributes["role"])
	}
}

func TestDisputedEventCarriesReason(t *testing.T) {
	esc := sampleEscrow()
	reason := "goods never arrived"
	esc.Status = StatusDisputed
	esc.DisputeReason = &reason
	evt := NewDisputedEvent(esc)
	if evt.Attributes["reason"] != reason {
		t.Fatalf("expected reason %q, got %q", reason, evt.Attributes["reason"])
	}
}

func TestResolvedEventCarriesSplit(t *testing.T) {
	evt := NewResolvedEvent(sampleEscrow(), 7_000)
	if evt.Attributes["buyerBps"] != "7000" {
		t.Fatalf("expected buyerBps 7000, got %q", evt.Attributes["buyerBps"])
	}
}

func TestEventTolerateNilEscrow(t *testing.T) {
	evt := NewCreatedEvent(nil)
	if evt.Type != EventTypeEscrowCreated {
		t.Fatalf("unexpected type %q", evt.Type)
	}
	if len(evt.Attributes) != 0 {
		t.Fatalf("expected empty attributes, got %v", evt.Attributes)
	}
}
