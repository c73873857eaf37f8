package escrow

import (
	"math/big"
	"testing"
)

func TestStatusTransitionsMetadata(t *testing.T) {
	cases := []struct {
		status   EscrowStatus
		valid    bool
		terminal bool
		label    string
	}{
		{StatusCreated, true, false, "created"},
		{StatusFunded, true, false, "funded"},
		{StatusDisputed, true, false, "disputed"},
		{StatusCompleted, true, true, "completed"},
		{StatusResolved, true, true, "resolved"},
		{StatusRefunded, true, true, "refunded"},
		{EscrowStatus(99), false, false, "unknown"},
	}
	for _, tc := range cases {
		if got := tc.status.Valid(); got != tc.valid {
			t.Fatalf("%s: Valid() = %v", tc.label, got)
		}
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Fatalf("%s: Terminal() = %v", tc.label, got)
		}
		if got := tc.status.String(); got != tc.label {
			t.Fatalf("expected label %q, got %q", tc.label, got)
		}
	}
}

func TestEscrowCloneIsDeep(t *testing.T) {
	expires := int64(1_700_000_500)
	reason := "item does not match the listing"
	original := &Escrow{
		ID:            7,
		Amount:        big.NewInt(100_000),
		FundedAmount:  big.NewInt(100_000),
		Status:        StatusDisputed,
		ExpiresAt:     &expires,
		DisputeReason: &reason,
		Metadata:      []byte("order-44"),
	}
	clone := original.Clone()
	clone.Amount.SetInt64(1)
	*clone.ExpiresAt = 0
	*clone.DisputeReason = "changed"
	clone.Metadata[0] = 'X'

	if original.Amount.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("clone mutated original amount: %s", original.Amount)
	}
	if *original.ExpiresAt != expires {
		t.Fatalf("clone mutated original expiry: %d", *original.ExpiresAt)
	}
	if *original.DisputeReason != reason {
		t.Fatalf("clone mutated original reason: %q", *original.DisputeReason)
	}
	if string(original.Metadata) != "order-44" {
		t.Fatalf("clone mutated original metadata: %q", original.Metadata)
	}
}

func TestExpired(t *testing.T) {
	expires := int64(100)
	esc := &Escrow{ExpiresAt: &expires}
	if esc.Expired(99) {
		t.Fatalf("escrow must not expire before its deadline")
	}
	if !esc.Expired(100) {
		t.Fatalf("escrow expires exactly at its deadline")
	}
	open := &Escrow{}
	if open.Expired(1 << 40) {
		t.Fatalf("escrow without expiry never expires")
	}
}

func TestSanitizeEscrow(t *testing.T) {
	base := func() *Escrow {
		return &Escrow{ID: 1, Amount: big.NewInt(500), FundedAmount: big.NewInt(0), Status: StatusCreated}
	}

	if _, err := SanitizeEscrow(nil); err == nil {
		t.Fatalf("expected error for nil escrow")
	}

	zero := base()
	zero.Amount = big.NewInt(0)
	if _, err := SanitizeEscrow(zero); err == nil {
		t.Fatalf("expected error for non-positive amount")
	}

	badStatus := base()
	badStatus.Status = EscrowStatus(42)
	if _, err := SanitizeEscrow(badStatus); err == nil {
		t.Fatalf("expected error for invalid status")
	}

	partial := base()
	partial.FundedAmount = big.NewInt(250)
	if _, err := SanitizeEscrow(partial); err == nil {
		t.Fatalf("expected error for partial funding")
	}

	funded := base()
	funded.Status = StatusFunded
	funded.FundedAmount = big.NewInt(500)
	sanitized, err := SanitizeEscrow(funded)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	sanitized.Amount.SetInt64(1)
	if funded.Amount.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("sanitize must not alias the input")
	}
}
