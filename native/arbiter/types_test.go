package arbiter_test

import (
	"errors"
	"strings"
	"testing"

	"custodia/native/arbiter"
)

func TestValidate(t *testing.T) {
	base := func() *arbiter.Arbiter {
		return &arbiter.Arbiter{Address: testAddr(0x01), Name: "alice", FeeBps: 200}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	var nilRecord *arbiter.Arbiter
	if err := nilRecord.Validate(); !errors.Is(err, arbiter.ErrInvalidRecord) {
		t.Fatalf("expected arbiter.ErrInvalidRecord for nil, got %v", err)
	}

	zeroAddr := base()
	zeroAddr.Address = [20]byte{}
	if err := zeroAddr.Validate(); !errors.Is(err, arbiter.ErrInvalidRecord) {
		t.Fatalf("expected arbiter.ErrInvalidRecord for zero address, got %v", err)
	}

	blank := base()
	blank.Name = "   "
	if err := blank.Validate(); !errors.Is(err, arbiter.ErrInvalidRecord) {
		t.Fatalf("expected arbiter.ErrInvalidRecord for blank name, got %v", err)
	}

	long := base()
	long.Name = strings.Repeat("x", 129)
	if err := long.Validate(); !errors.Is(err, arbiter.ErrInvalidRecord) {
		t.Fatalf("expected arbiter.ErrInvalidRecord for long name, got %v", err)
	}

	fee := base()
	fee.FeeBps = 10_001
	if err := fee.Validate(); !errors.Is(err, arbiter.ErrInvalidFeeRate) {
		t.Fatalf("expected arbiter.ErrInvalidFeeRate, got %v", err)
	}
}

func TestClone(t *testing.T) {
	record := &arbiter.Arbiter{Address: testAddr(0x01), Name: "alice", FeeBps: 200, BuyerWins: 3}
	clone := record.Clone()
	clone.BuyerWins = 9
	if record.BuyerWins != 3 {
		t.Fatalf("clone mutated original: %d", record.BuyerWins)
	}
	var nilRecord *arbiter.Arbiter
	if nilRecord.Clone() != nil {
		t.Fatalf("expected nil clone for nil record")
	}
}
