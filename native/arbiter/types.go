package arbiter

import (
	"errors"
	"strings"

	"custodia/native/fees"
)

var (
	// ErrNotFound marks lookups for unregistered arbiters.
	ErrNotFound = errors.New("arbiter: not found")
	// ErrAlreadyRegistered is returned when registering an address twice.
	ErrAlreadyRegistered = errors.New("arbiter: already registered")
	// ErrInvalidFeeRate marks fee rates outside the basis-point range.
	ErrInvalidFeeRate = errors.New("arbiter: fee rate out of range")
	// ErrInvalidRecord marks malformed arbiter payloads.
	ErrInvalidRecord = errors.New("arbiter: invalid record")
)

const maxNameLen = 128

// Arbiter describes a registered dispute adjudicator. The escrow engine reads
// the Active flag and FeeBps at validation time and writes the three outcome
// counters plus LastActivity after resolving a dispute; everything else is
// registry bookkeeping.
type Arbiter struct {
	Address          [20]byte
	Name             string
	FeeBps           uint32
	Active           bool
	DisputesResolved uint64
	BuyerWins        uint64
	SellerWins       uint64
	ReputationScore  uint64
	RegisteredAt     int64
	LastActivity     int64
}

// Validate ensures the arbiter payload is well formed.
func (a *Arbiter) Validate() error {
	if a == nil {
		return ErrInvalidRecord
	}
	if a.Address == ([20]byte{}) {
		return ErrInvalidRecord
	}
	name := strings.TrimSpace(a.Name)
	if name == "" || len(name) > maxNameLen {
		return ErrInvalidRecord
	}
	if a.FeeBps > fees.MaxBps {
		return ErrInvalidFeeRate
	}
	return nil
}

// Clone returns a copy of the arbiter record.
func (a *Arbiter) Clone() *Arbiter {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
