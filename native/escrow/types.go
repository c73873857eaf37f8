package escrow

import (
	"fmt"
	"math/big"
)

// EscrowStatus represents the lifecycle states supported by the escrow state
// machine. Transitions are monotonic: created -> funded -> {disputed ->
// resolved} | completed, and created or funded may move to refunded. The
// completed, resolved and refunded states are terminal.
type EscrowStatus uint8

const (
	StatusCreated EscrowStatus = iota
	StatusFunded
	StatusDisputed
	StatusCompleted
	StatusResolved
	StatusRefunded
)

// Valid reports whether the status value is within the supported range.
func (s EscrowStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusFunded, StatusDisputed, StatusCompleted, StatusResolved, StatusRefunded:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status permits no further transitions.
func (s EscrowStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusResolved, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s EscrowStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusFunded:
		return "funded"
	case StatusDisputed:
		return "disputed"
	case StatusCompleted:
		return "completed"
	case StatusResolved:
		return "resolved"
	case StatusRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// ParticipantRole identifies the role an address plays on a given escrow. The
// index is written three times at creation and never mutated afterwards.
type ParticipantRole uint8

const (
	RoleBuyer ParticipantRole = iota + 1
	RoleSeller
	RoleArbiter
)

// Valid reports whether the role value is within the supported range.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleArbiter:
		return true
	default:
		return false
	}
}

func (r ParticipantRole) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleSeller:
		return "seller"
	case RoleArbiter:
		return "arbiter"
	default:
		return "unknown"
	}
}

// Escrow holds the record of a single custodied transaction between a buyer
// and a seller with a designated arbiter. Identifiers are assigned from a
// strictly increasing global counter and never reused. Terminal records are
// retained for audit, never deleted.
type Escrow struct {
	ID              uint64
	Creator         [20]byte
	Buyer           [20]byte
	Seller          [20]byte
	Arbiter         [20]byte
	Amount          *big.Int
	FundedAmount    *big.Int
	Status          EscrowStatus
	CreatedAt       int64
	ExpiresAt       *int64
	BuyerConfirmed  bool
	SellerConfirmed bool
	DisputeReason   *string
	LastActivity    int64
	Metadata        []byte
}

// Clone returns a deep copy of the escrow so callers can safely mutate the
// copy without affecting the stored instance.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Amount != nil {
		clone.Amount = new(big.Int).Set(e.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	if e.FundedAmount != nil {
		clone.FundedAmount = new(big.Int).Set(e.FundedAmount)
	} else {
		clone.FundedAmount = big.NewInt(0)
	}
	if e.ExpiresAt != nil {
		expires := *e.ExpiresAt
		clone.ExpiresAt = &expires
	}
	if e.DisputeReason != nil {
		reason := *e.DisputeReason
		clone.DisputeReason = &reason
	}
	if e.Metadata != nil {
		clone.Metadata = append([]byte(nil), e.Metadata...)
	}
	return &clone
}

// Expired reports whether the escrow has passed its expiry at the supplied
// logical time. Escrows without an expiry never expire.
func (e *Escrow) Expired(now int64) bool {
	if e == nil || e.ExpiresAt == nil {
		return false
	}
	return now >= *e.ExpiresAt
}

// SanitizeEscrow validates the supplied escrow record and returns a cloned
// instance with non-nil amount fields. The funded amount must be zero or equal
// to the requested amount at every observable point. The original value is not
// mutated.
func SanitizeEscrow(e *Escrow) (*Escrow, error) {
	if e == nil {
		return nil, fmt.Errorf("nil escrow")
	}
	clone := e.Clone()
	if clone.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("escrow amount must be positive")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("invalid escrow status: %d", clone.Status)
	}
	if clone.FundedAmount.Sign() != 0 && clone.FundedAmount.Cmp(clone.Amount) != 0 {
		return nil, fmt.Errorf("funded amount must be zero or the escrow amount")
	}
	return clone, nil
}

// Deposit is the audit record written exactly once at funding time. It is
// immutable afterwards and read back only to know whom to refund.
type Deposit struct {
	EscrowID    uint64
	Depositor   [20]byte
	Amount      *big.Int
	DepositedAt int64
}

// Clone returns a deep copy of the deposit record.
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// Journal actions recorded per escrow. Exactly one record is appended per
// successful state-mutating operation, plus a completed record when a confirm
// call crosses into release.
const (
	ActionCreated   = "created"
	ActionFunded    = "funded"
	ActionConfirmed = "confirmed"
	ActionCompleted = "completed"
	ActionDisputed  = "disputed"
	ActionResolved  = "resolved"
	ActionRefunded  = "refunded"
)

// JournalRecord is one entry in the append-only, per-escrow audit log.
// Sequence numbers start at 1 and increase by exactly one per record; the
// state manager assigns them and never reuses or skips a value.
type JournalRecord struct {
	EscrowID  uint64
	Sequence  uint64
	Action    string
	Actor     [20]byte
	Timestamp int64
	Details   []byte
}

// Clone returns a deep copy of the journal record.
func (r *JournalRecord) Clone() *JournalRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Details != nil {
		clone.Details = append([]byte(nil), r.Details...)
	}
	return &clone
}

// Stats aggregates the global counters maintained alongside escrow records.
type Stats struct {
	EscrowsCreated uint64
	TotalVolume    *big.Int
}

// Clone returns a deep copy of the stats snapshot.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return &Stats{TotalVolume: big.NewInt(0)}
	}
	clone := *s
	if s.TotalVolume != nil {
		clone.TotalVolume = new(big.Int).Set(s.TotalVolume)
	} else {
		clone.TotalVolume = big.NewInt(0)
	}
	return &clone
}
