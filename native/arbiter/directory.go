package arbiter

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// storage abstracts the subset of state manager functionality required by the
// directory.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var arbiterRecordPrefix = []byte("arbiter/record/")

func arbiterKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", arbiterRecordPrefix, addr))
}

// storedArbiter is the RLP-friendly shape of an arbiter record. Timestamps are
// carried as big integers because RLP has no signed integer encoding.
type storedArbiter struct {
	Address          [20]byte
	Name             string
	FeeBps           uint32
	Active           bool
	DisputesResolved uint64
	BuyerWins        uint64
	SellerWins       uint64
	ReputationScore  uint64
	RegisteredAt     *big.Int
	LastActivity     *big.Int
}

func newStoredArbiter(a *Arbiter) *storedArbiter {
	if a == nil {
		return nil
	}
	return &storedArbiter{
		Address:          a.Address,
		Name:             strings.TrimSpace(a.Name),
		FeeBps:           a.FeeBps,
		Active:           a.Active,
		DisputesResolved: a.DisputesResolved,
		BuyerWins:        a.BuyerWins,
		SellerWins:       a.SellerWins,
		ReputationScore:  a.ReputationScore,
		RegisteredAt:     big.NewInt(a.RegisteredAt),
		LastActivity:     big.NewInt(a.LastActivity),
	}
}

func (s *storedArbiter) toArbiter() (*Arbiter, error) {
	if s == nil {
		return nil, ErrInvalidRecord
	}
	out := &Arbiter{
		Address:          s.Address,
		Name:             s.Name,
		FeeBps:           s.FeeBps,
		Active:           s.Active,
		DisputesResolved: s.DisputesResolved,
		BuyerWins:        s.BuyerWins,
		SellerWins:       s.SellerWins,
		ReputationScore:  s.ReputationScore,
	}
	if s.RegisteredAt != nil {
		out.RegisteredAt = s.RegisteredAt.Int64()
	}
	if s.LastActivity != nil {
		out.LastActivity = s.LastActivity.Int64()
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Directory persists arbiter registrations and the dispute-outcome counters
// the escrow engine maintains for them.
type Directory struct {
	store storage
	nowFn func() int64
}

// NewDirectory constructs a directory bound to the provided storage backend.
func NewDirectory(store storage) *Directory {
	return &Directory{
		store: store,
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the time source used for registration and activity
// timestamps. Primarily intended for tests.
func (d *Directory) SetNowFunc(now func() int64) {
	if d == nil {
		return
	}
	if now == nil {
		d.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	d.nowFn = now
}

func (d *Directory) now() int64 {
	if d == nil || d.nowFn == nil {
		return time.Now().Unix()
	}
	return d.nowFn()
}

func (d *Directory) put(a *Arbiter) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return d.store.KVPut(arbiterKey(a.Address), newStoredArbiter(a))
}

// Register stores a new arbiter record with zeroed counters and the active
// flag set. Duplicate registrations are rejected.
func (d *Directory) Register(addr [20]byte, name string, feeBps uint32) (*Arbiter, error) {
	if d == nil || d.store == nil {
		return nil, ErrNotFound
	}
	if _, ok, err := d.Lookup(addr); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyRegistered
	}
	now := d.now()
	record := &Arbiter{
		Address:      addr,
		Name:         strings.TrimSpace(name),
		FeeBps:       feeBps,
		Active:       true,
		RegisteredAt: now,
		LastActivity: now,
	}
	if err := d.put(record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// Lookup fetches the arbiter record for the supplied address.
func (d *Directory) Lookup(addr [20]byte) (*Arbiter, bool, error) {
	if d == nil || d.store == nil {
		return nil, false, ErrNotFound
	}
	var stored storedArbiter
	ok, err := d.store.KVGet(arbiterKey(addr), &stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record, err := stored.toArbiter()
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// SetActive toggles the active flag on an existing registration.
func (d *Directory) SetActive(addr [20]byte, active bool) error {
	record, ok, err := d.Lookup(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if record.Active == active {
		return nil
	}
	record.Active = active
	return d.put(record)
}

// SetFeeBps updates the fee rate on an existing registration.
func (d *Directory) SetFeeBps(addr [20]byte, feeBps uint32) error {
	record, ok, err := d.Lookup(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	record.FeeBps = feeBps
	return d.put(record)
}

// RecordDisputeOutcome increments the arbiter's resolution counters after a
// dispute settles and refreshes the last-activity timestamp. A buyerWon value
// of true credits the buyer-wins counter, false the seller-wins counter.
func (d *Directory) RecordDisputeOutcome(addr [20]byte, buyerWon bool) error {
	record, ok, err := d.Lookup(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	record.DisputesResolved++
	if buyerWon {
		record.BuyerWins++
	} else {
		record.SellerWins++
	}
	record.LastActivity = d.now()
	return d.put(record)
}
