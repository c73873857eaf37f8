package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"custodia/native/escrow"
)

var (
	escrowRecordPrefix      = []byte("escrow/record/")
	escrowDepositPrefix     = []byte("escrow/deposit/")
	escrowParticipantPrefix = []byte("escrow/participant/")
	escrowJournalPrefix     = []byte("escrow/journal/")
	escrowJournalSeqPrefix  = []byte("escrow/journal-seq/")
	escrowNextIDKey         = []byte("escrow/next-id")
	escrowStatsCreatedKey   = []byte("escrow/stats/created")
	escrowStatsVolumeKey    = []byte("escrow/stats/volume")
)

func appendUint64(buf []byte, v uint64) []byte {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], v)
	return append(buf, scratch[:]...)
}

func escrowKey(id uint64) []byte {
	return appendUint64(append([]byte(nil), escrowRecordPrefix...), id)
}

func depositKey(id uint64) []byte {
	return appendUint64(append([]byte(nil), escrowDepositPrefix...), id)
}

func participantKey(id uint64, addr [20]byte) []byte {
	buf := appendUint64(append([]byte(nil), escrowParticipantPrefix...), id)
	return append(buf, addr[:]...)
}

func journalKey(id uint64, sequence uint64) []byte {
	buf := appendUint64(append([]byte(nil), escrowJournalPrefix...), id)
	return appendUint64(buf, sequence)
}

func journalSeqKey(id uint64) []byte {
	return appendUint64(append([]byte(nil), escrowJournalSeqPrefix...), id)
}

// storedEscrow is the RLP shape of an escrow record. Optional fields carry an
// explicit presence flag so "no expiry" stays distinct from "expiry at zero";
// timestamps are big integers because RLP has no signed encoding.
type storedEscrow struct {
	ID               uint64
	Creator          [20]byte
	Buyer            [20]byte
	Seller           [20]byte
	Arbiter          [20]byte
	Amount           *big.Int
	FundedAmount     *big.Int
	Status           uint8
	CreatedAt        *big.Int
	HasExpiry        bool
	ExpiresAt        *big.Int
	BuyerConfirmed   bool
	SellerConfirmed  bool
	HasDisputeReason bool
	DisputeReason    string
	LastActivity     *big.Int
	Metadata         []byte
}

func newStoredEscrow(e *escrow.Escrow) *storedEscrow {
	stored := &storedEscrow{
		ID:              e.ID,
		Creator:         e.Creator,
		Buyer:           e.Buyer,
		Seller:          e.Seller,
		Arbiter:         e.Arbiter,
		Amount:          new(big.Int).Set(e.Amount),
		FundedAmount:    new(big.Int).Set(e.FundedAmount),
		Status:          uint8(e.Status),
		CreatedAt:       big.NewInt(e.CreatedAt),
		ExpiresAt:       big.NewInt(0),
		BuyerConfirmed:  e.BuyerConfirmed,
		SellerConfirmed: e.SellerConfirmed,
		LastActivity:    big.NewInt(e.LastActivity),
		Metadata:        append([]byte(nil), e.Metadata...),
	}
	if e.ExpiresAt != nil {
		stored.HasExpiry = true
		stored.ExpiresAt = big.NewInt(*e.ExpiresAt)
	}
	if e.DisputeReason != nil {
		stored.HasDisputeReason = true
		stored.DisputeReason = *e.DisputeReason
	}
	return stored
}

func (s *storedEscrow) toEscrow() (*escrow.Escrow, error) {
	if s == nil {
		return nil, fmt.Errorf("state: nil escrow record")
	}
	out := &escrow.Escrow{
		ID:              s.ID,
		Creator:         s.Creator,
		Buyer:           s.Buyer,
		Seller:          s.Seller,
		Arbiter:         s.Arbiter,
		Amount:          big.NewInt(0),
		FundedAmount:    big.NewInt(0),
		Status:          escrow.EscrowStatus(s.Status),
		BuyerConfirmed:  s.BuyerConfirmed,
		SellerConfirmed: s.SellerConfirmed,
	}
	if s.Amount != nil {
		out.Amount = new(big.Int).Set(s.Amount)
	}
	if s.FundedAmount != nil {
		out.FundedAmount = new(big.Int).Set(s.FundedAmount)
	}
	if s.CreatedAt != nil {
		out.CreatedAt = s.CreatedAt.Int64()
	}
	if s.HasExpiry && s.ExpiresAt != nil {
		expires := s.ExpiresAt.Int64()
		out.ExpiresAt = &expires
	}
	if s.HasDisputeReason {
		reason := s.DisputeReason
		out.DisputeReason = &reason
	}
	if s.LastActivity != nil {
		out.LastActivity = s.LastActivity.Int64()
	}
	if len(s.Metadata) > 0 {
		out.Metadata = append([]byte(nil), s.Metadata...)
	}
	return escrow.SanitizeEscrow(out)
}

// EscrowPut persists the escrow record after sanitising it.
func (m *Manager) EscrowPut(e *escrow.Escrow) error {
	sanitized, err := escrow.SanitizeEscrow(e)
	if err != nil {
		return err
	}
	return m.KVPut(escrowKey(sanitized.ID), newStoredEscrow(sanitized))
}

// EscrowGet loads the escrow record for the supplied identifier.
func (m *Manager) EscrowGet(id uint64) (*escrow.Escrow, bool) {
	var stored storedEscrow
	ok, err := m.KVGet(escrowKey(id), &stored)
	if err != nil || !ok {
		return nil, false
	}
	record, err := stored.toEscrow()
	if err != nil {
		return nil, false
	}
	return record, true
}

// NextEscrowID allocates the next identifier from the strictly increasing
// global counter. Identifiers start at 1 and are never reused.
func (m *Manager) NextEscrowID() (uint64, error) {
	var current uint64
	if _, err := m.KVGet(escrowNextIDKey, &current); err != nil {
		return 0, err
	}
	next := current + 1
	if err := m.KVPut(escrowNextIDKey, next); err != nil {
		return 0, err
	}
	return next, nil
}

type storedDeposit struct {
	EscrowID    uint64
	Depositor   [20]byte
	Amount      *big.Int
	DepositedAt *big.Int
}

// DepositPut writes the funding deposit record. The record is written exactly
// once per escrow; overwriting an existing deposit is rejected.
func (m *Manager) DepositPut(d *escrow.Deposit) error {
	if d == nil {
		return fmt.Errorf("state: nil deposit")
	}
	if d.Amount == nil || d.Amount.Sign() <= 0 {
		return fmt.Errorf("state: deposit amount must be positive")
	}
	var existing storedDeposit
	ok, err := m.KVGet(depositKey(d.EscrowID), &existing)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("state: deposit already recorded for escrow %d", d.EscrowID)
	}
	stored := &storedDeposit{
		EscrowID:    d.EscrowID,
		Depositor:   d.Depositor,
		Amount:      new(big.Int).Set(d.Amount),
		DepositedAt: big.NewInt(d.DepositedAt),
	}
	return m.KVPut(depositKey(d.EscrowID), stored)
}

// DepositGet loads the deposit record for an escrow.
func (m *Manager) DepositGet(id uint64) (*escrow.Deposit, bool) {
	var stored storedDeposit
	ok, err := m.KVGet(depositKey(id), &stored)
	if err != nil || !ok {
		return nil, false
	}
	out := &escrow.Deposit{
		EscrowID:  stored.EscrowID,
		Depositor: stored.Depositor,
		Amount:    big.NewInt(0),
	}
	if stored.Amount != nil {
		out.Amount = new(big.Int).Set(stored.Amount)
	}
	if stored.DepositedAt != nil {
		out.DepositedAt = stored.DepositedAt.Int64()
	}
	return out, true
}

// ParticipantPut records the role an address plays on an escrow. Entries are
// written at creation and never mutated.
func (m *Manager) ParticipantPut(id uint64, addr [20]byte, role escrow.ParticipantRole) error {
	if !role.Valid() {
		return fmt.Errorf("state: invalid participant role %d", role)
	}
	return m.KVPut(participantKey(id, addr), uint8(role))
}

// ParticipantRoleGet resolves the role for an (escrow, address) pair.
func (m *Manager) ParticipantRoleGet(id uint64, addr [20]byte) (escrow.ParticipantRole, bool) {
	var stored uint8
	ok, err := m.KVGet(participantKey(id, addr), &stored)
	if err != nil || !ok {
		return 0, false
	}
	role := escrow.ParticipantRole(stored)
	if !role.Valid() {
		return 0, false
	}
	return role, true
}

type storedJournalRecord struct {
	EscrowID  uint64
	Sequence  uint64
	Action    string
	Actor     [20]byte
	Timestamp *big.Int
	Details   []byte
}

// JournalAppend assigns the next per-escrow sequence number to the record and
// persists it. Sequences start at 1 and increase by exactly one; no value is
// ever reused or skipped, and existing records are never rewritten.
func (m *Manager) JournalAppend(record *escrow.JournalRecord) (uint64, error) {
	if record == nil {
		return 0, errors.New("state: nil journal record")
	}
	if record.Action == "" {
		return 0, errors.New("state: journal action required")
	}
	var lastSeq uint64
	if _, err := m.KVGet(journalSeqKey(record.EscrowID), &lastSeq); err != nil {
		return 0, err
	}
	sequence := lastSeq + 1
	stored := &storedJournalRecord{
		EscrowID:  record.EscrowID,
		Sequence:  sequence,
		Action:    record.Action,
		Actor:     record.Actor,
		Timestamp: big.NewInt(record.Timestamp),
		Details:   append([]byte(nil), record.Details...),
	}
	if err := m.KVPut(journalKey(record.EscrowID, sequence), stored); err != nil {
		return 0, err
	}
	if err := m.KVPut(journalSeqKey(record.EscrowID), sequence); err != nil {
		return 0, err
	}
	record.Sequence = sequence
	return sequence, nil
}

// JournalGet loads the journal record at the supplied per-escrow sequence.
func (m *Manager) JournalGet(id uint64, sequence uint64) (*escrow.JournalRecord, bool) {
	var stored storedJournalRecord
	ok, err := m.KVGet(journalKey(id, sequence), &stored)
	if err != nil || !ok {
		return nil, false
	}
	out := &escrow.JournalRecord{
		EscrowID: stored.EscrowID,
		Sequence: stored.Sequence,
		Action:   stored.Action,
		Actor:    stored.Actor,
	}
	if stored.Timestamp != nil {
		out.Timestamp = stored.Timestamp.Int64()
	}
	if len(stored.Details) > 0 {
		out.Details = append([]byte(nil), stored.Details...)
	}
	return out, true
}

// JournalLen returns the number of journal records appended for an escrow.
func (m *Manager) JournalLen(id uint64) (uint64, error) {
	var lastSeq uint64
	if _, err := m.KVGet(journalSeqKey(id), &lastSeq); err != nil {
		return 0, err
	}
	return lastSeq, nil
}

// StatsAddCreated increments the global created-escrow counter.
func (m *Manager) StatsAddCreated() error {
	var count uint64
	if _, err := m.KVGet(escrowStatsCreatedKey, &count); err != nil {
		return err
	}
	return m.KVPut(escrowStatsCreatedKey, count+1)
}

// StatsAddVolume adds the funded amount to the global volume counter.
func (m *Manager) StatsAddVolume(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: volume amount must be positive")
	}
	volume := big.NewInt(0)
	var stored big.Int
	ok, err := m.KVGet(escrowStatsVolumeKey, &stored)
	if err != nil {
		return err
	}
	if ok {
		volume.Set(&stored)
	}
	volume.Add(volume, amount)
	return m.KVPut(escrowStatsVolumeKey, volume)
}

// StatsGet returns a snapshot of the global escrow counters.
func (m *Manager) StatsGet() (*escrow.Stats, error) {
	stats := &escrow.Stats{TotalVolume: big.NewInt(0)}
	if _, err := m.KVGet(escrowStatsCreatedKey, &stats.EscrowsCreated); err != nil {
		return nil, err
	}
	var volume big.Int
	ok, err := m.KVGet(escrowStatsVolumeKey, &volume)
	if err != nil {
		return nil, err
	}
	if ok {
		stats.TotalVolume = new(big.Int).Set(&volume)
	}
	return stats, nil
}
