package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"custodia/core/events"
	"custodia/core/types"
	"custodia/native/arbiter"
	nativecommon "custodia/native/common"
	"custodia/native/fees"
)

var (
	errNilState     = errors.New("escrow engine: state not configured")
	errNilDirectory = errors.New("escrow engine: arbiter directory not configured")
	errNilRecipient = errors.New("escrow engine: fee recipient not configured")
	errNilVault     = errors.New("escrow engine: vault not configured")
)

const moduleName = "escrow"

const (
	minDisputeReasonLen = 10
	maxDisputeReasonLen = 512
	maxMetadataLen      = 1024

	// tieBreakBps is the threshold above which a dispute split counts as a
	// buyer win. A split of exactly 50.00% credits the seller; this is the
	// defined tie-break, preserved deliberately.
	tieBreakBps uint32 = 5_000
)

// Defaults applied until the node configuration overrides them.
var (
	defaultMinAmount         = big.NewInt(100)
	defaultMaxDuration int64 = 31_536_000
)

type engineState interface {
	EscrowPut(*Escrow) error
	EscrowGet(id uint64) (*Escrow, bool)
	NextEscrowID() (uint64, error)
	DepositPut(*Deposit) error
	DepositGet(id uint64) (*Deposit, bool)
	ParticipantPut(id uint64, addr [20]byte, role ParticipantRole) error
	ParticipantRoleGet(id uint64, addr [20]byte) (ParticipantRole, bool)
	JournalAppend(*JournalRecord) (uint64, error)
	JournalGet(id uint64, sequence uint64) (*JournalRecord, bool)
	JournalLen(id uint64) (uint64, error)
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, account *types.Account) error
	StatsAddCreated() error
	StatsAddVolume(amount *big.Int) error
	StatsGet() (*Stats, error)
}

type arbiterDirectory interface {
	Lookup(addr [20]byte) (*arbiter.Arbiter, bool, error)
	RecordDisputeOutcome(addr [20]byte, buyerWon bool) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine is the escrow state machine. It validates preconditions, mutates the
// escrow ledger, moves value through the custodial vault account and appends
// one journal record per successful operation. All operations are atomic from
// the caller's perspective: any failed precondition or declined transfer
// surfaces before a record is written.
type Engine struct {
	state          engineState
	directory      arbiterDirectory
	emitter        events.Emitter
	pauses         nativecommon.PauseView
	emergency      nativecommon.EmergencyView
	vault          [20]byte
	feeRecipient   [20]byte
	protocolFeeBps uint32
	minAmount      *big.Int
	maxDuration    int64
	nowFn          func() int64
}

// NewEngine creates an escrow engine with a no-op emitter and default limits.
// Callers wire the state backend, arbiter directory, vault and fee recipient
// before use.
func NewEngine() *Engine {
	return &Engine{
		emitter:     events.NoopEmitter{},
		minAmount:   new(big.Int).Set(defaultMinAmount),
		maxDuration: defaultMaxDuration,
		nowFn:       func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDirectory configures the arbiter directory consulted at creation and
// dispute-resolution time.
func (e *Engine) SetDirectory(dir arbiterDirectory) { e.directory = dir }

// SetVault configures the engine's own custodial account address. Funded value
// is held here until release.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetFeeRecipient configures the address that receives the protocol fee.
func (e *Engine) SetFeeRecipient(addr [20]byte) { e.feeRecipient = addr }

// SetProtocolFeeBps configures the protocol fee rate in basis points.
func (e *Engine) SetProtocolFeeBps(bps uint32) { e.protocolFeeBps = bps }

// SetLimits overrides the creation amount floor and duration cap. A nil
// minimum or non-positive cap restores the default.
func (e *Engine) SetLimits(minAmount *big.Int, maxDuration int64) {
	if minAmount != nil && minAmount.Sign() > 0 {
		e.minAmount = new(big.Int).Set(minAmount)
	} else {
		e.minAmount = new(big.Int).Set(defaultMinAmount)
	}
	if maxDuration > 0 {
		e.maxDuration = maxDuration
	} else {
		e.maxDuration = defaultMaxDuration
	}
}

// SetPauses configures the module pause switches consulted before every
// operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmergency configures the system-wide emergency switch consulted at
// creation time.
func (e *Engine) SetEmergency(v nativecommon.EmergencyView) {
	if e == nil {
		return
	}
	e.emergency = v
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the logical clock used by the engine. The host ledger
// advances this clock between operations; the engine only reads it.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func (e *Engine) loadEscrow(id uint64) (*Escrow, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	esc, ok := e.state.EscrowGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return esc, nil
}

func (e *Engine) storeEscrow(esc *Escrow) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.EscrowPut(esc)
}

func (e *Engine) appendJournal(id uint64, action string, actor [20]byte, details []byte) error {
	record := &JournalRecord{
		EscrowID:  id,
		Action:    action,
		Actor:     actor,
		Timestamp: e.now(),
		Details:   details,
	}
	_, err := e.state.JournalAppend(record)
	return err
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return types.NewAccount()
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

// transferValue moves amount between two ledger accounts. A zero amount or
// identical endpoints leave both balances untouched; a shortfall on the source
// account declines the transfer.
func (e *Engine) transferValue(from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("%w: negative amount", ErrTransferFailed)
	}
	fromAcc, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	if fromAcc.Balance.Cmp(amt) < 0 {
		return fmt.Errorf("%w: insufficient balance", ErrTransferFailed)
	}
	// A self-transfer stops here: debiting and crediting the same address
	// through two independent reads would apply the credit twice.
	if from == to {
		return nil
	}
	toAcc, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	toAcc = ensureAccount(toAcc)
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amt)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amt)
	if err := e.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to, toAcc)
}

func (e *Engine) ensureConfigured() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.directory == nil {
		return errNilDirectory
	}
	if e.vault == ([20]byte{}) {
		return errNilVault
	}
	if e.feeRecipient == ([20]byte{}) {
		return errNilRecipient
	}
	return nil
}

func (e *Engine) lookupActiveArbiter(addr [20]byte) (*arbiter.Arbiter, error) {
	record, ok, err := e.directory.Lookup(addr)
	if err != nil {
		return nil, err
	}
	if !ok || !record.Active {
		return nil, ErrArbiterNotFound
	}
	return record, nil
}

// Create validates the participants and limits, allocates the next escrow
// identifier and persists a new record in status created together with the
// three participant role entries and the first journal record.
func (e *Engine) Create(creator, buyer, seller, arb [20]byte, amount *big.Int, duration *int64, metadata []byte) (*Escrow, error) {
	if err := e.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := nativecommon.GuardEmergency(e.emergency); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidParams)
	}
	if amount.Cmp(e.minAmount) < 0 {
		return nil, fmt.Errorf("%w: amount below minimum %s", ErrInvalidParams, e.minAmount)
	}
	for _, addr := range [][20]byte{buyer, seller, arb} {
		if addr == e.vault {
			return nil, fmt.Errorf("%w: participant matches custodial vault", ErrInvalidParams)
		}
	}
	if buyer == seller || buyer == arb || seller == arb {
		return nil, fmt.Errorf("%w: participants must be distinct", ErrInvalidParams)
	}
	if len(metadata) > maxMetadataLen {
		return nil, fmt.Errorf("%w: metadata exceeds %d bytes", ErrInvalidParams, maxMetadataLen)
	}
	if duration != nil {
		if *duration <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidParams)
		}
		if *duration > e.maxDuration {
			return nil, fmt.Errorf("%w: duration exceeds cap %d", ErrInvalidParams, e.maxDuration)
		}
	}
	if _, err := e.lookupActiveArbiter(arb); err != nil {
		return nil, err
	}
	now := e.now()
	id, err := e.state.NextEscrowID()
	if err != nil {
		return nil, err
	}
	esc := &Escrow{
		ID:           id,
		Creator:      creator,
		Buyer:        buyer,
		Seller:       seller,
		Arbiter:      arb,
		Amount:       cloneBigInt(amount),
		FundedAmount: big.NewInt(0),
		Status:       StatusCreated,
		CreatedAt:    now,
		LastActivity: now,
	}
	if duration != nil {
		expires := now + *duration
		esc.ExpiresAt = &expires
	}
	if len(metadata) > 0 {
		esc.Metadata = append([]byte(nil), metadata...)
	}
	if err := e.storeEscrow(esc); err != nil {
		return nil, err
	}
	if err := e.state.ParticipantPut(id, buyer, RoleBuyer); err != nil {
		return nil, err
	}
	if err := e.state.ParticipantPut(id, seller, RoleSeller); err != nil {
		return nil, err
	}
	if err := e.state.ParticipantPut(id, arb, RoleArbiter); err != nil {
		return nil, err
	}
	if err := e.appendJournal(id, ActionCreated, creator, esc.Metadata); err != nil {
		return nil, err
	}
	if err := e.state.StatsAddCreated(); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(esc))
	return esc.Clone(), nil
}

// Fund moves the escrow amount from the caller into the custodial vault,
// writes the deposit record and marks the escrow funded. Either counterparty
// may fund; funding happens exactly once.
func (e *Engine) Fund(id uint64, caller [20]byte) error {
	if err := e.ensureConfigured(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Status == StatusFunded {
		return ErrAlreadyFunded
	}
	if esc.Status != StatusCreated {
		return fmt.Errorf("%w: cannot fund in status %s", ErrInvalidState, esc.Status)
	}
	role, ok := e.state.ParticipantRoleGet(id, caller)
	if !ok || (role != RoleBuyer && role != RoleSeller) {
		return fmt.Errorf("%w: funding requires buyer or seller", ErrUnauthorized)
	}
	if esc.FundedAmount != nil && esc.FundedAmount.Sign() != 0 {
		return ErrAlreadyFunded
	}
	now := e.now()
	if esc.Expired(now) {
		return ErrExpired
	}
	if err := e.transferValue(caller, e.vault, esc.Amount); err != nil {
		return err
	}
	deposit := &Deposit{
		EscrowID:    id,
		Depositor:   caller,
		Amount:      cloneBigInt(esc.Amount),
		DepositedAt: now,
	}
	if err := e.state.DepositPut(deposit); err != nil {
		return err
	}
	esc.Status = StatusFunded
	esc.FundedAmount = cloneBigInt(esc.Amount)
	esc.LastActivity = now
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendJournal(id, ActionFunded, caller, nil); err != nil {
		return err
	}
	if err := e.state.StatsAddVolume(esc.Amount); err != nil {
		return err
	}
	e.emit(NewFundedEvent(esc))
	return nil
}

// Confirm records the caller's confirmation. Re-confirming as the same party
// leaves the flag untouched but still journals the action. The crossing from
// one confirmation to both triggers fund release exactly once, completing the
// escrow before Confirm returns.
func (e *Engine) Confirm(id uint64, caller [20]byte) error {
	if err := e.ensureConfigured(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Status != StatusFunded {
		return fmt.Errorf("%w: cannot confirm in status %s", ErrInvalidState, esc.Status)
	}
	role, ok := e.state.ParticipantRoleGet(id, caller)
	if !ok || (role != RoleBuyer && role != RoleSeller) {
		return fmt.Errorf("%w: confirmation requires buyer or seller", ErrUnauthorized)
	}
	now := e.now()
	if esc.Expired(now) {
		return ErrExpired
	}
	buyerConfirmed := esc.BuyerConfirmed
	sellerConfirmed := esc.SellerConfirmed
	if role == RoleBuyer {
		buyerConfirmed = true
	} else {
		sellerConfirmed = true
	}
	if buyerConfirmed && sellerConfirmed {
		if err := e.releaseFunds(esc); err != nil {
			return err
		}
		esc.BuyerConfirmed = buyerConfirmed
		esc.SellerConfirmed = sellerConfirmed
		esc.Status = StatusCompleted
		esc.LastActivity = now
		if err := e.storeEscrow(esc); err != nil {
			return err
		}
		if err := e.appendJournal(id, ActionConfirmed, caller, nil); err != nil {
			return err
		}
		if err := e.appendJournal(id, ActionCompleted, caller, nil); err != nil {
			return err
		}
		e.emit(NewConfirmedEvent(esc, role))
		e.emit(NewCompletedEvent(esc))
		return nil
	}
	esc.BuyerConfirmed = buyerConfirmed
	esc.SellerConfirmed = sellerConfirmed
	esc.LastActivity = now
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendJournal(id, ActionConfirmed, caller, nil); err != nil {
		return err
	}
	e.emit(NewConfirmedEvent(esc, role))
	return nil
}

type payout struct {
	to     [20]byte
	amount *big.Int
}

// distribute executes the supplied payouts from the vault in order, skipping
// zero amounts. The vault balance is checked against the total up front so no
// transfer can fail partway through.
func (e *Engine) distribute(payouts []payout) error {
	total := big.NewInt(0)
	for _, p := range payouts {
		if p.amount == nil {
			continue
		}
		if p.amount.Sign() < 0 {
			return fmt.Errorf("%w: negative payout", ErrTransferFailed)
		}
		total.Add(total, p.amount)
	}
	if total.Sign() == 0 {
		return nil
	}
	vaultAcc, err := e.state.GetAccount(e.vault)
	if err != nil {
		return err
	}
	vaultAcc = ensureAccount(vaultAcc)
	if vaultAcc.Balance.Cmp(total) < 0 {
		return fmt.Errorf("%w: vault balance below payout total", ErrTransferFailed)
	}
	for _, p := range payouts {
		if p.amount == nil || p.amount.Sign() == 0 {
			continue
		}
		if err := e.transferValue(e.vault, p.to, p.amount); err != nil {
			return err
		}
	}
	return nil
}

// releaseFunds pays out a completed escrow: protocol fee, arbiter fee, then
// the remainder to the seller. Fees can never exceed the funded principal.
func (e *Engine) releaseFunds(esc *Escrow) error {
	// Active status gates creation only; the fee rate applies as long as
	// the registry record exists.
	arb, ok, err := e.directory.Lookup(esc.Arbiter)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArbiterNotFound
	}
	funded := cloneBigInt(esc.FundedAmount)
	protocolFee := fees.ProtocolFee(funded, e.protocolFeeBps)
	arbiterFee := fees.ArbiterFee(funded, arb.FeeBps)
	feeSum := new(big.Int).Add(protocolFee, arbiterFee)
	if feeSum.Cmp(funded) > 0 {
		return ErrInsufficientFunds
	}
	sellerAmount := new(big.Int).Sub(funded, feeSum)
	return e.distribute([]payout{
		{to: e.feeRecipient, amount: protocolFee},
		{to: esc.Arbiter, amount: arbiterFee},
		{to: esc.Seller, amount: sellerAmount},
	})
}

// Dispute moves a funded escrow into the disputed state, recording the
// supplied reason. Only the buyer or seller may file, and the reason must be
// substantial enough to adjudicate while staying within storage bounds.
func (e *Engine) Dispute(id uint64, caller [20]byte, reason string) error {
	if err := e.ensureConfigured(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Status != StatusFunded {
		return fmt.Errorf("%w: cannot dispute in status %s", ErrInvalidState, esc.Status)
	}
	role, ok := e.state.ParticipantRoleGet(id, caller)
	if !ok || (role != RoleBuyer && role != RoleSeller) {
		return fmt.Errorf("%w: dispute requires buyer or seller", ErrUnauthorized)
	}
	now := e.now()
	if esc.Expired(now) {
		return ErrExpired
	}
	trimmed := strings.TrimSpace(reason)
	if len(trimmed) < minDisputeReasonLen || len(trimmed) > maxDisputeReasonLen {
		return fmt.Errorf("%w: dispute reason must be %d-%d bytes", ErrInvalidParams, minDisputeReasonLen, maxDisputeReasonLen)
	}
	esc.Status = StatusDisputed
	esc.DisputeReason = &trimmed
	esc.LastActivity = now
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendJournal(id, ActionDisputed, caller, []byte(trimmed)); err != nil {
		return err
	}
	e.emit(NewDisputedEvent(esc))
	return nil
}

// Resolve settles a disputed escrow according to the arbiter's split. The
// buyer receives floor(remaining * buyerBps / 10000) of the post-fee
// remainder, the seller the rest, so the distribution always sums exactly to
// the funded amount. The arbiter's outcome counters are updated after the
// distribution succeeds.
func (e *Engine) Resolve(id uint64, caller [20]byte, buyerBps uint32) error {
	if err := e.ensureConfigured(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Status != StatusDisputed {
		return fmt.Errorf("%w: cannot resolve in status %s", ErrInvalidState, esc.Status)
	}
	if caller != esc.Arbiter {
		return fmt.Errorf("%w: resolution requires the designated arbiter", ErrUnauthorized)
	}
	if buyerBps > fees.MaxBps {
		return ErrInvalidPercentage
	}
	record, ok, err := e.directory.Lookup(esc.Arbiter)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArbiterNotFound
	}
	funded := cloneBigInt(esc.FundedAmount)
	protocolFee := fees.ProtocolFee(funded, e.protocolFeeBps)
	arbiterFee := fees.ArbiterFee(funded, record.FeeBps)
	feeSum := new(big.Int).Add(protocolFee, arbiterFee)
	if feeSum.Cmp(funded) > 0 {
		return ErrInsufficientFunds
	}
	remaining := new(big.Int).Sub(funded, feeSum)
	buyerAmount, sellerAmount := fees.SplitRemaining(remaining, buyerBps)
	if err := e.distribute([]payout{
		{to: e.feeRecipient, amount: protocolFee},
		{to: esc.Arbiter, amount: arbiterFee},
		{to: esc.Buyer, amount: buyerAmount},
		{to: esc.Seller, amount: sellerAmount},
	}); err != nil {
		return err
	}
	if err := e.directory.RecordDisputeOutcome(esc.Arbiter, buyerBps > tieBreakBps); err != nil {
		return err
	}
	now := e.now()
	esc.Status = StatusResolved
	esc.LastActivity = now
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	details := []byte(fmt.Sprintf("buyer_bps=%d buyer_amount=%s seller_amount=%s", buyerBps, buyerAmount, sellerAmount))
	if err := e.appendJournal(id, ActionResolved, caller, details); err != nil {
		return err
	}
	e.emit(NewResolvedEvent(esc, buyerBps))
	return nil
}

// Refund returns custodied value to the recorded depositor. Anyone may trigger
// a refund once the escrow has passed its expiry; before funding, only the
// creator may cancel. Disputed and terminal escrows cannot be refunded here.
func (e *Engine) Refund(id uint64, caller [20]byte) error {
	if err := e.ensureConfigured(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Status != StatusCreated && esc.Status != StatusFunded {
		return fmt.Errorf("%w: cannot refund in status %s", ErrInvalidState, esc.Status)
	}
	now := e.now()
	if !esc.Expired(now) {
		if esc.Status != StatusCreated {
			return fmt.Errorf("%w: funded escrow refundable only after expiry", ErrInvalidState)
		}
		if caller != esc.Creator {
			return fmt.Errorf("%w: cancellation requires the creator", ErrUnauthorized)
		}
	}
	if esc.FundedAmount != nil && esc.FundedAmount.Sign() > 0 {
		deposit, ok := e.state.DepositGet(id)
		if !ok {
			return ErrDepositNotFound
		}
		if err := e.transferValue(e.vault, deposit.Depositor, deposit.Amount); err != nil {
			return err
		}
	}
	esc.Status = StatusRefunded
	esc.LastActivity = now
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendJournal(id, ActionRefunded, caller, nil); err != nil {
		return err
	}
	e.emit(NewRefundedEvent(esc))
	return nil
}

// Get returns a copy of the escrow record.
func (e *Engine) Get(id uint64) (*Escrow, error) {
	return e.loadEscrow(id)
}

// DepositOf returns the deposit record written at funding time.
func (e *Engine) DepositOf(id uint64) (*Deposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	deposit, ok := e.state.DepositGet(id)
	if !ok {
		return nil, ErrDepositNotFound
	}
	return deposit, nil
}

// JournalRecordAt returns the journal record at the given per-escrow sequence.
func (e *Engine) JournalRecordAt(id uint64, sequence uint64) (*JournalRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok := e.state.JournalGet(id, sequence)
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// JournalLength returns the number of journal records appended for an escrow.
func (e *Engine) JournalLength(id uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.JournalLen(id)
}

// StatsSnapshot returns the aggregate counters.
func (e *Engine) StatsSnapshot() (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.StatsGet()
}
