package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"custodia/native/arbiter"
	nativecommon "custodia/native/common"
	"custodia/native/escrow"
)

const (
	codeInvalidParams  = -32021
	codeNotFound       = -32022
	codeForbidden      = -32023
	codeConflict       = -32024
	codeInternal       = -32025
	codeUnavailable    = -32026
	codeMethodNotFound = -32601
)

type escrowCreateParams struct {
	Creator  string `json:"creator"`
	Buyer    string `json:"buyer"`
	Seller   string `json:"seller"`
	Arbiter  string `json:"arbiter"`
	Amount   string `json:"amount"`
	Duration *int64 `json:"duration,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

type escrowActorParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
}

type escrowDisputeParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Reason string `json:"reason"`
}

type escrowResolveParams struct {
	ID       uint64 `json:"id"`
	Caller   string `json:"caller"`
	BuyerBps uint32 `json:"buyerBps"`
}

type escrowIDParams struct {
	ID uint64 `json:"id"`
}

type escrowJournalParams struct {
	ID       uint64 `json:"id"`
	Sequence uint64 `json:"sequence"`
}

type arbiterRegisterParams struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	FeeBps  uint32 `json:"feeBps"`
}

type arbiterGetParams struct {
	Address string `json:"address"`
}

type escrowCreateResult struct {
	ID uint64 `json:"id"`
}

type escrowJSON struct {
	ID              uint64  `json:"id"`
	Creator         string  `json:"creator"`
	Buyer           string  `json:"buyer"`
	Seller          string  `json:"seller"`
	Arbiter         string  `json:"arbiter"`
	Amount          string  `json:"amount"`
	FundedAmount    string  `json:"fundedAmount"`
	Status          string  `json:"status"`
	CreatedAt       int64   `json:"createdAt"`
	ExpiresAt       *int64  `json:"expiresAt,omitempty"`
	BuyerConfirmed  bool    `json:"buyerConfirmed"`
	SellerConfirmed bool    `json:"sellerConfirmed"`
	DisputeReason   *string `json:"disputeReason,omitempty"`
	LastActivity    int64   `json:"lastActivity"`
	Metadata        string  `json:"metadata,omitempty"`
}

type depositJSON struct {
	EscrowID    uint64 `json:"escrowId"`
	Depositor   string `json:"depositor"`
	Amount      string `json:"amount"`
	DepositedAt int64  `json:"depositedAt"`
}

type journalJSON struct {
	EscrowID  uint64 `json:"escrowId"`
	Sequence  uint64 `json:"sequence"`
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Timestamp int64  `json:"timestamp"`
	Details   string `json:"details,omitempty"`
}

type statsJSON struct {
	EscrowsCreated uint64 `json:"escrowsCreated"`
	TotalVolume    string `json:"totalVolume"`
}

type arbiterJSON struct {
	Address          string `json:"address"`
	Name             string `json:"name"`
	FeeBps           uint32 `json:"feeBps"`
	Active           bool   `json:"active"`
	DisputesResolved uint64 `json:"disputesResolved"`
	BuyerWins        uint64 `json:"buyerWins"`
	SellerWins       uint64 `json:"sellerWins"`
	ReputationScore  uint64 `json:"reputationScore"`
	LastActivity     int64  `json:"lastActivity"`
}

func parseHexAddress(s string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("invalid address: %w", err)
	}
	if len(raw) != 20 {
		return out, fmt.Errorf("address must be 20 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func parsePositiveBigInt(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("amount must be a decimal integer")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func formatEscrowJSON(e *escrow.Escrow) escrowJSON {
	out := escrowJSON{
		ID:              e.ID,
		Creator:         hex.EncodeToString(e.Creator[:]),
		Buyer:           hex.EncodeToString(e.Buyer[:]),
		Seller:          hex.EncodeToString(e.Seller[:]),
		Arbiter:         hex.EncodeToString(e.Arbiter[:]),
		Amount:          e.Amount.String(),
		FundedAmount:    e.FundedAmount.String(),
		Status:          e.Status.String(),
		CreatedAt:       e.CreatedAt,
		ExpiresAt:       e.ExpiresAt,
		BuyerConfirmed:  e.BuyerConfirmed,
		SellerConfirmed: e.SellerConfirmed,
		DisputeReason:   e.DisputeReason,
		LastActivity:    e.LastActivity,
	}
	if len(e.Metadata) > 0 {
		out.Metadata = string(e.Metadata)
	}
	return out
}

func (s *Server) handleEscrowCreate(w http.ResponseWriter, req *RPCRequest) {
	var params escrowCreateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	creator, err := parseHexAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	buyer, err := parseHexAddress(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	seller, err := parseHexAddress(params.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	arb, err := parseHexAddress(params.Arbiter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parsePositiveBigInt(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	created, err := s.engine.Create(creator, buyer, seller, arb, amount, params.Duration, []byte(params.Metadata))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, escrowCreateResult{ID: created.ID})
}

func (s *Server) handleEscrowFund(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowTransition(w, req, s.engine.Fund)
}

func (s *Server) handleEscrowConfirm(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowTransition(w, req, s.engine.Confirm)
}

func (s *Server) handleEscrowRefund(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowTransition(w, req, s.engine.Refund)
}

func (s *Server) handleEscrowTransition(w http.ResponseWriter, req *RPCRequest, fn func(uint64, [20]byte) error) {
	var params escrowActorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseHexAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := fn(params.ID, caller); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleEscrowDispute(w http.ResponseWriter, req *RPCRequest) {
	var params escrowDisputeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseHexAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.Dispute(params.ID, caller, params.Reason); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleEscrowResolve(w http.ResponseWriter, req *RPCRequest) {
	var params escrowResolveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseHexAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.Resolve(params.ID, caller, params.BuyerBps); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleEscrowGet(w http.ResponseWriter, req *RPCRequest) {
	var params escrowIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	esc, err := s.engine.Get(params.ID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatEscrowJSON(esc))
}

func (s *Server) handleEscrowGetDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params escrowIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	deposit, err := s.engine.DepositOf(params.ID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, depositJSON{
		EscrowID:    deposit.EscrowID,
		Depositor:   hex.EncodeToString(deposit.Depositor[:]),
		Amount:      deposit.Amount.String(),
		DepositedAt: deposit.DepositedAt,
	})
}

func (s *Server) handleEscrowGetJournal(w http.ResponseWriter, req *RPCRequest) {
	var params escrowJournalParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.JournalRecordAt(params.ID, params.Sequence)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, journalJSON{
		EscrowID:  record.EscrowID,
		Sequence:  record.Sequence,
		Action:    record.Action,
		Actor:     hex.EncodeToString(record.Actor[:]),
		Timestamp: record.Timestamp,
		Details:   string(record.Details),
	})
}

func (s *Server) handleEscrowStats(w http.ResponseWriter, req *RPCRequest) {
	stats, err := s.engine.StatsSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, statsJSON{
		EscrowsCreated: stats.EscrowsCreated,
		TotalVolume:    stats.TotalVolume.String(),
	})
}

func (s *Server) handleArbiterRegister(w http.ResponseWriter, req *RPCRequest) {
	var params arbiterRegisterParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := parseHexAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.directory.Register(addr, params.Name, params.FeeBps)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatArbiterJSON(record))
}

func (s *Server) handleArbiterGet(w http.ResponseWriter, req *RPCRequest) {
	var params arbiterGetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := parseHexAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	record, ok, err := s.directory.Lookup(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeEngineError(w, req.ID, arbiter.ErrNotFound)
		return
	}
	writeResult(w, req.ID, formatArbiterJSON(record))
}

func formatArbiterJSON(a *arbiter.Arbiter) arbiterJSON {
	return arbiterJSON{
		Address:          hex.EncodeToString(a.Address[:]),
		Name:             a.Name,
		FeeBps:           a.FeeBps,
		Active:           a.Active,
		DisputesResolved: a.DisputesResolved,
		BuyerWins:        a.BuyerWins,
		SellerWins:       a.SellerWins,
		ReputationScore:  a.ReputationScore,
		LastActivity:     a.LastActivity,
	}
}

// writeEngineError maps engine sentinels onto JSON-RPC error codes so clients
// can tell retryable conditions from permanent ones.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	if err == nil {
		return
	}
	status := http.StatusInternalServerError
	code := codeInternal
	message := "internal_error"
	switch {
	case errors.Is(err, escrow.ErrNotFound) || errors.Is(err, escrow.ErrArbiterNotFound) ||
		errors.Is(err, escrow.ErrDepositNotFound) || errors.Is(err, arbiter.ErrNotFound):
		status = http.StatusNotFound
		code = codeNotFound
		message = "not_found"
	case errors.Is(err, escrow.ErrUnauthorized):
		status = http.StatusForbidden
		code = codeForbidden
		message = "forbidden"
	case errors.Is(err, escrow.ErrInvalidParams) || errors.Is(err, escrow.ErrInvalidPercentage) ||
		errors.Is(err, arbiter.ErrInvalidFeeRate) || errors.Is(err, arbiter.ErrInvalidRecord):
		status = http.StatusBadRequest
		code = codeInvalidParams
		message = "invalid_params"
	case errors.Is(err, escrow.ErrInvalidState) || errors.Is(err, escrow.ErrAlreadyFunded) ||
		errors.Is(err, escrow.ErrExpired) || errors.Is(err, escrow.ErrInsufficientFunds) ||
		errors.Is(err, escrow.ErrTransferFailed) || errors.Is(err, arbiter.ErrAlreadyRegistered):
		status = http.StatusConflict
		code = codeConflict
		message = "conflict"
	case errors.Is(err, nativecommon.ErrModulePaused) || errors.Is(err, nativecommon.ErrEmergencyHalt):
		status = http.StatusServiceUnavailable
		code = codeUnavailable
		message = "unavailable"
	}
	writeError(w, status, id, code, message, err.Error())
}
