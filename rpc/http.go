package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodia/native/arbiter"
	"custodia/native/escrow"
)

const jsonRPCVersion = "2.0"

// Server exposes the escrow engine and arbiter directory over JSON-RPC.
type Server struct {
	engine    *escrow.Engine
	directory *arbiter.Directory
	log       *slog.Logger
}

// NewServer constructs an RPC server bound to the supplied engine and
// directory. A nil logger falls back to slog's default.
func NewServer(engine *escrow.Engine, directory *arbiter.Directory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, directory: directory, log: logger}
}

// Router builds the HTTP handler: JSON-RPC on POST /rpc, health and metrics
// alongside.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rpc", s.handleRPC)
	return r
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	s.log.Debug("rpc request", "method", req.Method, "id", req.ID)
	switch req.Method {
	case "escrow_create":
		s.handleEscrowCreate(w, &req)
	case "escrow_fund":
		s.handleEscrowFund(w, &req)
	case "escrow_confirm":
		s.handleEscrowConfirm(w, &req)
	case "escrow_dispute":
		s.handleEscrowDispute(w, &req)
	case "escrow_resolve":
		s.handleEscrowResolve(w, &req)
	case "escrow_refund":
		s.handleEscrowRefund(w, &req)
	case "escrow_get":
		s.handleEscrowGet(w, &req)
	case "escrow_getDeposit":
		s.handleEscrowGetDeposit(w, &req)
	case "escrow_getJournal":
		s.handleEscrowGetJournal(w, &req)
	case "escrow_stats":
		s.handleEscrowStats(w, &req)
	case "arbiter_register":
		s.handleArbiterRegister(w, &req)
	case "arbiter_get":
		s.handleArbiterGet(w, &req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method_not_found", req.Method)
	}
}
