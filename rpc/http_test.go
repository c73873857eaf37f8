package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"custodia/core/state"
	"custodia/core/types"
	"custodia/native/arbiter"
	"custodia/native/escrow"
	"custodia/storage"
)

const (
	buyerHex     = "1010101010101010101010101010101010101010"
	sellerHex    = "1111111111111111111111111111111111111111"
	arbiterHex   = "1212121212121212121212121212121212121212"
	vaultHex     = "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	recipientHex = "cccccccccccccccccccccccccccccccccccccccc"
)

func hexAddr(t *testing.T, s string) [20]byte {
	t.Helper()
	addr, err := parseHexAddress(s)
	if err != nil {
		t.Fatalf("parse address %q: %v", s, err)
	}
	return addr
}

type testRig struct {
	server  *httptest.Server
	manager *state.Manager
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	directory := arbiter.NewDirectory(manager)
	directory.SetNowFunc(func() int64 { return 1_700_000_000 })

	engine := escrow.NewEngine()
	engine.SetState(manager)
	engine.SetDirectory(directory)
	engine.SetVault(hexAddr(t, vaultHex))
	engine.SetFeeRecipient(hexAddr(t, recipientHex))
	engine.SetProtocolFeeBps(50)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })

	server := httptest.NewServer(NewServer(engine, directory, nil).Router())
	t.Cleanup(server.Close)
	return &testRig{server: server, manager: manager}
}

func (r *testRig) fund(t *testing.T, addrHex string, amount int64) {
	t.Helper()
	account := types.NewAccount()
	account.Balance = big.NewInt(amount)
	if err := r.manager.PutAccount(hexAddr(t, addrHex), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func (r *testRig) call(t *testing.T, method string, params interface{}) (*http.Response, *RPCResponse) {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":[%s]}`, method, raw)
	resp, err := http.Post(r.server.URL+"/rpc", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, &decoded
}

func (r *testRig) mustCall(t *testing.T, method string, params interface{}) *RPCResponse {
	t.Helper()
	resp, decoded := r.call(t, method, params)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s: status %d, error %+v", method, resp.StatusCode, decoded.Error)
	}
	if decoded.Error != nil {
		t.Fatalf("%s: unexpected error %+v", method, decoded.Error)
	}
	return decoded
}

func (r *testRig) registerArbiter(t *testing.T) {
	t.Helper()
	r.mustCall(t, "arbiter_register", map[string]interface{}{
		"address": arbiterHex,
		"name":    "alice",
		"feeBps":  200,
	})
}

func (r *testRig) createEscrow(t *testing.T) uint64 {
	t.Helper()
	decoded := r.mustCall(t, "escrow_create", map[string]interface{}{
		"creator": buyerHex,
		"buyer":   buyerHex,
		"seller":  sellerHex,
		"arbiter": arbiterHex,
		"amount":  "100000",
	})
	result, err := json.Marshal(decoded.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var created escrowCreateResult
	if err := json.Unmarshal(result, &created); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", decoded.Result)
	}
	return created.ID
}

func actorParams(id uint64, caller string) map[string]interface{} {
	return map[string]interface{}{"id": id, "caller": caller}
}

func decodeResult(t *testing.T, decoded *RPCResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(decoded.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func TestEscrowLifecycleOverRPC(t *testing.T) {
	rig := newTestRig(t)
	rig.registerArbiter(t)
	rig.fund(t, buyerHex, 100_000)

	id := rig.createEscrow(t)
	rig.mustCall(t, "escrow_fund", actorParams(id, buyerHex))
	rig.mustCall(t, "escrow_confirm", actorParams(id, buyerHex))
	rig.mustCall(t, "escrow_confirm", actorParams(id, sellerHex))

	var got escrowJSON
	decodeResult(t, rig.mustCall(t, "escrow_get", map[string]interface{}{"id": id}), &got)
	if got.Status != "completed" || got.FundedAmount != "100000" {
		t.Fatalf("unexpected escrow: %+v", got)
	}
	if !got.BuyerConfirmed || !got.SellerConfirmed {
		t.Fatalf("expected both confirmations: %+v", got)
	}

	var deposit depositJSON
	decodeResult(t, rig.mustCall(t, "escrow_getDeposit", map[string]interface{}{"id": id}), &deposit)
	if deposit.Depositor != buyerHex || deposit.Amount != "100000" {
		t.Fatalf("unexpected deposit: %+v", deposit)
	}

	var record journalJSON
	decodeResult(t, rig.mustCall(t, "escrow_getJournal", map[string]interface{}{"id": id, "sequence": 5}), &record)
	if record.Action != "completed" || record.Sequence != 5 {
		t.Fatalf("unexpected journal record: %+v", record)
	}

	var stats statsJSON
	decodeResult(t, rig.mustCall(t, "escrow_stats", map[string]interface{}{}), &stats)
	if stats.EscrowsCreated != 1 || stats.TotalVolume != "100000" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDisputeLifecycleOverRPC(t *testing.T) {
	rig := newTestRig(t)
	rig.registerArbiter(t)
	rig.fund(t, buyerHex, 100_000)

	id := rig.createEscrow(t)
	rig.mustCall(t, "escrow_fund", actorParams(id, buyerHex))
	rig.mustCall(t, "escrow_dispute", map[string]interface{}{
		"id":     id,
		"caller": buyerHex,
		"reason": "item does not match the listing",
	})
	resp, decoded := rig.call(t, "escrow_resolve", map[string]interface{}{
		"id":       id,
		"caller":   arbiterHex,
		"buyerBps": 10_001,
	})
	if resp.StatusCode != http.StatusBadRequest || decoded.Error == nil || decoded.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid_params for out-of-range split, got %d %+v", resp.StatusCode, decoded.Error)
	}
	rig.mustCall(t, "escrow_resolve", map[string]interface{}{
		"id":       id,
		"caller":   arbiterHex,
		"buyerBps": 7_000,
	})

	var got escrowJSON
	decodeResult(t, rig.mustCall(t, "escrow_get", map[string]interface{}{"id": id}), &got)
	if got.Status != "resolved" {
		t.Fatalf("expected resolved, got %+v", got)
	}
	if got.DisputeReason == nil || *got.DisputeReason != "item does not match the listing" {
		t.Fatalf("expected dispute reason, got %+v", got)
	}

	var record arbiterJSON
	decodeResult(t, rig.mustCall(t, "arbiter_get", map[string]interface{}{"address": arbiterHex}), &record)
	if record.DisputesResolved != 1 || record.BuyerWins != 1 {
		t.Fatalf("unexpected arbiter counters: %+v", record)
	}
}

func TestErrorMapping(t *testing.T) {
	rig := newTestRig(t)
	rig.registerArbiter(t)
	rig.fund(t, buyerHex, 100_000)
	id := rig.createEscrow(t)

	cases := []struct {
		name       string
		method     string
		params     interface{}
		wantStatus int
		wantCode   int
	}{
		{"unknown escrow", "escrow_get", map[string]interface{}{"id": 404}, http.StatusNotFound, codeNotFound},
		{"missing deposit", "escrow_getDeposit", map[string]interface{}{"id": id}, http.StatusNotFound, codeNotFound},
		{"outsider fund", "escrow_fund", actorParams(id, recipientHex), http.StatusForbidden, codeForbidden},
		{"confirm before funding", "escrow_confirm", actorParams(id, buyerHex), http.StatusConflict, codeConflict},
		{"bad address", "escrow_fund", actorParams(id, "zz"), http.StatusBadRequest, codeInvalidParams},
		{"resolve undisputed", "escrow_resolve", map[string]interface{}{"id": id, "caller": arbiterHex, "buyerBps": 5_000}, http.StatusConflict, codeConflict},
		{"duplicate arbiter", "arbiter_register", map[string]interface{}{"address": arbiterHex, "name": "alice", "feeBps": 200}, http.StatusConflict, codeConflict},
		{"unknown arbiter", "arbiter_get", map[string]interface{}{"address": recipientHex}, http.StatusNotFound, codeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, decoded := rig.call(t, tc.method, tc.params)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			if decoded.Error == nil || decoded.Error.Code != tc.wantCode {
				t.Fatalf("expected code %d, got %+v", tc.wantCode, decoded.Error)
			}
		})
	}
}

func TestMethodNotFound(t *testing.T) {
	rig := newTestRig(t)
	resp, decoded := rig.call(t, "escrow_unknown", map[string]interface{}{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method_not_found, got %+v", decoded.Error)
	}
}

func TestHealthz(t *testing.T) {
	rig := newTestRig(t)
	resp, err := http.Get(rig.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
