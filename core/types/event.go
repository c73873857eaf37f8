package types

// Event is a structured record emitted alongside escrow state transitions for
// downstream observers (RPC subscribers, indexers). Events are observability
// data only; the transaction journal remains the audit record.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
