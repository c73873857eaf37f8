package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EscrowMetrics tracks the engine's aggregate activity for scraping.
type EscrowMetrics struct {
	created          prometheus.Counter
	transitions      *prometheus.CounterVec
	disputesResolved prometheus.Counter
	volume           prometheus.Counter
}

var (
	escrowOnce     sync.Once
	escrowRegistry *EscrowMetrics
)

// Escrow returns the process-wide escrow metrics collector.
func Escrow() *EscrowMetrics {
	escrowOnce.Do(func() {
		escrowRegistry = &EscrowMetrics{
			created: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "escrow_created_total",
				Help: "Count of escrows created.",
			}),
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "escrow_transitions_total",
				Help: "Count of escrow state transitions by resulting action.",
			}, []string{"action"}),
			disputesResolved: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "escrow_disputes_resolved_total",
				Help: "Count of disputes settled by an arbiter.",
			}),
			volume: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "escrow_volume_total",
				Help: "Cumulative value custodied across all funded escrows.",
			}),
		}
		prometheus.MustRegister(
			escrowRegistry.created,
			escrowRegistry.transitions,
			escrowRegistry.disputesResolved,
			escrowRegistry.volume,
		)
	})
	return escrowRegistry
}

// ObserveCreated records a new escrow.
func (m *EscrowMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

// ObserveTransition records a state transition by journal action.
func (m *EscrowMetrics) ObserveTransition(action string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.transitions.WithLabelValues(action).Inc()
}

// ObserveResolved records a settled dispute.
func (m *EscrowMetrics) ObserveResolved() {
	if m == nil {
		return
	}
	m.disputesResolved.Inc()
}

// ObserveVolume adds the funded amount to the volume counter. Amounts beyond
// float precision are truncated; the counter is for dashboards, the state
// manager holds the exact total.
func (m *EscrowMetrics) ObserveVolume(amount *big.Int) {
	if m == nil || amount == nil || amount.Sign() <= 0 {
		return
	}
	value, _ := new(big.Float).SetInt(amount).Float64()
	m.volume.Add(value)
}
