package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks the activity of the token engines.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	taxTotal   prometheus.Counter
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the lazily-initialised engine metrics registry.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "tokenforge_engine_operations_total",
				Help: "Count of engine operations segmented by module and operation.",
			}, []string{"module", "operation"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "tokenforge_engine_failures_total",
				Help: "Count of rejected engine operations segmented by module and operation.",
			}, []string{"module", "operation"}),
			taxTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "tokenforge_transfer_tax_units_total",
				Help: "Cumulative transfer tax collected by the ledger in base units.",
			}),
		}
		prometheus.MustRegister(
			engineRegistry.operations,
			engineRegistry.failures,
			engineRegistry.taxTotal,
		)
	})
	return engineRegistry
}

// RecordOperation counts one completed engine operation.
func (m *EngineMetrics) RecordOperation(module, operation string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(module, operation).Inc()
}

// RecordFailure counts one rejected engine operation.
func (m *EngineMetrics) RecordFailure(module, operation string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(module, operation).Inc()
}

// RecordTax accumulates collected transfer tax. Amounts that overflow a
// float64 are still counted approximately; the counter is for dashboards,
// not accounting.
func (m *EngineMetrics) RecordTax(units float64) {
	if m == nil || units <= 0 {
		return
	}
	m.taxTotal.Add(units)
}
