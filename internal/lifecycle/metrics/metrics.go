package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for lifecycle operations.
type Metrics struct {
	MintsTotal        prometheus.Counter
	BurnsTotal        prometheus.Counter
	TransfersTotal    prometheus.Counter
	ComplianceDenials prometheus.Counter
	PausedState       prometheus.Gauge
}

// New creates and registers all lifecycle metrics on the default registry.
// Call once per process; tests leave the service's metrics unset instead.
func New() *Metrics {
	return &Metrics{
		MintsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemreg_records_minted_total",
			Help: "Total asset records minted (single and batch).",
		}),
		BurnsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemreg_records_burned_total",
			Help: "Total asset records destroyed.",
		}),
		TransfersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemreg_records_transferred_total",
			Help: "Total successful ownership transfers.",
		}),
		ComplianceDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemreg_compliance_denials_total",
			Help: "Operations rejected by the compliance gate.",
		}),
		PausedState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gemreg_paused",
			Help: "1 while the registry is paused, 0 otherwise.",
		}),
	}
}
