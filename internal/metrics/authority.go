package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RegisteredNodes tracks the number of registry records by status.
	RegisteredNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "helixgate_registered_nodes",
			Help: "Number of node records in the registry by status",
		},
		[]string{"status"},
	)

	// VerificationsTotal counts verification attempts by outcome.
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helixgate_verifications_total",
			Help: "Total number of token verification attempts by result",
		},
		[]string{"result"},
	)

	// RotationsTotal counts tokens rotated by rotate-all sweeps.
	RotationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "helixgate_rotations_total",
			Help: "Total number of node tokens rotated",
		},
	)

	// BlockedNodesTotal counts block transitions by cause.
	BlockedNodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helixgate_blocked_nodes_total",
			Help: "Total number of node block transitions by cause",
		},
		[]string{"cause"},
	)
)

// Verification result label values.
const (
	ResultVerified = "verified"
	ResultFailed   = "failed"
	ResultBlocked  = "blocked"
	ResultUnknown  = "unknown"
)

// Block cause label values.
const (
	CauseThreshold = "threshold"
	CauseAdmin     = "admin"
)

// registerAuthorityMetrics registers authority-level metrics.
func registerAuthorityMetrics() error {
	metrics := []prometheus.Collector{
		RegisteredNodes,
		VerificationsTotal,
		RotationsTotal,
		BlockedNodesTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}
