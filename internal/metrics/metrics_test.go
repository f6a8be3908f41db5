package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInit(t *testing.T) {
	// Reset initialized flag for testing
	initialized = false
	Registry = prometheus.NewRegistry()

	err := Init()
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	if !initialized {
		t.Error("Expected initialized to be true after Init()")
	}
}

func TestInit_MultipleCallsAreIdempotent(t *testing.T) {
	initialized = false
	Registry = prometheus.NewRegistry()

	if err := Init(); err != nil {
		t.Fatalf("First Init() failed: %v", err)
	}

	// Second init should not error
	if err := Init(); err != nil {
		t.Errorf("Second Init() returned error: %v", err)
	}
}

func TestMustInit(t *testing.T) {
	initialized = false
	Registry = prometheus.NewRegistry()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustInit() panicked: %v", r)
		}
	}()

	MustInit()

	if !initialized {
		t.Error("Expected initialized to be true after MustInit()")
	}
}

func TestAuthorityMetrics_Recording(t *testing.T) {
	initialized = false
	Registry = prometheus.NewRegistry()

	if err := Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	RegisteredNodes.WithLabelValues("active").Set(10)
	VerificationsTotal.WithLabelValues(ResultVerified).Inc()
	VerificationsTotal.WithLabelValues(ResultFailed).Add(3)
	RotationsTotal.Add(7)
	BlockedNodesTotal.WithLabelValues(CauseThreshold).Inc()

	metrics, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	if len(metrics) == 0 {
		t.Error("Expected authority metrics")
	}
}
