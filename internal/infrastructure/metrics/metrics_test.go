package metrics

import "testing"

// New registers with the default Prometheus registry, so it may only be
// called once per process.
var testMetrics = New()

func TestNew(t *testing.T) {
	if testMetrics.TransfersCreated == nil {
		t.Error("TransfersCreated not initialized")
	}
	if testMetrics.DepositsConfirmed == nil {
		t.Error("DepositsConfirmed not initialized")
	}
	if testMetrics.SweepErrors == nil {
		t.Error("SweepErrors not initialized")
	}

	// Vectors must accept their declared label arity.
	testMetrics.TransferErrors.WithLabelValues("insufficient balance").Inc()
	testMetrics.SweepErrors.WithLabelValues("orphan_scan").Inc()
	testMetrics.DepositErrors.WithLabelValues("provider_verify").Inc()
}
