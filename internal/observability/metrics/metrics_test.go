package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOverdueInvoicesGauge(t *testing.T) {
	m := New()

	m.SetOverdueInvoices(7)
	require.Equal(t, float64(7), testutil.ToFloat64(m.overdueInvoices))

	// the gauge tracks the latest sweep, it never accumulates
	m.SetOverdueInvoices(3)
	require.Equal(t, float64(3), testutil.ToFloat64(m.overdueInvoices))
}

func TestSweepRunCounter(t *testing.T) {
	m := New()

	m.IncSweepRun()
	m.IncSweepRun()
	require.Equal(t, float64(2), testutil.ToFloat64(m.sweepRunsTotal))
}

func TestRateLimitDeniedCounter(t *testing.T) {
	m := New()

	m.IncRateLimitDenied()
	require.Equal(t, float64(1), testutil.ToFloat64(m.rateLimitDenials))
}
