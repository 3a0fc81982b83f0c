package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.ObserveRequest("MEAL", "recipe", 2, 150*time.Millisecond)
	m.IncClassification("MEAL", "food_terms")
	m.IncViolation("IMPERIAL_UNIT")
	m.IncViolation("IMPERIAL_UNIT")
	m.IncGeneratorError()
	m.IncCacheLookup(true)
	m.IncCacheLookup(false)
	m.IncPolicyReload(true)
	m.IncQueueRejection()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("MEAL", "recipe")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViolationTotal.WithLabelValues("IMPERIAL_UNIT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeneratorErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolicyReloadTotal.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueRejectionsTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["recipe_request_duration_ms"])
	assert.True(t, names["recipe_generation_attempts"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("MEAL", "recipe", 1, time.Second)
		m.IncClassification("MEAL", "default")
		m.IncViolation("RECIPE_COUNT")
		m.IncGeneratorError()
		m.IncCacheLookup(true)
		m.IncPolicyReload(false)
		m.IncQueueRejection()
	})
}
