package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StepRecorded("drop_columns")
		m.StepRejected("drop_columns", "empty")
		m.StepSkipped("future_op")
		m.ReplayFinished(OutcomeSuccess, time.Second)
		m.RowsWritten("append", 3)
		m.RequestServed(http.MethodGet, 200)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	m := New()

	m.StepRecorded("drop_columns")
	m.StepRecorded("drop_columns")
	m.StepSkipped("future_op")
	m.ReplayFinished(OutcomeRawUnavailable, 10*time.Millisecond)
	m.RowsWritten("overwrite", 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepsRecorded.WithLabelValues("drop_columns")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsSkipped.WithLabelValues("future_op")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Replays.WithLabelValues(OutcomeRawUnavailable)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("overwrite")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.StepRecorded("drop_rows_with_nulls")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `etl_pipeline_steps_recorded_total{op="drop_rows_with_nulls"} 1`))
}
