package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordFetch("header_apikey", "ok")
	m.RecordFetch("header_apikey", "ok")
	m.RecordFetch("query_key", "transient")
	m.RecordItem("NORMAL", 2)
	m.RecordItem("EXCLUSIVE", 0)
	m.ObserveFetchDuration(120)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("header_apikey", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("query_key", "transient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsAnalyzed.WithLabelValues("NORMAL")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnchorsFlagged))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordFetch("query_key", "ok")
		m.RecordItem("NORMAL", 3)
		m.ObserveFetchDuration(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordItem("NORMAL", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pricer_items_analyzed_total{regime="NORMAL"} 1`)
	assert.Contains(t, string(body), "pricer_anchors_flagged_total 1")
}
