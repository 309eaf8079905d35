package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.AddOps("deed", 42)
	m.AddOps("deed", 8)
	m.EditPublished()
	m.Transaction("confirmed")
	m.Since("ipfs", time.Now().Add(-time.Second))

	assert.Equal(t, 50.0, testutil.ToFloat64(m.OpsGenerated.WithLabelValues("deed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("confirmed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `grc20_ops_generated_total{kind="deed"} 50`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddOps("permit", 1)
		m.EditPublished()
		m.Transaction("failed")
		m.Since("calldata", time.Now())
	})
}
