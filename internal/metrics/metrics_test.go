package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpstreamCall(t *testing.T) {
	m := New()

	m.UpstreamCall("list.json", "ok")
	m.UpstreamCall("list.json", "ok")
	m.UpstreamCall("piicDecsn.json", "http_500")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues("list.json", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues("piicDecsn.json", "http_500")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ReportRuns.WithLabelValues("major_issuance", "success").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dartwatch_report_runs_total")
}
