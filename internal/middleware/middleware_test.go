package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartwatch/internal/infrastructure"
	"dartwatch/internal/shared/testutil"
)

func TestRequestID(t *testing.T) {
	t.Run("generates when absent", func(t *testing.T) {
		var traceID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = infrastructure.TraceIDFromContext(r.Context())
		})

		w := httptest.NewRecorder()
		RequestID(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, traceID)
		assert.Equal(t, traceID, w.Header().Get("X-Request-ID"))
	})

	t.Run("honors incoming header", func(t *testing.T) {
		var traceID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = infrastructure.TraceIDFromContext(r.Context())
		})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "incoming-id")
		w := httptest.NewRecorder()
		RequestID(next).ServeHTTP(w, r)

		assert.Equal(t, "incoming-id", traceID)
		assert.Equal(t, "incoming-id", w.Header().Get("X-Request-ID"))
	})
}

func TestRequestLogger(t *testing.T) {
	logger, records := testutil.NewTestLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	})

	w := httptest.NewRecorder()
	RequestLogger(logger)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.True(t, records.HasMessage("request completed"))
	rec := records.Records()[0]
	assert.Equal(t, int64(http.StatusTeapot), rec.Attrs["status"])
	assert.Equal(t, "/x", rec.Attrs["path"])
}

func TestRecoverer(t *testing.T) {
	logger, records := testutil.NewTestLogger()
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		Recoverer(logger)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, records.HasMessage("panic recovered"))
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(0.0001, 1)(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
