package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()

	var seenTrace string
	handler := NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	require.NotEmpty(t, seenTrace)
	assert.Equal(t, seenTrace, rec.Header().Get("X-Trace-ID"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	var found bool
	for _, entry := range entries {
		if entry["msg"] == "inside handler" {
			found = true
			assert.Equal(t, seenTrace, entry["trace_id"])
		}
	}
	assert.True(t, found, "the request logger carries the trace ID")
}
