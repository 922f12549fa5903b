package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session/balance", nil)
	rec := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(rec, req)

	require.NotEmpty(t, traceID)
	assert.Equal(t, traceID, rec.Header().Get(shared.TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "/api/session/balance", entries[0]["path"])
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
	}
}
