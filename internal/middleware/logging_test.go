package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/planwise-ai/calendar-assistant/pkg/logger"
)

func TestLogging(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	handler := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, GetCorrelationID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat/reply", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	entries := observed.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/chat/reply", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.NotEmpty(t, fields["correlation_id"])
	// Auth runs later in the chain on a derived request, so no per-user
	// field can be populated here.
	assert.NotContains(t, fields, "user")
}

func TestLoggingKeepsProvidedCorrelationID(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	handler := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get("X-Correlation-ID"))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "corr-123", entries[0].ContextMap()["correlation_id"])
}
