package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := HTTPLogger(Wrap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/status", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core)).With("component", "scheduler")
	l.Debug("tick")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "scheduler", logs.All()[0].ContextMap()["component"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	l := New("bogus", "json")
	require.NotNil(t, l)
	_ = l.Sync()
}
