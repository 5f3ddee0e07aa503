package logger

import (
	"bytes"
	"context"
	log "log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandlerAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{log.NewJSONHandler(&buf, nil)})

	ctx := NewTraceContext(context.Background(), "test-")
	l.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, TraceID(ctx), rec[TraceIDKey])
	assert.Contains(t, rec[TraceIDKey], "test-")
}

func TestRemoteFilterHandlerDropsRecordsWithoutTrace(t *testing.T) {
	var buf bytes.Buffer
	h := &RemoteFilterHandler{next: log.NewJSONHandler(&buf, nil)}
	l := log.New(&ContextHandler{h})

	l.Info("no trace")
	assert.Zero(t, buf.Len())

	l.InfoContext(NewTraceContext(context.Background(), "job-"), "with trace")
	assert.Contains(t, buf.String(), "with trace")
}

func TestTeeHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&a, nil),
		log.NewJSONHandler(&b, nil),
	}}
	log.New(tee).With("k", "v").Info("fan out")

	assert.Contains(t, a.String(), `"k":"v"`)
	assert.Contains(t, b.String(), "fan out")
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var info, debug bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&info, &log.HandlerOptions{Level: log.LevelInfo}),
		log.NewJSONHandler(&debug, &log.HandlerOptions{Level: log.LevelDebug}),
	}}
	l := log.New(tee)

	l.Debug("debug only")
	assert.Zero(t, info.Len())
	assert.Contains(t, debug.String(), "debug only")
}

func TestFormatAccessLog(t *testing.T) {
	ctx := NewTraceContext(context.Background(), "abc-")
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report", nil).WithContext(ctx)

	line := formatAccessLog(gin.LogFormatterParams{
		Request:    req,
		TimeStamp:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		StatusCode: 200,
		Latency:    15 * time.Millisecond,
		Method:     "GET",
		Path:       `/api/analytics/report?q="x"`,
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, TraceID(ctx), rec["trace_id"])
	assert.Equal(t, `/api/analytics/report?q="x"`, rec["path"])
	assert.Equal(t, float64(200), rec["status"])
}
