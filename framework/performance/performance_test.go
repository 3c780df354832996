package performance_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/clikernel/framework/performance"
)

var (
	start = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	end   = start.Add(1500 * time.Millisecond)
)

func TestLogTracker(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	performance.NewLogTracker(zap.New(core)).TrackExecution("build", start, end, []any{"android", 2})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "performance", entries[0].LoggerName)
	assert.Equal(t, "build", fields["label"])
	assert.Equal(t, 1500*time.Millisecond, fields["duration"])
	assert.Equal(t, "[android 2]", fields["args"])
}

func TestFileTracker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perf.log")
	tracker, err := performance.NewFileTracker(path)
	require.NoError(t, err)

	tracker.TrackExecution("deploy", start, end, nil)
	tracker.TrackExecution("deploy", start, end, nil)
	require.NoError(t, tracker.Dispose())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "deploy", entry["label"])
	assert.Equal(t, "execution", entry["msg"])
}

func TestPrometheusTracker(t *testing.T) {
	t.Parallel()

	tracker := performance.NewPrometheusTracker("clikernel")
	tracker.TrackExecution("build", start, end, nil)
	tracker.TrackExecution("build", start, end, nil)
	tracker.TrackExecution("deploy", start, end, nil)

	count, err := testutil.GatherAndCount(tracker.Registry(), "clikernel_execution_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per label")

	expected := `
# HELP clikernel_execution_calls_total Total tracked executions.
# TYPE clikernel_execution_calls_total counter
clikernel_execution_calls_total{label="build"} 2
clikernel_execution_calls_total{label="deploy"} 1
`
	require.NoError(t, testutil.GatherAndCompare(tracker.Registry(), strings.NewReader(expected), "clikernel_execution_calls_total"))

	rec := httptest.NewRecorder()
	tracker.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "clikernel_execution_duration_seconds_bucket")
}

func TestOTelTracker(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	performance.NewOTelTracker(provider).TrackExecution("build", start, end, []any{"a", "b"})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "build", spans[0].Name())
	assert.WithinDuration(t, start, spans[0].StartTime(), 0)
	assert.WithinDuration(t, end, spans[0].EndTime(), 0)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("execution.args", 2))
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var labels []string
	record := performance.TrackerFunc(func(label string, _, _ time.Time, _ []any) {
		labels = append(labels, label)
	})

	performance.Multi(record, nil, record).TrackExecution("x", start, end, nil)
	assert.Equal(t, []string{"x", "x"}, labels)

	assert.NotPanics(t, func() { performance.Multi().TrackExecution("x", start, end, nil) })
	assert.NotPanics(t, func() { performance.Nop.TrackExecution("x", start, end, nil) })
}

func TestTracerProvider_WithoutEndpoint(t *testing.T) {
	t.Parallel()

	provider, err := performance.NewTracerProvider(context.Background(), "clikernel", "")
	require.NoError(t, err)

	performance.NewOTelTracker(provider).TrackExecution("build", start, end, nil)
	require.NoError(t, provider.Dispose())
}
