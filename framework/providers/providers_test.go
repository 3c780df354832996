package providers_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/clikernel/framework/config"
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/performance"
	"github.com/km-arc/clikernel/framework/providers"
	"github.com/km-arc/clikernel/framework/routing"
)

func boot(t *testing.T, cfg config.Config) *container.Container {
	t.Helper()
	c := container.New()
	registry := container.NewProviderRegistry(c)
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: &cfg},
		&providers.LoggingServiceProvider{},
		&providers.PerformanceServiceProvider{},
		&providers.InspectorServiceProvider{},
	} {
		require.NoError(t, registry.Register(p))
	}
	registry.Boot()
	return c
}

func TestConfigServiceProvider(t *testing.T) {
	t.Parallel()

	c := container.New()
	(&providers.ConfigServiceProvider{}).Register(c)

	cfg := container.MustResolve[*config.Config](c, "configuration")
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoggingServiceProvider_DefaultsToContainerLogger(t *testing.T) {
	t.Parallel()

	c := container.New()
	(&providers.LoggingServiceProvider{}).Register(c)
	assert.Same(t, c.Logger(), container.MustResolve[*zap.Logger](c, "logger"))
}

func TestPerformanceServiceProvider_Disabled(t *testing.T) {
	t.Parallel()

	c := boot(t, config.Default())
	tracker := container.MustResolve[performance.Tracker](c, "performance")
	assert.NotNil(t, tracker)
	assert.False(t, c.Resolved("performance.file"))
	assert.False(t, c.Resolved("performance.prometheus"))
	assert.False(t, c.Resolved("performance.tracing"))
}

func TestPerformanceServiceProvider_Enabled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Performance.Enabled = true
	cfg.Performance.File = filepath.Join(t.TempDir(), "performance.log")
	cfg.Performance.Metrics = true
	cfg.Performance.Tracing = true

	c := boot(t, cfg)
	container.MustResolve[performance.Tracker](c, "performance").TrackExecution("build", start(), start(), nil)

	assert.True(t, c.Resolved("performance.file"))
	assert.True(t, c.Resolved("performance.prometheus"))
	assert.True(t, c.Resolved("performance.tracing"))
	require.NoError(t, c.Dispose())
}

func TestPerformanceServiceProvider_BadFile(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Performance.Enabled = true
	cfg.Performance.File = filepath.Join(t.TempDir(), "missing", "performance.log")

	_, err := boot(t, cfg).Resolve("performance", nil)
	var ce *container.ConstructionError
	assert.ErrorAs(t, err, &ce)
}

func TestInspectorServiceProvider_ServesMetrics(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Performance.Enabled = true
	cfg.Performance.Metrics = true

	c := boot(t, cfg)
	container.MustResolve[performance.Tracker](c, "performance").TrackExecution("build", start(), start(), nil)

	router := container.MustResolve[*routing.Router](c, "router")
	assert.True(t, c.Resolved("inspector"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `clikernel_execution_calls_total{label="build"} 1`)
}

func TestInspectorServiceProvider_RouterLogsAsInspector(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	c := container.New()
	registry := container.NewProviderRegistry(c)
	cfg := config.Default()
	require.NoError(t, registry.Register(&providers.ConfigServiceProvider{Config: &cfg}))
	require.NoError(t, registry.Register(&providers.LoggingServiceProvider{Logger: zap.New(core)}))
	require.NoError(t, registry.Register(&providers.InspectorServiceProvider{}))
	registry.Boot()

	router := container.MustResolve[*routing.Router](c, "router")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, "inspector", requests[0].LoggerName)
	assert.Empty(t, container.MustResolve[*zap.Logger](c, "logger").Name(), "other consumers get the plain logger")
}

func start() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
