package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/clikernel/framework/app"
	"github.com/km-arc/clikernel/framework/commands"
	"github.com/km-arc/clikernel/framework/config"
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/performance"
	"github.com/km-arc/clikernel/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newApp(t *testing.T, env map[string]string, opts ...func(*app.Options)) (*app.Application, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	if env == nil {
		env = map[string]string{}
	}
	o := app.Options{
		Config: config.Options{EnvFiles: []string{filepath.Join(t.TempDir(), ".env")}, Environment: env},
		Output: &bytes.Buffer{},
		Logger: zap.New(core),
	}
	for _, opt := range opts {
		opt(&o)
	}
	a, err := app.New(o)
	require.NoError(t, err)
	return a, logs
}

type recorder struct{ calls [][]string }

func (r *recorder) command(name string, params ...commands.Parameter) commands.Func {
	return commands.Func{
		Run: func(_ context.Context, args []string) error {
			r.calls = append(r.calls, append([]string{name}, args...))
			return nil
		},
		Params: params,
	}
}

func registerDevices(a *app.Application, r *recorder) {
	a.MustRegisterCommand("device|android", r.command("android", commands.Parameter{Name: "serial", Rules: "sometimes"}))
	a.MustRegisterCommand("device|*list", r.command("list"))
	a.MustRegisterCommand("project|build", r.command("build"))
}

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_RegistersFrameworkServices(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t, nil)

	cfg, err := container.Resolve[*config.Config](a.Container, "configuration")
	require.NoError(t, err)
	assert.Same(t, a.Config(), cfg)
	assert.True(t, a.Bound("logger"))
	assert.True(t, a.Bound("output"))
	assert.True(t, a.Bound("performance"))
	assert.ElementsMatch(t, []string{"inspector", "router"}, a.Providers.Deferred())
	assert.True(t, a.IsLocal())
	assert.Equal(t, "0.0.0-dev", a.Version())
}

func TestNew_Overrides(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t, map[string]string{"CONTAINER_ALLOW_OVERRIDE": "true"}, func(o *app.Options) {
		o.Performance = true
		o.LogLevel = "debug"
	})
	assert.True(t, a.Config().Performance.Enabled)
	assert.Equal(t, "debug", a.Config().Log.Level)

	require.NoError(t, a.Require("router", "elsewhere"))
}

func TestNew_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	_, err := app.New(app.Options{Config: config.Options{Environment: map[string]string{"APP_ENV": "staging"}}})
	assert.ErrorContains(t, err, "app.env")

	_, err = app.New(app.Options{Config: config.Options{Environment: map[string]string{}}, LogLevel: "loud"})
	assert.ErrorContains(t, err, "log.level")
}

// ── Execute ──────────────────────────────────────────────────────────────────

func TestExecute_Dispatch(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t, nil)
	r := &recorder{}
	registerDevices(a, r)
	ctx := context.Background()

	require.NoError(t, a.Execute(ctx, []string{"device", "android", "emulator-5554"}))
	require.NoError(t, a.Execute(ctx, []string{"device"}))
	require.NoError(t, a.Execute(ctx, []string{"DEVICE", "List"}))
	require.NoError(t, a.Execute(ctx, []string{"project", "build"}))

	assert.Equal(t, [][]string{
		{"android", "emulator-5554"},
		{"list"},
		{"list"},
		{"build"},
	}, r.calls)
	assert.True(t, a.Providers.Booted())
}

func TestExecute_Errors(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t, nil)
	r := &recorder{}
	registerDevices(a, r)
	a.MustRegisterCommand("version", r.command("version"))
	ctx := context.Background()

	assert.ErrorIs(t, a.Execute(ctx, nil), commands.ErrNoCommand)

	var unknown *commands.UnknownCommandError
	require.ErrorAs(t, a.Execute(ctx, []string{"deploy"}), &unknown)
	assert.Equal(t, "deploy", unknown.Name)

	assert.ErrorIs(t, a.Execute(ctx, []string{"project", "deploy"}), commands.ErrInvalidCommand)

	var argErr *commands.ArgumentError
	require.ErrorAs(t, a.Execute(ctx, []string{"version", "extra"}), &argErr)
	assert.Equal(t, "This command doesn't accept parameters.", argErr.First("arguments"))

	assert.Empty(t, r.calls)
}

func TestExecute_RecordsPerformance(t *testing.T) {
	t.Parallel()

	a, logs := newApp(t, map[string]string{"PERFORMANCE_METRICS": "true"}, func(o *app.Options) { o.Performance = true })
	registerDevices(a, &recorder{})

	require.NoError(t, a.Execute(context.Background(), []string{"device", "android", "x"}))

	entries := logs.FilterLoggerName("performance").FilterMessage("execution").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "command:device", entries[0].ContextMap()["label"])
	assert.Equal(t, "[android x]", entries[0].ContextMap()["args"])

	prom := container.MustResolve[*performance.PrometheusTracker](a.Container, "performance.prometheus")
	count, err := testutil.GatherAndCount(prom.Registry(), "clikernel_execution_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_PerformanceDisabled(t *testing.T) {
	t.Parallel()

	a, logs := newApp(t, nil)
	registerDevices(a, &recorder{})

	require.NoError(t, a.Execute(context.Background(), []string{"device"}))
	assert.Zero(t, logs.FilterMessage("execution").Len())
	assert.False(t, a.Resolved("performance.prometheus"))
}

// ── Inspector ────────────────────────────────────────────────────────────────

func TestInspectorIsDeferred(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t, nil)
	assert.False(t, a.Resolved("router"))

	router, err := container.Resolve[*routing.Router](a.Container, "router")
	require.NoError(t, err)
	assert.NotNil(t, router)
	assert.Empty(t, a.Providers.Deferred())
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	a, logs := newApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, "127.0.0.1:0") }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("inspector listening").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// ── Shutdown ─────────────────────────────────────────────────────────────────

func TestShutdown_FlushesPerformanceFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "performance.log")
	a, _ := newApp(t, map[string]string{"PERFORMANCE_FILE": path}, func(o *app.Options) { o.Performance = true })
	registerDevices(a, &recorder{})

	require.NoError(t, a.Execute(context.Background(), []string{"project", "build"}))
	require.NoError(t, a.Shutdown())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"label":"command:project"`))

	assert.False(t, a.Bound("performance"))
	assert.Empty(t, a.Commands())
	require.NoError(t, a.Shutdown())
}
