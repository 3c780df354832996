package providers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/clikernel/framework/config"
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/performance"
	"github.com/km-arc/clikernel/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound names:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	app.Instance("config", cfg)
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger as "logger".
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	log := p.Logger
	if log == nil {
		log = app.Logger()
	}
	app.Instance("logger", log)
}

// ── PerformanceServiceProvider ────────────────────────────────────────────────

// PerformanceServiceProvider registers the execution trackers selected by
// the performance section of "config".
//
// Bound names:
//   - "performance"             → performance.Tracker (Nop when disabled)
//   - "performance.file"        → *performance.LogTracker writing to performance.file
//   - "performance.prometheus"  → *performance.PrometheusTracker
//   - "performance.tracing"     → *performance.TracerProvider
type PerformanceServiceProvider struct {
	container.BaseProvider
}

func (p *PerformanceServiceProvider) Register(app *container.Container) {
	app.Singleton("performance.file", func(cfg *config.Config) (*performance.LogTracker, error) {
		return performance.NewFileTracker(cfg.Performance.File)
	}, "config")

	app.Singleton("performance.prometheus", func(cfg *config.Config) *performance.PrometheusTracker {
		return performance.NewPrometheusTracker(cfg.Performance.Namespace)
	}, "config")

	app.Singleton("performance.tracing", func(cfg *config.Config) (*performance.TracerProvider, error) {
		return performance.NewTracerProvider(context.Background(), cfg.App.Name, cfg.Performance.TracingEndpoint)
	}, "config")

	app.Singleton("performance", func(c *container.Container) any {
		cfg := container.MustResolve[*config.Config](c, "config")
		if !cfg.Performance.Enabled {
			return performance.Nop
		}

		trackers := []performance.Tracker{
			performance.NewLogTracker(container.MustResolve[*zap.Logger](c, "logger")),
		}
		if cfg.Performance.File != "" {
			trackers = append(trackers, container.MustResolve[*performance.LogTracker](c, "performance.file"))
		}
		if cfg.Performance.Metrics {
			trackers = append(trackers, container.MustResolve[*performance.PrometheusTracker](c, "performance.prometheus"))
		}
		if cfg.Performance.Tracing {
			provider := container.MustResolve[*performance.TracerProvider](c, "performance.tracing")
			trackers = append(trackers, performance.NewOTelTracker(provider))
		}
		return performance.Multi(trackers...)
	})
}

// ── InspectorServiceProvider ──────────────────────────────────────────────────

// InspectorServiceProvider registers the introspection HTTP API. It is
// deferred: nothing is built until "inspector" or "router" is resolved.
//
// Bound names:
//   - "inspector"  → *routing.Inspector
//   - "router"     → *routing.Router serving the inspector endpoints, logging
//     requests through the "inspector" child of "logger"
type InspectorServiceProvider struct {
	container.BaseProvider
}

func (p *InspectorServiceProvider) Provides() []string { return []string{"inspector", "router"} }
func (p *InspectorServiceProvider) IsDeferred() bool   { return true }

func (p *InspectorServiceProvider) Register(app *container.Container) {
	app.Singleton("inspector", func(c *container.Container) any {
		var metrics http.Handler
		if container.MustResolve[*config.Config](c, "config").Performance.Metrics {
			metrics = container.MustResolve[*performance.PrometheusTracker](c, "performance.prometheus").Handler()
		}
		return routing.NewInspector(c, metrics)
	})

	app.Singleton("router", func(in *routing.Inspector, log *zap.Logger) *routing.Router {
		r := routing.New(log)
		in.Routes(r)
		return r
	}, "inspector", "logger")

	app.When("router").Needs("logger").Give(func(c *container.Container) any {
		return container.MustResolve[*zap.Logger](c, "logger").Named("inspector")
	})
}
