package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/clikernel/framework/commands"
	"github.com/km-arc/clikernel/framework/config"
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/decorators"
	"github.com/km-arc/clikernel/framework/logging"
	"github.com/km-arc/clikernel/framework/performance"
	"github.com/km-arc/clikernel/framework/providers"
	"github.com/km-arc/clikernel/framework/routing"
)

// Application is the top-level kernel. It embeds the Container and the
// ProviderRegistry so callers can use app.Singleton(), app.RegisterCommand()
// and app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg *config.Config
	out io.Writer
}

// Options configures New.
type Options struct {
	Config config.Options

	// LogLevel overrides log.level from the configuration when set.
	LogLevel string

	// Performance turns execution tracking on regardless of configuration.
	Performance bool

	// Output receives command output. Defaults to os.Stdout.
	Output io.Writer

	// Logger replaces the logger built from the configuration.
	Logger *zap.Logger
}

// New loads the configuration, builds the logger and registers the framework
// providers.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	if opts.Performance {
		cfg.Performance.Enabled = true
	}

	log := opts.Logger
	if log == nil {
		if log, err = logging.New(cfg.Log); err != nil {
			return nil, err
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	c := container.New(container.WithLogger(log), container.WithOverride(cfg.Container.AllowOverride))
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		cfg:       cfg,
		out:       out,
	}
	c.Instance("output", out)

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: log},
		&providers.PerformanceServiceProvider{},
		&providers.InspectorServiceProvider{},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Output returns the writer commands print to.
func (a *Application) Output() io.Writer { return a.out }

// Tracker resolves the "performance" tracker, falling back to performance.Nop.
func (a *Application) Tracker() performance.Tracker {
	tracker, err := container.Resolve[performance.Tracker](a.Container, "performance")
	if err != nil {
		a.Logger().Warn("performance tracking unavailable", zap.Error(err))
		return performance.Nop
	}
	return tracker
}

// ── Dispatch ──────────────────────────────────────────────────────────────────

// Execute dispatches argv to a registered command. argv[0] is the root
// command; the remaining arguments pick a sub-command and are passed to it.
//
//	app.Execute(ctx, []string{"device", "android", "emulator-5554"})
//	// runs "device|android" with ["emulator-5554"]
func (a *Application) Execute(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return commands.ErrNoCommand
	}
	if !a.Providers.Booted() {
		a.Boot()
	}

	root, rest := argv[0], argv[1:]
	dispatch := decorators.Chain(func(...any) (any, error) {
		name, args, err := a.CommandFor(ctx, root, rest)
		if err != nil {
			return nil, err
		}
		return nil, a.ExecuteCommand(ctx, name, args)
	}, decorators.PerformanceLog("command:"+root, a.Tracker()))

	args := make([]any, len(rest))
	for i, arg := range rest {
		args[i] = arg
	}
	_, err := dispatch(args...)
	return err
}

// ── Inspector ─────────────────────────────────────────────────────────────────

// Serve starts the introspection HTTP API on addr (inspect.addr when empty)
// and blocks until ctx is cancelled or the server fails.
func (a *Application) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Inspect.Addr
	}
	router, err := container.Resolve[*routing.Router](a.Container, "router")
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	a.Logger().Info("inspector listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("inspector: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ── Shutdown ──────────────────────────────────────────────────────────────────

// Shutdown disposes every resolved disposable and clears the container.
func (a *Application) Shutdown() error {
	return a.Dispose()
}

// ── Environment ───────────────────────────────────────────────────────────────

func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) Version() string     { return a.cfg.App.Version }
