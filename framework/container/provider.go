package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one subsystem.
//
// Register is called as soon as the provider is added to the registry. Boot
// is called after ALL providers have been registered, making it safe to
// resolve other registrations inside Boot().
//
//	type DeviceServiceProvider struct{ container.BaseProvider }
//
//	func (p *DeviceServiceProvider) Register(app *container.Container) {
//	    app.Singleton("devicesService", NewDevicesService, "$logger")
//	    app.MustRegisterCommand("device|*list", NewListDevicesCommand, container.Deps("devicesService"))
//	}
type ServiceProvider interface {
	// Register binds services and commands into the container.
	// Do NOT resolve other registrations here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the names a deferred provider registers.
	Provides() []string

	// IsDeferred returns true if the provider is loaded lazily, the first
	// time one of its Provides() names is resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot(), Provides() and
// IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
// Deferred providers become modules of the container catalog and their names
// are required from it.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // name → provider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method unless it is
// deferred. Adding the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		return r.deferProvider(provider)
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)
	r.app.Logger().Debug("provider registered", zap.String("provider", fmt.Sprintf("%T", provider)))

	// If already booted, boot this provider immediately
	if r.booted {
		provider.Boot(r.app)
	}
	return nil
}

// deferProvider adds provider to the catalog and requires each of its names
// from it. The module registers and boots the provider once.
func (r *ProviderRegistry) deferProvider(provider ServiceProvider) error {
	path := fmt.Sprintf("provider:%T#%d", provider, len(r.registered))
	r.app.Catalog().Add(path, ModuleFunc(func(c *Container) error {
		provider.Register(c)
		for _, name := range provider.Provides() {
			delete(r.deferred, NormalizeKey(name))
		}
		if r.booted {
			provider.Boot(c)
		}
		return nil
	}))

	for _, name := range provider.Provides() {
		if err := r.app.Require(name, path); err != nil {
			return err
		}
		r.deferred[NormalizeKey(name)] = provider
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *ProviderRegistry) MustRegister(provider ServiceProvider) {
	must(r.Register(provider))
}

// Boot calls Boot() on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns the names still waiting for their provider to load.
func (r *ProviderRegistry) Deferred() []string {
	out := make([]string, 0, len(r.deferred))
	for name := range r.deferred {
		out = append(out, name)
	}
	return out
}
