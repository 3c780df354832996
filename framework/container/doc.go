// Package container provides the dependency injection container of the CLI
// kernel: named registrations, lazy modules, hierarchical commands and
// disposal.
//
// # Overview
//
// Every subsystem of the CLI (services, commands, the public API) is
// registered under a name and resolved on demand. Constructors declare their
// dependencies as an ordered list of registration keys; the container
// resolves each key recursively and calls the constructor with the results.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(log))
//  2. Register services, commands and providers
//  3. Boot the provider registry
//  4. Resolve and execute commands
//  5. Dispose: c.Dispose()
//
// # Registrations
//
//	// Constructor with dependencies (singleton unless Transient is given)
//	c.Register("projectService", NewProjectService, container.Deps("$logger", "fs"))
//
//	// Factory: receives the container
//	c.Register("clock", container.Factory(func(c *container.Container) any {
//	    return realClock{}
//	}))
//
//	// Pre-built value
//	c.Register("version", "1.4.0")
//
//	// Panicking shorthands
//	c.Singleton("buildService", NewBuildService, "$projectService")
//	c.Bind("buildInfo", NewBuildInfo)
//	c.Instance("config", cfg)
//	c.Alias("logger", "log")
//
// # Resolving
//
//	raw, err := c.Resolve("projectService", container.Params{"$fs": fakeFS})
//	svc := container.MustResolve[*ProjectService](c, "projectService")
//
// # Lazy modules
//
// A Catalog maps module paths to Modules. Require records that a name is
// provided by a module; the module is loaded the first time the name is
// resolved.
//
//	cat := container.NewCatalog()
//	cat.Add("lib/services/project", container.ModuleFunc(func(c *container.Container) error {
//	    return c.Register("projectService", NewProjectService, container.Deps("logger"))
//	}))
//	c := container.New(container.WithCatalog(cat))
//	c.Require("projectService", "lib/services/project")
//
// # Commands
//
// Commands are registered under plain names or hierarchical paths using "|"
// as the delimiter. A segment prefixed with "*" is the default sub-command of
// its parent.
//
//	c.RequireCommand("device|*list", "lib/commands/device")
//	c.RequireCommand("device|android", "lib/commands/device")
//
//	name, rest, _ := c.CommandFor(ctx, "device", []string{"ANDROID", "--json"})
//	// name == "device|android", rest == ["--json"]
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("projectService", NewProjectService, "logger")
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
