package app

import (
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/decorators"
)

const catalogModule = "app/catalog"

// AppServiceProvider registers the built-in commands and the
// "serviceCatalog" public module.
//
// Commands:
//
//	service [list]          registrations as a table
//	service describe <name> one registration as JSON
//	command [list]          the command tree
//	command resolve <root> [args...]
//	version
//	services                deprecated, same as "service list"
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(app *container.Container) {
	app.Catalog().Add(catalogModule, container.ModuleFunc(func(c *container.Container) error {
		return c.Register("serviceCatalog", NewServiceCatalog, container.Deps("container"))
	}))
	must(app.RequirePublic("serviceCatalog", catalogModule))

	deps := container.Deps("output", "container")
	app.MustRegisterCommand("service|*list", newServiceListCommand, deps)
	app.MustRegisterCommand("service|describe", newServiceDescribeCommand, deps)
	app.MustRegisterCommand("command|*list", newCommandListCommand, deps)
	app.MustRegisterCommand("command|resolve", newCommandResolveCommand, deps)
	app.MustRegisterCommand("version", newVersionCommand, container.Deps("output", "config"))

	legacy := decorators.DeprecatedConstructor("services", `Use "service list" instead.`, app.Logger(), newServiceListCommand)
	app.MustRegisterCommand("services", legacy, deps)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
