package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/km-arc/clikernel/framework/commands"
	"github.com/km-arc/clikernel/framework/config"
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/decorators"
)

// ── service ───────────────────────────────────────────────────────────────────

// serviceListCommand prints every registration ("service list").
type serviceListCommand struct {
	out  io.Writer
	list decorators.Func
}

func newServiceListCommand(out io.Writer, c *container.Container) *serviceListCommand {
	return &serviceListCommand{
		out: out,
		list: decorators.ExportedMethod(c, "serviceCatalog", func(s *ServiceCatalog) decorators.Func {
			return func(...any) (any, error) { return s.List(), nil }
		}, false),
	}
}

func (cmd *serviceListCommand) AllowedParameters() []commands.Parameter { return nil }

func (cmd *serviceListCommand) Execute(_ context.Context, _ []string) error {
	v, err := cmd.list()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tLIFETIME\tRESOLVED\tDEPENDENCIES")
	for _, d := range v.([]container.Description) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", d.Name, d.Source, d.Lifetime, d.Resolved, strings.Join(d.Dependencies, ","))
	}
	return w.Flush()
}

// serviceDescribeCommand prints one registration as JSON ("service describe <name>").
type serviceDescribeCommand struct {
	out      io.Writer
	describe decorators.Func
}

func newServiceDescribeCommand(out io.Writer, c *container.Container) *serviceDescribeCommand {
	return &serviceDescribeCommand{out: out, describe: decorators.Exported(c, "serviceCatalog", "Describe", false)}
}

func (cmd *serviceDescribeCommand) AllowedParameters() []commands.Parameter {
	return []commands.Parameter{{Name: "name", Rules: "required"}}
}

func (cmd *serviceDescribeCommand) Execute(_ context.Context, args []string) error {
	d, err := cmd.describe(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.out)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ── command ───────────────────────────────────────────────────────────────────

// commandListCommand prints the command tree ("command list").
type commandListCommand struct {
	out io.Writer
	c   *container.Container
}

func newCommandListCommand(out io.Writer, c *container.Container) *commandListCommand {
	return &commandListCommand{out: out, c: c}
}

func (cmd *commandListCommand) AllowedParameters() []commands.Parameter { return nil }

func (cmd *commandListCommand) Execute(_ context.Context, _ []string) error {
	for _, path := range cmd.c.Commands() {
		if commands.IsHierarchical(path) {
			continue
		}
		if err := cmd.print(path, 0); err != nil {
			return err
		}
	}
	return nil
}

// print writes path and its sub-commands in registration order.
func (cmd *commandListCommand) print(path string, depth int) error {
	segments := commands.Split(path)
	last := segments[len(segments)-1]
	line := strings.Repeat("  ", depth) + strings.TrimPrefix(last, commands.DefaultSymbol)
	if strings.HasPrefix(last, commands.DefaultSymbol) {
		line += " (default)"
	}
	if _, err := fmt.Fprintln(cmd.out, line); err != nil {
		return err
	}
	for _, child := range cmd.c.SubCommands(path) {
		if err := cmd.print(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// commandResolveCommand prints the command and arguments that argv would
// dispatch to ("command resolve <root> [args...]").
type commandResolveCommand struct {
	out io.Writer
	c   *container.Container
}

func newCommandResolveCommand(out io.Writer, c *container.Container) *commandResolveCommand {
	return &commandResolveCommand{out: out, c: c}
}

func (cmd *commandResolveCommand) AllowedParameters() []commands.Parameter {
	return []commands.Parameter{{Name: "root", Rules: "required"}}
}

func (cmd *commandResolveCommand) CanExecute(_ context.Context, args []string) (bool, error) {
	return len(args) > 0, nil
}

func (cmd *commandResolveCommand) Execute(ctx context.Context, args []string) error {
	name, rest, err := cmd.c.CommandFor(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.out, "%s\t%s\n", name, strings.Join(rest, " "))
	return err
}

// ── version ───────────────────────────────────────────────────────────────────

type versionCommand struct {
	out io.Writer
	cfg *config.Config
}

func newVersionCommand(out io.Writer, cfg *config.Config) *versionCommand {
	return &versionCommand{out: out, cfg: cfg}
}

func (cmd *versionCommand) AllowedParameters() []commands.Parameter { return nil }

func (cmd *versionCommand) Execute(_ context.Context, _ []string) error {
	_, err := fmt.Fprintf(cmd.out, "%s %s\n", cmd.cfg.App.Name, cmd.cfg.App.Version)
	return err
}
