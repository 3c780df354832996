package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/clikernel/app"
	"github.com/km-arc/clikernel/framework/config"
	foundation "github.com/km-arc/clikernel/framework/app"
)

type flags struct {
	config      string
	logLevel    string
	performance bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd returns the root cobra command. Everything after the first
// positional argument is handed to the kernel untouched.
func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "clikernel [flags] <command> [args...]",
		Short:         "Run commands registered in the service container",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := newKernel(cmd, f)
			if err != nil {
				return err
			}
			return run(k, func() error { return k.Execute(cmd.Context(), args) })
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().SetInterspersed(false)

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "TOML configuration file")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&f.performance, "performance", false, "record command execution times")

	root.AddCommand(newInspectCmd(f))
	return root
}

func newInspectCmd(f *flags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the container introspection API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := newKernel(cmd, f)
			if err != nil {
				return err
			}
			return run(k, func() error { return k.Serve(cmd.Context(), addr) })
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default inspect.addr)")
	return cmd
}

func newKernel(cmd *cobra.Command, f *flags) (*foundation.Application, error) {
	k, err := foundation.New(foundation.Options{
		Config:      config.Options{File: f.config},
		LogLevel:    f.logLevel,
		Performance: f.performance,
		Output:      cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, err
	}
	if err := k.Register(&app.AppServiceProvider{}); err != nil {
		return nil, err
	}
	k.Boot()
	return k, nil
}

// run calls fn and shuts the kernel down, returning the first error.
func run(k *foundation.Application, fn func() error) error {
	err := fn()
	if shutdownErr := k.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}
