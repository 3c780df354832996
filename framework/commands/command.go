package commands

import "context"

// Command is an executable CLI command resolved from the container.
//
//	type listCommand struct{ services *Catalog }
//
//	func (c *listCommand) AllowedParameters() []commands.Parameter { return nil }
//	func (c *listCommand) Execute(ctx context.Context, args []string) error {
//	    return c.services.Print(ctx)
//	}
type Command interface {
	// Execute runs the command with the arguments left after the command
	// name has been resolved.
	Execute(ctx context.Context, args []string) error

	// AllowedParameters describes the positional arguments the command
	// accepts. A command returning none rejects any argument.
	AllowedParameters() []Parameter
}

// Executable is implemented by commands that decide on their own whether the
// given arguments can be executed. It replaces parameter validation.
type Executable interface {
	CanExecute(ctx context.Context, args []string) (bool, error)
}

// Parameter is a positional command argument validated with pipe-separated
// rules, e.g. Parameter{Name: "device", Rules: "required|alpha_dash"}.
type Parameter struct {
	Name  string
	Rules string
}

// Mandatory reports whether the parameter carries the required rule.
func (p Parameter) Mandatory() bool {
	for _, rule := range splitRules(p.Rules) {
		if rule == "required" {
			return true
		}
	}
	return false
}

// Func adapts a plain function to the Command interface.
type Func struct {
	Run    func(ctx context.Context, args []string) error
	Params []Parameter
}

func (f Func) Execute(ctx context.Context, args []string) error { return f.Run(ctx, args) }
func (f Func) AllowedParameters() []Parameter                    { return f.Params }
