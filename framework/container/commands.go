package container

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/clikernel/framework/commands"
)

const commandPrefix = "command:"

func commandKey(path string) string { return commandPrefix + strings.ToLower(path) }

func isCommandKey(name string) bool { return strings.HasPrefix(name, commandPrefix) }

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterCommand registers a command implementation under path. impl is a
// commands.Command value or a constructor/factory source returning one.
//
//	c.RegisterCommand("device|android", NewAndroidCommand, container.Deps("$devices"))
//	c.RegisterCommand("device|*list", &listDevicesCommand{})
//
// Registering a sub-command also registers a dispatcher for its root unless
// the root has an implementation of its own.
func (c *Container) RegisterCommand(path string, impl any, opts ...RegisterOption) error {
	reg, err := newRegistration(commandKey(path), impl, opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.addCommandPath(path, false); err != nil {
		return err
	}
	c.put(reg)
	c.log.Debug("registered command", zap.String("path", path), zap.Stringer("source", reg.kind))
	return nil
}

// MustRegisterCommand is like RegisterCommand but panics on error.
func (c *Container) MustRegisterCommand(path string, impl any, opts ...RegisterOption) {
	must(c.RegisterCommand(path, impl, opts...))
}

// RequireCommand records that the command at path is registered by the module
// at modulePath. The module must call RegisterCommand for the same path.
func (c *Container) RequireCommand(path, modulePath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.registrations[commandKey(path)]; exists && !c.override {
		return &DuplicateRequireError{Name: path}
	}
	if err := c.addCommandPath(path, c.override); err != nil {
		return err
	}
	delete(c.loaded, modulePath)
	c.put(&registration{name: commandKey(path), kind: SourceModule, module: modulePath, singleton: true})
	return nil
}

// addCommandPath adds path to the command tree (must hold mu.Lock). A path
// whose registration is still a lazy module may be registered again by that
// module.
func (c *Container) addCommandPath(path string, replace bool) error {
	segments := commands.Split(path)
	root := strings.ToLower(segments[0])

	if len(segments) == 1 && c.dispatchers[root] {
		delete(c.dispatchers, root)
		delete(c.registrations, commandKey(root))
		c.tree.Remove(segments[0])
	}

	if c.tree.Has(path) {
		if reg, ok := c.registrations[commandKey(path)]; ok && reg.kind != SourceModule && !replace {
			return &commands.DuplicateCommandError{Path: path}
		}
		return nil
	}
	if err := c.tree.Add(path); err != nil {
		return err
	}

	if len(segments) > 1 && !c.tree.Has(segments[0]) {
		if err := c.tree.Add(segments[0]); err != nil {
			return err
		}
		d := &dispatcher{c: c, root: segments[0]}
		c.dispatchers[root] = true
		c.put(&registration{name: commandKey(root), kind: SourceInstance, value: d, instance: d, resolved: true, singleton: true})
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// ResolveCommand returns the command registered under name, or (nil, nil)
// when there is none. Names are case-insensitive.
func (c *Container) ResolveCommand(name string) (commands.Command, error) {
	key := commandKey(name)
	if !c.Bound(key) {
		return nil, nil
	}
	instance, err := c.resolve(key, nil, c.path)
	if err != nil {
		return nil, err
	}
	cmd, ok := instance.(commands.Command)
	if !ok {
		return nil, &InvalidSourceError{Name: name, Reason: fmt.Sprintf("%T does not implement commands.Command", instance)}
	}
	return cmd, nil
}

// Commands returns the sorted registered command paths.
func (c *Container) Commands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Paths()
}

// HasCommand reports whether a command is registered under path.
func (c *Container) HasCommand(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Has(path)
}

// SubCommands returns the paths directly below path in registration order.
func (c *Container) SubCommands(path string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Children(path)
}

// BuildHierarchicalCommand maps root and args to the longest registered
// sub-command path. See commands.Tree.Build.
func (c *Container) BuildHierarchicalCommand(root string, args []string) *commands.Resolution {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Build(root, args)
}

// DefaultCommand returns the default sub-command of root.
func (c *Container) DefaultCommand(root string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.DefaultCommand(root)
}

// IsValidHierarchicalCommand reports whether root and args resolve to an
// executable sub-command.
//
// It returns false when root has no sub-commands, or when the arguments do not
// match any and root has an implementation of its own to run them. Arguments
// that do not reach a registered sub-command of a dispatcher root, or that
// stop at a command with sub-commands that cannot execute by itself, fail
// with an error wrapping commands.ErrInvalidCommand.
func (c *Container) IsValidHierarchicalCommand(ctx context.Context, root string, args []string) (bool, error) {
	c.mu.RLock()
	hasHierarchy := c.tree.HasHierarchy(root)
	explicitRoot := c.tree.Has(root) && !c.dispatchers[strings.ToLower(root)]
	res := c.tree.Build(root, args)
	_, hasDefault := c.tree.DefaultCommand(root)
	c.mu.RUnlock()

	if !hasHierarchy {
		return false, nil
	}
	if res == nil {
		switch {
		case len(args) == 0 && hasDefault:
			return true, nil
		case explicitRoot:
			return false, nil
		default:
			return false, &commands.InvalidSubCommandError{Root: root, Args: args}
		}
	}

	c.mu.RLock()
	hasChildren := c.tree.HasChildren(res.CommandName)
	hasDefaultChild := c.tree.HasDefaultChild(res.CommandName)
	c.mu.RUnlock()
	if !hasChildren || hasDefaultChild {
		return true, nil
	}

	cmd, err := c.ResolveCommand(res.CommandName)
	if err != nil {
		return false, err
	}
	if cmd != nil {
		if _, ok := cmd.(commands.Executable); ok {
			return true, nil
		}
		if len(cmd.AllowedParameters()) > 0 {
			return true, nil
		}
	}
	return false, &commands.InvalidSubCommandError{Root: root, Args: args}
}

// CommandFor returns the command name and arguments that root and args
// dispatch to.
func (c *Container) CommandFor(ctx context.Context, root string, args []string) (string, []string, error) {
	ok, err := c.IsValidHierarchicalCommand(ctx, root, args)
	if err != nil {
		return "", nil, err
	}
	if ok {
		if res := c.BuildHierarchicalCommand(root, args); res != nil {
			return res.CommandName, res.RemainingArguments, nil
		}
		if name, found := c.DefaultCommand(root); found {
			return name, args, nil
		}
	}
	return root, args, nil
}

// ExecuteCommand resolves and runs the command registered under name.
// Commands implementing commands.Executable decide whether args are
// acceptable; the others have args validated against AllowedParameters.
func (c *Container) ExecuteCommand(ctx context.Context, name string, args []string) error {
	cmd, err := c.ResolveCommand(name)
	if err != nil {
		return err
	}
	if cmd == nil {
		return &commands.UnknownCommandError{Name: name}
	}

	if ex, ok := cmd.(commands.Executable); ok {
		can, err := ex.CanExecute(ctx, args)
		if err != nil {
			return err
		}
		if !can {
			return fmt.Errorf("%w: %q cannot be executed with %q", commands.ErrInvalidCommand, name, args)
		}
	} else if err := commands.ValidateArguments(cmd.AllowedParameters(), args); err != nil {
		return err
	}

	c.log.Debug("executing command", zap.String("command", name), zap.Strings("args", args))
	return cmd.Execute(ctx, args)
}

// ── Dispatcher ────────────────────────────────────────────────────────────────

// dispatcher is the implicit implementation of a root that only has
// sub-commands.
type dispatcher struct {
	c    *Container
	root string
}

func (d *dispatcher) AllowedParameters() []commands.Parameter { return nil }

func (d *dispatcher) CanExecute(_ context.Context, _ []string) (bool, error) { return true, nil }

func (d *dispatcher) Execute(ctx context.Context, args []string) error {
	if res := d.c.BuildHierarchicalCommand(d.root, args); res != nil {
		return d.c.ExecuteCommand(ctx, res.CommandName, res.RemainingArguments)
	}
	if len(args) == 0 {
		if name, ok := d.c.DefaultCommand(d.root); ok {
			return d.c.ExecuteCommand(ctx, name, nil)
		}
	}
	return &commands.InvalidSubCommandError{Root: d.root, Args: args}
}
