package container

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/clikernel/framework/commands"
)

// ── Source types ──────────────────────────────────────────────────────────────

// Factory is a function that builds a value from the container.
type Factory func(c *Container) any

// Params maps dependency keys to values injected verbatim instead of being
// resolved. Keys may carry the sigil.
type Params map[string]any

// SourceKind tells how a registration produces its instance.
type SourceKind int

const (
	// SourceInstance is a pre-built value returned unchanged.
	SourceInstance SourceKind = iota
	// SourceConstructor is a function called with its resolved dependencies.
	SourceConstructor
	// SourceFactory is a Factory called with the container.
	SourceFactory
	// SourceModule is a lazy registration loaded from the module catalog.
	SourceModule
)

func (k SourceKind) String() string {
	switch k {
	case SourceInstance:
		return "instance"
	case SourceConstructor:
		return "constructor"
	case SourceFactory:
		return "factory"
	case SourceModule:
		return "module"
	default:
		return "unknown"
	}
}

// registration is a named binding. instance is owned by the registration
// once a singleton has been resolved.
type registration struct {
	name      string
	kind      SourceKind
	value     any
	ctor      *constructor
	factory   Factory
	module    string
	keys      []string
	singleton bool
	instance  any
	resolved  bool
	seq       int
}

// RegisterOption configures a registration.
type RegisterOption func(*registration)

// Deps lists the dependency keys of a constructor source, in parameter order.
//
//	c.Register("projectService", NewProjectService, container.Deps("$logger", "fs"))
func Deps(keys ...string) RegisterOption {
	return func(r *registration) { r.keys = keys }
}

// Transient makes every resolve build a fresh instance.
func Transient() RegisterOption {
	return func(r *registration) { r.singleton = false }
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the service container every subsystem is registered into and
// resolved from.
//
// It supports:
//   - Register / Bind / Singleton / Instance / Alias
//   - Resolve / Invoke / Make / Resolve[T] (generic)
//   - Require / RequirePublic (lazy modules from a Catalog)
//   - RegisterCommand / RequireCommand / hierarchical command resolution
//   - Contextual overrides (when A needs B, give it C)
//   - Dispose (tears down Disposable instances)
//
// Resolutions may run on several goroutines. Each resolve call carries its
// own build path, so concurrent builds never see each other as cycles.
type Container struct {
	*state

	// path holds the names being built by the resolve call that handed this
	// view to a factory or module. It is nil for the root container.
	path []string
}

// state is shared by a container and every view of it.
type state struct {
	mu sync.RWMutex

	root     *Container
	id       string
	log      *zap.Logger
	override bool
	seq      int

	// name → registration
	registrations map[string]*registration

	// alias → name (canonical key)
	aliases map[string]string

	// contextual: when[consumer][dependency] = factory
	contextual map[string]map[string]Factory

	// resolved callbacks: []func(name, instance)
	afterResolving []func(string, any)

	catalog     *Catalog
	loaded      map[string]bool // module paths already loaded
	tree        *commands.Tree
	dispatchers map[string]bool // roots served by the implicit hierarchical dispatcher
	public      *PublicAPI
	disposer    *disposer
}

// at returns a view of c resolving on behalf of path.
func (c *Container) at(path []string) *Container {
	return &Container{state: c.state, path: path}
}

// consumer returns the innermost name of path, or "".
func consumer(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// WithOverride allows Require to replace an existing registration.
func WithOverride(allow bool) Option {
	return func(c *Container) { c.override = allow }
}

// WithCatalog sets the module catalog used by Require.
func WithCatalog(cat *Catalog) Option {
	return func(c *Container) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{state: &state{
		id:      uuid.NewString(),
		log:     zap.NewNop(),
		catalog: NewCatalog(),
	}}
	c.root = c
	c.reset()
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("container", c.id))
	return c
}

// reset clears every registration and binds the container to itself.
func (c *Container) reset() {
	c.registrations = make(map[string]*registration)
	c.aliases = make(map[string]string)
	c.contextual = make(map[string]map[string]Factory)
	c.loaded = make(map[string]bool)
	c.tree = commands.NewTree()
	c.dispatchers = make(map[string]bool)
	c.public = newPublicAPI(c.root)
	c.disposer = &disposer{}
	c.put(&registration{name: "container", kind: SourceInstance, value: c.root, instance: c.root, resolved: true, singleton: true})
	c.aliases["injector"] = "container"
}

// ID returns the unique id of the container.
func (c *Container) ID() string { return c.id }

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger { return c.log }

// SetOverride toggles override mode for Require.
func (c *Container) SetOverride(allow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = allow
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds name to source. Nothing is constructed until resolved.
//
// The source kind is derived from its type:
//   - a Factory (func(*Container) any) is called with the container
//   - any other function is a constructor; its dependencies come from Deps
//   - anything else is a pre-built instance returned unchanged
//
// Registrations are singletons unless Transient is given. A later Register
// for the same name replaces the earlier one and drops its cached instance.
func (c *Container) Register(name string, source any, opts ...RegisterOption) error {
	reg, err := newRegistration(name, source, opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.put(reg)
	c.mu.Unlock()

	c.log.Debug("registered",
		zap.String("name", reg.name),
		zap.Stringer("source", reg.kind),
		zap.Bool("singleton", reg.singleton))
	return nil
}

func newRegistration(name string, source any, opts []RegisterOption) (*registration, error) {
	name = NormalizeKey(name)
	if name == "" {
		return nil, &InvalidSourceError{Name: name, Reason: "empty name"}
	}
	if source == nil {
		return nil, &InvalidSourceError{Name: name, Reason: "nil source"}
	}

	reg := &registration{name: name, singleton: true}
	for _, opt := range opts {
		opt(reg)
	}

	switch src := source.(type) {
	case Factory:
		reg.kind, reg.factory = SourceFactory, src
	case func(*Container) any:
		reg.kind, reg.factory = SourceFactory, src
	default:
		if isFunc(source) {
			ctor, err := inspect(name, source, reg.keys)
			if err != nil {
				return nil, err
			}
			reg.kind, reg.ctor = SourceConstructor, ctor
		} else {
			reg.kind, reg.value = SourceInstance, source
			reg.instance, reg.resolved = source, true
			reg.singleton = true
		}
	}
	if reg.kind != SourceConstructor && len(reg.keys) > 0 {
		return nil, &InvalidSourceError{Name: name, Reason: "dependency keys given for a " + reg.kind.String() + " source"}
	}
	return reg, nil
}

// put stores reg (must hold mu.Lock).
func (c *Container) put(reg *registration) {
	c.seq++
	reg.seq = c.seq
	c.registrations[reg.name] = reg
}

// Bind registers a transient source, panicking on an invalid source.
//
//	c.Bind("buildInfo", NewBuildInfo, "$projectData")
func (c *Container) Bind(name string, source any, deps ...string) {
	must(c.Register(name, source, Deps(deps...), Transient()))
}

// Singleton registers a source whose result is cached after first
// resolution, panicking on an invalid source.
//
//	c.Singleton("projectService", NewProjectService, "$logger", "fs")
func (c *Container) Singleton(name string, source any, deps ...string) {
	must(c.Register(name, source, Deps(deps...)))
}

// Instance registers a pre-built value. Functions are stored as values too.
func (c *Container) Instance(name string, instance any) {
	name = NormalizeKey(name)
	c.mu.Lock()
	c.put(&registration{name: name, kind: SourceInstance, value: instance, instance: instance, resolved: true, singleton: true})
	c.mu.Unlock()
}

// Alias registers an alternative name for a registration.
func (c *Container) Alias(name, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", name))
	}
	c.aliases[NormalizeKey(alias)] = c.canonical(NormalizeKey(name))
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	c.When("buildService").Needs("fs").Give(func(c *container.Container) any {
//	    return &dryRunFS{}
//	})
func (c *Container) When(consumer string) *ContextualBuilder {
	return &ContextualBuilder{container: c, consumer: NormalizeKey(consumer)}
}

// getContextual returns the contextual factory for (consumer, dependency), or nil.
func (c *Container) getContextual(consumer, dependency string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[consumer]; ok {
		return m[dependency]
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the instance registered under name.
//
// Constructor dependencies found in overrides are injected verbatim; the rest
// are resolved recursively. A missing registration anywhere in the graph
// fails with *UnresolvableError naming the missing key. Singletons are built
// once and the same instance is returned afterwards, whatever the overrides.
func (c *Container) Resolve(name string, overrides Params) (any, error) {
	return c.resolve(NormalizeKey(name), normalize(overrides), c.path)
}

// Invoke calls fn as an ad-hoc constructor: its dependencies are resolved
// from keys (or overrides) but fn itself is not registered or cached.
func (c *Container) Invoke(fn any, keys []string, overrides Params) (any, error) {
	ctor, err := inspect("<invoke>", fn, keys)
	if err != nil {
		return nil, err
	}
	args, err := c.arguments(ctor.deps, normalize(overrides), c.path)
	if err != nil {
		return nil, err
	}
	instance, err := construct("<invoke>", func() (any, error) { return ctor.call("<invoke>", args) })
	if err != nil {
		return nil, err
	}
	c.disposer.track("<invoke>", instance)
	return instance, nil
}

// Make resolves name and panics if it cannot be resolved.
//
//	logger := c.Make("logger").(*zap.Logger)
func (c *Container) Make(name string) any {
	instance, err := c.Resolve(name, nil)
	if err != nil {
		panic(err)
	}
	return instance
}

// resolve builds name on behalf of path, the names already being built by
// this call chain.
func (c *Container) resolve(name string, overrides Params, path []string) (any, error) {
	c.mu.RLock()
	key := c.canonical(name)
	c.mu.RUnlock()

	if by := consumer(path); by != "" {
		if f := c.getContextual(by, key); f != nil {
			// The factory resolves on behalf of no consumer, so it may
			// wrap the plain registration of the key it replaces.
			view := c.at(append(slices.Clone(path), ""))
			instance, err := construct(key, func() (any, error) { return f(view), nil })
			if err != nil {
				return nil, err
			}
			c.disposer.track(key, instance)
			return instance, nil
		}
	}

	c.mu.RLock()
	reg, ok := c.registrations[key]
	if ok && reg.resolved {
		instance := reg.instance
		c.mu.RUnlock()
		return instance, nil
	}
	c.mu.RUnlock()

	if !ok {
		return nil, &UnresolvableError{Name: key, RequiredBy: consumer(path)}
	}
	if reg.kind == SourceModule {
		if err := c.load(reg, path); err != nil {
			return nil, err
		}
		return c.resolve(key, overrides, path)
	}

	if slices.Contains(path, key) {
		cycle := slices.DeleteFunc(append(slices.Clone(path), key), func(n string) bool { return n == "" })
		return nil, &CircularDependencyError{Path: cycle}
	}
	instance, err := c.build(reg, overrides, append(slices.Clone(path), key))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if reg.singleton && c.registrations[key] == reg {
		if reg.resolved {
			// A concurrent call finished first; its instance wins and
			// this one is only kept for disposal.
			c.mu.Unlock()
			c.disposer.track(key, instance)
			return c.cached(reg), nil
		}
		reg.instance, reg.resolved = instance, true
	}
	callbacks := slices.Clone(c.afterResolving)
	c.mu.Unlock()

	c.disposer.track(key, instance)
	for _, cb := range callbacks {
		cb(key, instance)
	}
	c.log.Debug("resolved", zap.String("name", key), zap.Bool("singleton", reg.singleton))
	return instance, nil
}

func (c *Container) cached(reg *registration) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return reg.instance
}

// build runs the registration source. path ends with reg.name.
func (c *Container) build(reg *registration, overrides Params, path []string) (any, error) {
	switch reg.kind {
	case SourceConstructor:
		args, err := c.arguments(reg.ctor.deps, overrides, path)
		if err != nil {
			return nil, err
		}
		return construct(reg.name, func() (any, error) { return reg.ctor.call(reg.name, args) })
	case SourceFactory:
		view := c.at(path)
		return construct(reg.name, func() (any, error) { return reg.factory(view), nil })
	default:
		return reg.value, nil
	}
}

// arguments resolves deps in order on behalf of path.
func (c *Container) arguments(deps []Dependency, overrides Params, path []string) ([]any, error) {
	args := make([]any, len(deps))
	for i, d := range deps {
		if v, ok := overrides[d.Key]; ok {
			args[i] = v
			continue
		}
		v, err := c.resolve(d.Key, nil, path)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// construct runs fn, turning failures and panics into *ConstructionError.
// Resolution errors raised by nested Make calls are kept reachable via errors.As.
func construct(name string, fn func() (any, error)) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				cause = &PanicError{Value: rec}
			}
			instance, err = nil, &ConstructionError{Name: name, Err: cause}
		}
	}()

	instance, err = fn()
	if err != nil {
		var typeErr *DependencyTypeError
		if errors.As(err, &typeErr) {
			return nil, err
		}
		return nil, &ConstructionError{Name: name, Err: err}
	}
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether name has a registration.
func (c *Container) Bound(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[c.canonical(NormalizeKey(name))]
	return ok
}

// Resolved reports whether name holds a cached instance.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.registrations[c.canonical(NormalizeKey(name))]
	return ok && reg.resolved
}

// Forget removes the registration for name.
func (c *Container) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.registrations, c.canonical(NormalizeKey(name)))
}

// Names returns the sorted names of all service registrations. Command
// registrations are listed by Commands.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.registrations))
	for name := range c.registrations {
		if !isCommandKey(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Description is a read-only view of a registration.
type Description struct {
	Name         string   `json:"name"`
	Source       string   `json:"source"`
	Lifetime     string   `json:"lifetime"`
	Dependencies []string `json:"dependencies,omitempty"`
	Module       string   `json:"module,omitempty"`
	Resolved     bool     `json:"resolved"`
}

// Describe returns the description of the registration for name.
func (c *Container) Describe(name string) (Description, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.registrations[c.canonical(NormalizeKey(name))]
	if !ok {
		return Description{}, false
	}
	d := Description{
		Name:     reg.name,
		Source:   reg.kind.String(),
		Lifetime: "singleton",
		Module:   reg.module,
		Resolved: reg.resolved,
	}
	if !reg.singleton {
		d.Lifetime = "transient"
	}
	if reg.ctor != nil {
		for _, dep := range reg.ctor.deps {
			d.Dependencies = append(d.Dependencies, dep.Key)
		}
	}
	return d, true
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after every construction.
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve resolves name and type-asserts the result.
//
//	log, err := container.Resolve[*zap.Logger](c, "logger")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Resolve(name, nil)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, name, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure.
func MustResolve[T any](c *Container, name string) T {
	typed, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return typed
}

func normalize(overrides Params) Params {
	if len(overrides) == 0 {
		return nil
	}
	out := make(Params, len(overrides))
	for k, v := range overrides {
		out[NormalizeKey(k)] = v
	}
	return out
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
