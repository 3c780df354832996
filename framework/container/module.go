package container

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Module is a unit of lazily loaded registrations. Register runs the first
// time one of the names required from the module is resolved.
type Module interface {
	Register(c *Container) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(c *Container) error

func (f ModuleFunc) Register(c *Container) error { return f(c) }

// Catalog maps module paths to modules.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]Module)}
}

// Add stores m under path, replacing any previous module.
func (cat *Catalog) Add(path string, m Module) {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	cat.modules[path] = m
}

// Get returns the module stored under path.
func (cat *Catalog) Get(path string) (Module, bool) {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	m, ok := cat.modules[path]
	return m, ok
}

// Paths returns the sorted module paths.
func (cat *Catalog) Paths() []string {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	out := make([]string, 0, len(cat.modules))
	for p := range cat.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Catalog returns the module catalog used by Require.
func (c *Container) Catalog() *Catalog { return c.catalog }

// ── Require ───────────────────────────────────────────────────────────────────

// Require records that name is provided by the module at modulePath. Nothing
// is loaded until name is first resolved.
//
// Requiring a name that is already registered fails with
// *DuplicateRequireError unless override mode is on; with override the
// previous registration and its cached instance are dropped, and the module is
// loaded again on the next resolve.
func (c *Container) Require(name, modulePath string) error {
	name = NormalizeKey(name)
	if name == "" {
		return &InvalidSourceError{Name: name, Reason: "empty name"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.registrations[name]; exists {
		if !c.override {
			return &DuplicateRequireError{Name: name}
		}
		c.log.Debug("overriding registration", zap.String("name", name), zap.String("module", modulePath))
	}
	delete(c.loaded, modulePath)
	c.put(&registration{name: name, kind: SourceModule, module: modulePath, singleton: true})
	return nil
}

// RequirePublic is Require plus exposure of name on the public API.
func (c *Container) RequirePublic(name, modulePath string) error {
	if err := c.Require(name, modulePath); err != nil {
		return err
	}
	c.public.add(NormalizeKey(name))
	return nil
}

// load runs the module behind a lazy registration. The module is marked
// loaded only once Register succeeds, so a failing module is retried by the
// next resolve and the lazy registration stays in place until the module
// replaces it.
func (c *Container) load(reg *registration, path []string) error {
	mod, ok := c.catalog.Get(reg.module)
	if !ok {
		return &ModuleNotFoundError{Name: reg.name, Path: reg.module}
	}

	c.mu.RLock()
	already := c.loaded[reg.module]
	c.mu.RUnlock()

	if !already {
		c.log.Debug("loading module", zap.String("name", reg.name), zap.String("module", reg.module))
		view := c.at(path)
		if _, err := construct(reg.name, func() (any, error) { return nil, mod.Register(view) }); err != nil {
			return err
		}
		c.mu.Lock()
		c.loaded[reg.module] = true
		c.mu.Unlock()
	}

	c.mu.RLock()
	current, bound := c.registrations[reg.name]
	c.mu.RUnlock()
	if !bound || current == reg {
		return &UnresolvableError{Name: reg.name, RequiredBy: reg.module}
	}
	return nil
}
