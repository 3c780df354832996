package container

import (
	"sort"
	"sync"
)

// PublicAPI is the public-facing namespace of the container. Its entries are
// registered with RequirePublic and materialized on first access.
type PublicAPI struct {
	c     *Container
	mu    sync.RWMutex
	names map[string]bool
}

func newPublicAPI(c *Container) *PublicAPI {
	return &PublicAPI{c: c, names: make(map[string]bool)}
}

// PublicAPI returns the public namespace of the container.
func (c *Container) PublicAPI() *PublicAPI {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.public
}

func (p *PublicAPI) add(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[name] = true
}

// Has reports whether name is exposed.
func (p *PublicAPI) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names[NormalizeKey(name)]
}

// Get loads and resolves the exposed module name.
func (p *PublicAPI) Get(name string) (any, error) {
	name = NormalizeKey(name)
	if !p.Has(name) {
		return nil, &UnresolvableError{Name: name, RequiredBy: "public api"}
	}
	return p.c.Resolve(name, nil)
}

// Names returns the sorted exposed names.
func (p *PublicAPI) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
