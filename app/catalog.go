package app

import (
	"github.com/km-arc/clikernel/framework/container"
)

// ServiceCatalog is the public module describing the container's
// registrations. It is exposed as "serviceCatalog".
type ServiceCatalog struct {
	c *container.Container
}

// NewServiceCatalog returns a catalog over c.
func NewServiceCatalog(c *container.Container) *ServiceCatalog {
	return &ServiceCatalog{c: c}
}

// List describes every registration, sorted by name.
func (s *ServiceCatalog) List() []container.Description {
	names := s.c.Names()
	out := make([]container.Description, 0, len(names))
	for _, name := range names {
		if d, ok := s.c.Describe(name); ok {
			out = append(out, d)
		}
	}
	return out
}

// Describe describes one registration.
func (s *ServiceCatalog) Describe(name string) (container.Description, error) {
	d, ok := s.c.Describe(name)
	if !ok {
		return container.Description{}, &container.UnresolvableError{Name: name}
	}
	return d, nil
}
