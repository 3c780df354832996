package container

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Disposable is implemented by instances that hold resources to release when
// the container is disposed.
type Disposable interface {
	Dispose() error
}

type tracked struct {
	name string
	d    Disposable
}

// disposer keeps every produced disposable in production order.
type disposer struct {
	mu    sync.Mutex
	items []tracked
}

func (d *disposer) track(name string, instance any) {
	disp, ok := instance.(Disposable)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !seen(d.items, disp) {
		d.items = append(d.items, tracked{name: name, d: disp})
	}
}

func (d *disposer) drain() []tracked {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := d.items
	d.items = nil
	return items
}

// seen reports whether disp is already in items.
func seen(items []tracked, disp Disposable) bool {
	for _, it := range items {
		if sameInstance(it.d, disp) {
			return true
		}
	}
	return false
}

// sameInstance compares comparable values by identity. Maps and slices
// compare by backing storage. Other non-comparable values have no identity,
// so equal contents count as the same instance.
func sameInstance(a, b Disposable) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Dispose calls Dispose on every disposable instance the container produced,
// each exactly once and in production order, then clears every registration.
// Pre-built instances are disposed before built ones, in registration order.
// Failures are joined; disposal continues past them. Calling Dispose again is
// a no-op.
func (c *Container) Dispose() error {
	c.mu.Lock()
	regs := make([]*registration, 0, len(c.registrations))
	for _, reg := range c.registrations {
		if reg.kind == SourceInstance && reg.value != any(c.root) {
			regs = append(regs, reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].seq < regs[j].seq })

	var items []tracked
	for _, reg := range regs {
		if disp, ok := reg.value.(Disposable); ok && !seen(items, disp) {
			items = append(items, tracked{name: reg.name, d: disp})
		}
	}
	for _, it := range c.disposer.drain() {
		if !seen(items, it.d) {
			items = append(items, it)
		}
	}
	c.reset()
	c.mu.Unlock()

	var errs []error
	for _, it := range items {
		if err := it.d.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("dispose %q: %w", it.name, err))
		}
	}
	c.log.Debug("disposed", zap.Int("instances", len(items)), zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}
