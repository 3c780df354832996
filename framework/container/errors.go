package container

import (
	"fmt"
	"strconv"
	"strings"
)

// UnresolvableError is returned when a name has no registration.
type UnresolvableError struct {
	// Name is the missing key.
	Name string

	// RequiredBy is the registration that depends on Name, if any.
	RequiredBy string
}

func (e *UnresolvableError) Error() string {
	// Example: container: unable to resolve dependency "logger" required by "projectService"
	msg := "container: unable to resolve dependency " + strconv.Quote(e.Name)
	if e.RequiredBy != "" {
		msg += " required by " + strconv.Quote(e.RequiredBy)
	}
	return msg
}

// DuplicateRequireError is returned by Require when the name is already
// registered and override mode is off.
type DuplicateRequireError struct{ Name string }

func (e *DuplicateRequireError) Error() string {
	return "container: module " + strconv.Quote(e.Name) + " require'd twice"
}

// CircularDependencyError reports a dependency cycle. Path ends with the
// name that closed the cycle.
type CircularDependencyError struct{ Path []string }

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Path, " -> ")
}

// ConstructionError wraps a constructor or factory failure.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return "container: constructing " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// ModuleNotFoundError is returned when a required module path is not in the catalog.
type ModuleNotFoundError struct {
	Name string
	Path string
}

func (e *ModuleNotFoundError) Error() string {
	return "container: module " + strconv.Quote(e.Path) + " for " + strconv.Quote(e.Name) + " not found"
}

// InvalidSourceError is returned when a registration source cannot be used.
type InvalidSourceError struct {
	Name   string
	Reason string
}

func (e *InvalidSourceError) Error() string {
	return "container: invalid source for " + strconv.Quote(e.Name) + ": " + e.Reason
}

// DependencyTypeError is returned when a resolved dependency is not
// assignable to the constructor parameter it is injected into.
type DependencyTypeError struct {
	Name string
	Key  string
	Want string
	Got  string
}

func (e *DependencyTypeError) Error() string {
	return "container: dependency " + strconv.Quote(e.Key) + " of " + strconv.Quote(e.Name) +
		" is " + e.Got + ", want " + e.Want
}

// PanicError carries the value recovered from a panicking constructor.
type PanicError struct{ Value any }

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
