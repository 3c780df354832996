package commands

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCommand is wrapped by errors reporting arguments that do not
	// form an executable hierarchical command.
	ErrInvalidCommand = errors.New("commands: invalid command")

	// ErrInvalidPath is wrapped by errors reporting malformed command paths.
	ErrInvalidPath = errors.New("commands: invalid command path")

	// ErrNoCommand is returned when the kernel is invoked without a command.
	ErrNoCommand = errors.New("commands: no command given")
)

// UnknownCommandError is returned when no command is registered under Name.
type UnknownCommandError struct{ Name string }

func (e *UnknownCommandError) Error() string {
	return "commands: unknown command " + strconv.Quote(e.Name)
}

// DuplicateCommandError is returned when a full command path is registered twice.
type DuplicateCommandError struct{ Path string }

func (e *DuplicateCommandError) Error() string {
	return "commands: command " + strconv.Quote(e.Path) + " already registered"
}

// InvalidSubCommandError reports arguments that partially match the
// hierarchy registered under Root without reaching an executable node.
type InvalidSubCommandError struct {
	Root string
	Args []string
}

func (e *InvalidSubCommandError) Error() string {
	return "commands: the input is not a valid sub-command for " + strconv.Quote(e.Root) + " command"
}

func (e *InvalidSubCommandError) Unwrap() error { return ErrInvalidCommand }

// ArgumentError holds argument validation messages keyed by parameter name.
type ArgumentError struct {
	Bag map[string][]string
}

func (e *ArgumentError) add(name, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[name] = append(e.Bag[name], msg)
}

// First returns the first message recorded for a parameter.
func (e *ArgumentError) First(name string) string {
	if msgs := e.Bag[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e *ArgumentError) Error() string {
	names := make([]string, 0, len(e.Bag))
	for name := range e.Bag {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Bag[name]...)
	}
	return strings.Join(msgs, " ")
}
