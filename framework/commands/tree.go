// Package commands holds the command contracts and the hierarchical command
// tree used to translate (root, argv) into a registered command name.
//
// A command name is a path of segments joined by "|":
//
//	device                 → root command
//	device|android         → "device android"
//	device|*list           → default sub-command of "device"
//
// A segment prefixed with "*" is a default segment. It is selected when no
// sibling literal segment matches the next argument, and consumes an argument
// only when the argument names it literally ("device list").
package commands

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// Delimiter separates the segments of a hierarchical command path.
	Delimiter = "|"

	// DefaultSymbol marks a default segment.
	DefaultSymbol = "*"
)

// Resolution is the outcome of matching arguments against the tree.
type Resolution struct {
	CommandName        string
	RemainingArguments []string
}

type node struct {
	path       string // full path as first registered
	key        string // lower-cased segment without the default symbol
	isDefault  bool
	registered bool
	children   []*node
}

// match returns the literal child matching token, falling back to a
// default child named by token.
func (n *node) match(token string) *node {
	key := strings.ToLower(token)
	for _, c := range n.children {
		if !c.isDefault && c.key == key {
			return c
		}
	}
	for _, c := range n.children {
		if c.isDefault && c.key == key {
			return c
		}
	}
	return nil
}

func (n *node) defaultChild() *node {
	for _, c := range n.children {
		if c.isDefault {
			return c
		}
	}
	return nil
}

func (n *node) child(segment string) *node {
	isDefault, key := parseSegment(segment)
	for _, c := range n.children {
		if c.isDefault == isDefault && c.key == key {
			return c
		}
	}
	return nil
}

// Tree stores registered command paths.
//
// Segments are compared case-insensitively; names returned by the tree use
// the spelling of the first registration that created each node.
type Tree struct {
	roots map[string]*node
	nodes map[string]*node // lower-cased full path → node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		roots: make(map[string]*node),
		nodes: make(map[string]*node),
	}
}

// Split splits a command path into its segments.
func Split(path string) []string {
	return strings.Split(path, Delimiter)
}

// Join joins segments into a command path.
func Join(segments ...string) string {
	return strings.Join(segments, Delimiter)
}

// IsHierarchical reports whether path has more than one segment.
func IsHierarchical(path string) bool {
	return strings.Contains(path, Delimiter)
}

// Add registers path. Intermediate nodes are created as needed but are not
// registered themselves.
func (t *Tree) Add(path string) error {
	segments := Split(path)
	for _, s := range segments {
		if strings.TrimSpace(s) == "" || s == DefaultSymbol {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	if strings.HasPrefix(segments[0], DefaultSymbol) {
		return fmt.Errorf("%w: root of %q cannot be a default segment", ErrInvalidPath, path)
	}

	rootKey := strings.ToLower(segments[0])
	n, ok := t.roots[rootKey]
	if !ok {
		n = &node{path: segments[0], key: rootKey}
		t.roots[rootKey] = n
		t.nodes[rootKey] = n
	}
	for i, s := range segments[1:] {
		next := n.child(s)
		if next == nil {
			isDefault, key := parseSegment(s)
			next = &node{
				path:      n.path + Delimiter + s,
				key:       key,
				isDefault: isDefault,
			}
			n.children = append(n.children, next)
			t.nodes[strings.ToLower(Join(segments[:i+2]...))] = next
		}
		n = next
	}

	if n.registered {
		return &DuplicateCommandError{Path: path}
	}
	n.registered = true
	return nil
}

// Remove unregisters path. Nodes are kept so sibling order stays stable.
func (t *Tree) Remove(path string) {
	if n, ok := t.nodes[strings.ToLower(path)]; ok {
		n.registered = false
	}
}

// Has reports whether path is registered.
func (t *Tree) Has(path string) bool {
	n, ok := t.nodes[strings.ToLower(path)]
	return ok && n.registered
}

// Canonical returns the registered spelling of path.
func (t *Tree) Canonical(path string) (string, bool) {
	n, ok := t.nodes[strings.ToLower(path)]
	if !ok || !n.registered {
		return "", false
	}
	return n.path, true
}

// Paths returns every registered path, sorted.
func (t *Tree) Paths() []string {
	out := make([]string, 0, len(t.nodes))
	for _, n := range t.nodes {
		if n.registered {
			out = append(out, n.path)
		}
	}
	sort.Strings(out)
	return out
}

// HasHierarchy reports whether sub-commands are registered under root.
func (t *Tree) HasHierarchy(root string) bool {
	n, ok := t.roots[strings.ToLower(root)]
	return ok && len(n.children) > 0
}

// HasChildren reports whether any path is registered below path.
func (t *Tree) HasChildren(path string) bool {
	n, ok := t.nodes[strings.ToLower(path)]
	return ok && len(n.children) > 0
}

// HasDefaultChild reports whether path has a default sub-command.
func (t *Tree) HasDefaultChild(path string) bool {
	n, ok := t.nodes[strings.ToLower(path)]
	return ok && n.defaultChild() != nil
}

// Children returns the full paths directly below path in registration order.
func (t *Tree) Children(path string) []string {
	n, ok := t.nodes[strings.ToLower(path)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.path)
	}
	return out
}

// DefaultCommand returns the registered default sub-command of root, used
// when root is invoked without arguments.
func (t *Tree) DefaultCommand(root string) (string, bool) {
	n, ok := t.roots[strings.ToLower(root)]
	if !ok {
		return "", false
	}
	for d := n.defaultChild(); d != nil; d = d.defaultChild() {
		if d.registered {
			return d.path, true
		}
	}
	return "", false
}

// Build finds the longest registered path formed by root and the leading
// args. At every depth a literal segment matching the next argument wins
// over a default segment. Build returns nil when root has no sub-commands,
// args is empty or no sub-command path matches.
//
//	tree.Add("sample|command")
//	tree.Build("sample", []string{"CoMmanD", "x", "y"})
//	// &Resolution{CommandName: "sample|command", RemainingArguments: []string{"x", "y"}}
func (t *Tree) Build(root string, args []string) *Resolution {
	n, ok := t.roots[strings.ToLower(root)]
	if !ok || len(n.children) == 0 || len(args) == 0 {
		return nil
	}

	var best *node
	consumed, bestConsumed := 0, 0
	for {
		if consumed < len(args) {
			if next := n.match(args[consumed]); next != nil {
				n = next
				consumed++
				if n.registered {
					best, bestConsumed = n, consumed
				}
				continue
			}
		}
		if d := n.defaultChild(); d != nil {
			n = d
			if n.registered {
				best, bestConsumed = n, consumed
			}
			continue
		}
		break
	}

	if best == nil {
		return nil
	}
	return &Resolution{
		CommandName:        best.path,
		RemainingArguments: append([]string{}, args[bestConsumed:]...),
	}
}

func parseSegment(segment string) (isDefault bool, key string) {
	if strings.HasPrefix(segment, DefaultSymbol) {
		return true, strings.ToLower(strings.TrimPrefix(segment, DefaultSymbol))
	}
	return false, strings.ToLower(segment)
}
