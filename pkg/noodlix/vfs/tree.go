// Package vfs implements the permissioned in-memory file tree the shell
// operates on.
//
// Nodes live in an arena keyed by their canonical absolute path and each
// directory keeps the set of its child names. Callers never hold nodes;
// every read hands out an Entry copy.
package vfs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// Tree is the virtual filesystem. It is not safe for concurrent use; the
// shell drives it one command at a time.
type Tree struct {
	nodes  map[string]*node
	cwd    string
	user   *core.User
	now    func() time.Time
	logger zerolog.Logger
	bus    core.EventBus
}

// Option configures a Tree
type Option func(*Tree)

// WithLogger sets the logger used for mutation tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tree) { t.logger = logger }
}

// WithClock replaces time.Now for timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Tree) { t.now = now }
}

// WithEventBus publishes a core.EventTreeChanged event after each mutation
func WithEventBus(bus core.EventBus) Option {
	return func(t *Tree) { t.bus = bus }
}

// New creates a tree holding only the root directory
func New(opts ...Option) *Tree {
	t := &Tree{
		cwd:    vpath.Root,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.reset()
	return t
}

func (t *Tree) reset() {
	now := t.now()
	t.nodes = map[string]*node{
		vpath.Root: {
			name:        vpath.Root,
			typ:         core.NodeDir,
			owner:       "root",
			permissions: core.DefaultDirPermissions,
			createdAt:   now,
			modifiedAt:  now,
			children:    map[string]struct{}{},
		},
	}
	t.cwd = vpath.Root
}

// SetUser changes the identity permission checks run as. A nil user
// disables the checks.
func (t *Tree) SetUser(user *core.User) {
	if user == nil {
		t.user = nil
		return
	}
	u := *user
	t.user = &u
}

// User returns the active user, if any
func (t *Tree) User() (core.User, bool) {
	if t.user == nil {
		return core.User{}, false
	}
	return *t.user, true
}

// Home returns the active user's home directory, or the root
func (t *Tree) Home() string {
	if t.user == nil || t.user.HomeDirectory == "" {
		return vpath.Root
	}
	return vpath.Normalize(t.user.HomeDirectory)
}

// Resolve returns the canonical absolute form of a raw path
func (t *Tree) Resolve(raw string) string {
	return vpath.Resolve(raw, t.cwd, t.Home())
}

// Len returns the number of nodes, root included
func (t *Tree) Len() int {
	return len(t.nodes)
}

// lookup walks the arena by canonical path; a file used as a directory
// yields nothing because no key exists below it
func (t *Tree) lookup(abs string) (*node, bool) {
	n, ok := t.nodes[abs]
	return n, ok
}

// GetNode returns a copy of the node at path
func (t *Tree) GetNode(path string) (Entry, bool) {
	n, ok := t.lookup(t.Resolve(path))
	if !ok {
		return Entry{}, false
	}
	return n.entry(), true
}

// Exists reports whether path resolves to a node
func (t *Tree) Exists(path string) bool {
	_, ok := t.lookup(t.Resolve(path))
	return ok
}

// CurrentPath returns the cursor
func (t *Tree) CurrentPath() string {
	return t.cwd
}

// SetCurrentPath moves the cursor. It is a silent no-op unless the target is
// an existing directory the active user may execute.
func (t *Tree) SetCurrentPath(path string) {
	abs := t.Resolve(path)
	n, ok := t.lookup(abs)
	if !ok || !n.isDir() || !t.allowed(n, core.PermExecute) {
		return
	}
	t.cwd = abs
}

func (t *Tree) publish(op, path string) {
	t.logger.Debug().Str("op", op).Str("path", path).Msg("tree changed")
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(context.Background(), core.NewEvent(core.EventTreeChanged, core.TreeChange{Op: op, Path: path}))
}
