package vfs

import (
	"context"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// ListDirectory returns the children of a directory sorted by name. Hidden
// names are skipped unless showHidden is set, which also puts the "." entry
// and, below the root, the ".." entry ahead of the children.
func (t *Tree) ListDirectory(path string, showHidden bool) ([]Entry, error) {
	abs := t.Resolve(path)
	n, ok := t.lookup(abs)
	if !ok {
		return nil, core.NewPathError("list", path, core.CodeNotFound)
	}
	if !n.isDir() {
		return nil, core.NewPathError("list", path, core.CodeNotADirectory)
	}
	if !t.allowed(n, core.PermRead) {
		return nil, core.NewPathError("list", path, core.CodePermissionDenied)
	}

	children := make([]Entry, 0, len(n.children))
	for name := range n.children {
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		children = append(children, t.nodes[vpath.Join(abs, name)].entry())
	}
	sortEntries(children)
	if !showHidden {
		return children, nil
	}

	self := n.entry()
	self.Name = "."
	entries := append(make([]Entry, 0, len(children)+2), self)
	if abs != vpath.Root {
		if parent, ok := t.lookup(vpath.Parent(abs)); ok {
			up := parent.entry()
			up.Name = ".."
			entries = append(entries, up)
		}
	}
	return append(entries, children...), nil
}

// sortEntries orders case-insensitively, falling back to byte order so that
// the result is stable
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a != b {
			return a < b
		}
		return entries[i].Name < entries[j].Name
	})
}

// Walk visits dir and everything below it depth-first in name order.
// Directories the active user may not read are reported but not entered.
func (t *Tree) Walk(ctx context.Context, dir string, fn func(Entry) error) error {
	abs := t.Resolve(dir)
	n, ok := t.lookup(abs)
	if !ok {
		return core.NewPathError("walk", dir, core.CodeNotFound)
	}
	return t.walk(ctx, n, fn)
}

func (t *Tree) walk(ctx context.Context, n *node, fn func(Entry) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := fn(n.entry()); err != nil {
		return err
	}
	if !n.isDir() || !t.allowed(n, core.PermRead) {
		return nil
	}
	base := n.path()
	for _, name := range n.childNames() {
		if err := t.walk(ctx, t.nodes[vpath.Join(base, name)], fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the canonical paths below dir matching a doublestar pattern.
// Patterns without a slash match the entry name; patterns with one match the
// path relative to dir.
func (t *Tree) Find(ctx context.Context, dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errs.Wrapf(doublestar.ErrBadPattern, errs.CodeInvalidInput, "invalid pattern %q", pattern)
	}
	abs := t.Resolve(dir)
	n, ok := t.lookup(abs)
	if !ok {
		return nil, core.NewPathError("find", dir, core.CodeNotFound)
	}
	if !n.isDir() {
		return nil, core.NewPathError("find", dir, core.CodeNotADirectory)
	}
	if !t.allowed(n, core.PermRead) {
		return nil, core.NewPathError("find", dir, core.CodePermissionDenied)
	}

	byPath := strings.Contains(pattern, "/")
	var matches []string
	err := t.walk(ctx, n, func(e Entry) error {
		if e.Path == abs {
			return nil
		}
		subject := e.Name
		if byPath {
			subject = strings.TrimPrefix(strings.TrimPrefix(e.Path, abs), "/")
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			matches = append(matches, e.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
