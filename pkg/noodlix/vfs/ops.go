package vfs

import (
	"strings"

	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// parentFor resolves path and returns its canonical form, the parent
// directory and the new child name. Failures are reported against op.
func (t *Tree) parentFor(op, path string) (string, *node, string, error) {
	abs := t.Resolve(path)
	if abs == vpath.Root {
		return "", nil, "", core.NewPathError(op, path, core.CodeInvalidName)
	}
	name := vpath.Base(abs)
	parent, ok := t.lookup(vpath.Parent(abs))
	if !ok {
		return "", nil, "", core.NewPathError(op, path, core.CodeParentMissing)
	}
	if !parent.isDir() {
		return "", nil, "", core.NewPathError(op, path, core.CodeNotADirectory)
	}
	return abs, parent, name, nil
}

func (t *Tree) insert(parent *node, name string, typ core.NodeType, owner, perms, content string) *node {
	now := t.now()
	n := &node{
		name:        name,
		parentPath:  parent.path(),
		typ:         typ,
		owner:       owner,
		permissions: perms,
		createdAt:   now,
		modifiedAt:  now,
	}
	if typ == core.NodeDir {
		n.children = map[string]struct{}{}
	} else {
		n.content = content
	}
	parent.children[name] = struct{}{}
	parent.modifiedAt = now
	t.nodes[n.path()] = n
	return n
}

// CreateDirectory creates a single directory. An empty perms string applies
// the default "rwxr-xr-x". Requires write permission on the parent.
func (t *Tree) CreateDirectory(path, owner, perms string) (Entry, error) {
	if perms == "" {
		perms = core.DefaultDirPermissions
	}
	if !ValidPermissions(perms) {
		return Entry{}, core.NewPathError("mkdir", path, core.CodeInvalidMode)
	}
	abs, parent, name, err := t.parentFor("mkdir", path)
	if err != nil {
		return Entry{}, err
	}
	if !t.allowed(parent, core.PermWrite) {
		return Entry{}, core.NewPathError("mkdir", path, core.CodePermissionDenied)
	}
	if _, exists := t.nodes[abs]; exists {
		return Entry{}, core.NewPathError("mkdir", path, core.CodeAlreadyExists)
	}

	n := t.insert(parent, name, core.NodeDir, owner, perms, "")
	t.publish("mkdir", abs)
	return n.entry(), nil
}

// CreateFile creates a file with default permissions "rw-r--r--". Touching
// an existing file only refreshes its modification time; its content is
// left alone.
func (t *Tree) CreateFile(path, owner, content string) (Entry, error) {
	abs, parent, name, err := t.parentFor("touch", path)
	if err != nil {
		return Entry{}, err
	}
	if !t.allowed(parent, core.PermWrite) {
		return Entry{}, core.NewPathError("touch", path, core.CodePermissionDenied)
	}

	if existing, ok := t.nodes[abs]; ok {
		if existing.isDir() {
			return Entry{}, core.NewPathError("touch", path, core.CodeIsADirectory)
		}
		existing.modifiedAt = t.now()
		t.publish("touch", abs)
		return existing.entry(), nil
	}

	n := t.insert(parent, name, core.NodeFile, owner, core.DefaultFilePermissions, content)
	t.publish("touch", abs)
	return n.entry(), nil
}

// ReadFile returns the content of a file the active user may read
func (t *Tree) ReadFile(path string) (string, error) {
	n, ok := t.lookup(t.Resolve(path))
	if !ok {
		return "", core.NewPathError("read", path, core.CodeNotFound)
	}
	if n.isDir() {
		return "", core.NewPathError("read", path, core.CodeIsADirectory)
	}
	if !t.allowed(n, core.PermRead) {
		return "", core.NewPathError("read", path, core.CodePermissionDenied)
	}
	return n.content, nil
}

// WriteFile replaces the content of a file, creating it owned by user when
// missing. Permissions are checked against user rather than the active
// identity. Nothing changes unless every check passes.
func (t *Tree) WriteFile(path, content string, user core.User) error {
	abs := t.Resolve(path)
	if n, ok := t.nodes[abs]; ok {
		if n.isDir() {
			return core.NewPathError("write", path, core.CodeIsADirectory)
		}
		if !permitted(n.owner, n.permissions, user, core.PermWrite) {
			return core.NewPathError("write", path, core.CodePermissionDenied)
		}
		n.content = content
		n.modifiedAt = t.now()
		t.publish("write", abs)
		return nil
	}

	_, parent, name, err := t.parentFor("write", path)
	if err != nil {
		return err
	}
	if !permitted(parent.owner, parent.permissions, user, core.PermWrite) {
		return core.NewPathError("write", path, core.CodePermissionDenied)
	}
	t.insert(parent, name, core.NodeFile, user.Username, core.DefaultFilePermissions, content)
	t.publish("write", abs)
	return nil
}

// DeleteNode removes a file or directory. Protected system paths are refused
// before anything else. Non-empty directories need recursive.
func (t *Tree) DeleteNode(path string, recursive bool) error {
	abs := t.Resolve(path)
	if ProtectedPaths[abs] {
		return core.NewPathError("remove", abs, core.CodeSystemProtected)
	}
	n, ok := t.nodes[abs]
	if !ok {
		return core.NewPathError("remove", path, core.CodeNotFound)
	}
	parent, ok := t.nodes[n.parentPath]
	if !ok {
		// the arena lost a parent; refuse rather than orphan the subtree
		return errs.Newf(errs.CodeInternal, "remove %s: parent %s missing", path, n.parentPath)
	}
	if !t.allowed(n, core.PermWrite) || !t.allowed(parent, core.PermWrite) {
		return core.NewPathError("remove", path, core.CodePermissionDenied)
	}
	if n.isDir() && len(n.children) > 0 && !recursive {
		return core.NewPathError("remove", path, core.CodeNotEmpty)
	}

	prefix := abs + "/"
	for key := range t.nodes {
		if strings.HasPrefix(key, prefix) {
			delete(t.nodes, key)
		}
	}
	delete(t.nodes, abs)
	delete(parent.children, n.name)
	parent.modifiedAt = t.now()
	if vpath.IsWithin(t.cwd, abs) {
		t.cwd = parent.path()
	}
	t.publish("remove", abs)
	return nil
}
