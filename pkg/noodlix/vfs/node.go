package vfs

import (
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// node is the tree's private record. Directories keep the names of their
// children; the children themselves live in the arena under their own path.
type node struct {
	name        string
	parentPath  string
	typ         core.NodeType
	owner       string
	permissions string
	createdAt   time.Time
	modifiedAt  time.Time

	content  string              // files only
	children map[string]struct{} // directories only
}

func (n *node) isDir() bool { return n.typ == core.NodeDir }

func (n *node) path() string {
	if n.parentPath == "" {
		return vpath.Root
	}
	return vpath.Join(n.parentPath, n.name)
}

// childNames returns the children in name order
func (n *node) childNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *node) entry() Entry {
	e := Entry{
		Name:        n.name,
		Path:        n.path(),
		ParentPath:  n.parentPath,
		Type:        n.typ,
		Owner:       n.owner,
		Permissions: n.permissions,
		CreatedAt:   n.createdAt,
		ModifiedAt:  n.modifiedAt,
	}
	if !n.isDir() {
		e.Size = len(n.content)
	}
	return e
}

// Entry is a read-only copy of a node handed out to callers
type Entry struct {
	Name        string
	Path        string
	ParentPath  string
	Type        core.NodeType
	Owner       string
	Permissions string
	Size        int // byte length of the content; 0 for directories
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// IsDir reports whether the entry is a directory
func (e Entry) IsDir() bool { return e.Type == core.NodeDir }

// IsHidden reports whether the entry name starts with a dot
func (e Entry) IsHidden() bool { return strings.HasPrefix(e.Name, ".") }

// Mode renders the type character followed by the permission triplets,
// e.g. "drwxr-xr-x"
func (e Entry) Mode() string {
	if e.IsDir() {
		return "d" + e.Permissions
	}
	return "-" + e.Permissions
}

// ValidPermissions reports whether p is a 9-character rwx string
func ValidPermissions(p string) bool {
	if len(p) != 9 {
		return false
	}
	for i := 0; i < 9; i++ {
		want := "rwx"[i%3]
		if p[i] != want && p[i] != '-' && !(i%3 == 2 && (p[i] == 't' || p[i] == 's')) {
			return false
		}
	}
	return true
}
