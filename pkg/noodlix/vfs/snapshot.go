package vfs

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// snapshotNode is the persisted shape of a node: the nested tree with
// children keyed by name
type snapshotNode struct {
	Name        string                   `json:"name"`
	Type        core.NodeType            `json:"type"`
	ParentPath  string                   `json:"parentPath"`
	Owner       string                   `json:"owner"`
	Permissions string                   `json:"permissions"`
	CreatedAt   time.Time                `json:"createdAt"`
	ModifiedAt  time.Time                `json:"modifiedAt"`
	Content     *string                  `json:"content,omitempty"`
	Size        *int                     `json:"size,omitempty"`
	Children    map[string]*snapshotNode `json:"children,omitempty"`
}

// Serialize encodes the whole tree as nested JSON
func (t *Tree) Serialize() ([]byte, error) {
	data, err := sonic.Marshal(t.snapshot(t.nodes[vpath.Root]))
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "encode snapshot")
	}
	return data, nil
}

func (t *Tree) snapshot(n *node) *snapshotNode {
	s := &snapshotNode{
		Name:        n.name,
		Type:        n.typ,
		ParentPath:  n.parentPath,
		Owner:       n.owner,
		Permissions: n.permissions,
		CreatedAt:   n.createdAt,
		ModifiedAt:  n.modifiedAt,
	}
	if !n.isDir() {
		content, size := n.content, len(n.content)
		s.Content, s.Size = &content, &size
		return s
	}
	s.Children = make(map[string]*snapshotNode, len(n.children))
	base := n.path()
	for name := range n.children {
		s.Children[name] = t.snapshot(t.nodes[vpath.Join(base, name)])
	}
	return s
}

// Load replaces the tree with a serialized snapshot. The snapshot is
// validated as a whole first; on error the current tree is untouched.
// Stored sizes and parent paths are ignored and recomputed.
func (t *Tree) Load(data []byte) error {
	var root snapshotNode
	if err := sonic.Unmarshal(data, &root); err != nil {
		return errs.Wrap(err, core.CodeCorruptSnapshot, "decode snapshot")
	}
	if root.Type != core.NodeDir {
		return errs.Newf(core.CodeCorruptSnapshot, "snapshot root has type %q", root.Type)
	}

	nodes := make(map[string]*node)
	if err := restore(nodes, &root, vpath.Root, ""); err != nil {
		return err
	}

	t.nodes = nodes
	if n, ok := t.nodes[t.cwd]; !ok || !n.isDir() {
		t.cwd = vpath.Root
	}
	t.logger.Debug().Int("nodes", len(nodes)).Msg("snapshot loaded")
	if t.bus != nil {
		_ = t.bus.Publish(context.Background(), core.NewEvent(core.EventTreeLoaded, core.TreeChange{Op: "load", Path: vpath.Root}))
	}
	return nil
}

func restore(nodes map[string]*node, s *snapshotNode, abs, parentPath string) error {
	if s == nil {
		return errs.Newf(core.CodeCorruptSnapshot, "%s: empty node", abs)
	}
	if !ValidPermissions(s.Permissions) {
		return errs.Newf(core.CodeCorruptSnapshot, "%s: invalid permissions %q", abs, s.Permissions)
	}

	name := s.Name
	if abs == vpath.Root {
		name = vpath.Root
	}
	n := &node{
		name:        name,
		parentPath:  parentPath,
		typ:         s.Type,
		owner:       s.Owner,
		permissions: s.Permissions,
		createdAt:   s.CreatedAt,
		modifiedAt:  s.ModifiedAt,
	}

	switch s.Type {
	case core.NodeFile:
		if s.Children != nil {
			return errs.Newf(core.CodeCorruptSnapshot, "%s: file with children", abs)
		}
		if s.Content != nil {
			n.content = *s.Content
		}
	case core.NodeDir:
		n.children = make(map[string]struct{}, len(s.Children))
		for key, child := range s.Children {
			if child == nil || key == "" || key != child.Name || strings.Contains(key, "/") || key == "." || key == ".." {
				return errs.Newf(core.CodeCorruptSnapshot, "%s: invalid child %q", abs, key)
			}
			if err := restore(nodes, child, vpath.Join(abs, key), abs); err != nil {
				return err
			}
			n.children[key] = struct{}{}
		}
	default:
		return errs.Newf(core.CodeCorruptSnapshot, "%s: unknown node type %q", abs, s.Type)
	}

	nodes[abs] = n
	return nil
}
