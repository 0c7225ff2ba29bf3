package vfs

import (
	_ "embed"
	"fmt"

	"github.com/gammazero/toposort"
	"github.com/goccy/go-yaml"
	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

//go:embed layout.yaml
var defaultLayout []byte

// LayoutEntry describes one node of a seed layout
type LayoutEntry struct {
	Path        string        `yaml:"path"`
	Type        core.NodeType `yaml:"type"`
	Owner       string        `yaml:"owner"`
	Permissions string        `yaml:"permissions"`
	Content     string        `yaml:"content"`
}

// Layout is an initial filesystem description
type Layout struct {
	Entries []LayoutEntry `yaml:"entries"`
}

// ParseLayout decodes and validates a YAML layout
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidInput, "parse layout")
	}

	seen := make(map[string]bool, len(layout.Entries))
	for i := range layout.Entries {
		e := &layout.Entries[i]
		e.Path = vpath.Normalize(e.Path)
		if e.Path == vpath.Root {
			return nil, errs.Newf(errs.CodeInvalidInput, "layout entry %d: the root is implicit", i)
		}
		if seen[e.Path] {
			return nil, errs.Newf(errs.CodeInvalidInput, "layout entry %d: duplicate path %s", i, e.Path)
		}
		seen[e.Path] = true

		switch e.Type {
		case core.NodeDir:
			if e.Permissions == "" {
				e.Permissions = core.DefaultDirPermissions
			}
		case core.NodeFile:
			if e.Permissions == "" {
				e.Permissions = core.DefaultFilePermissions
			}
		default:
			return nil, errs.Newf(errs.CodeInvalidInput, "layout entry %s: unknown type %q", e.Path, e.Type)
		}
		if !ValidPermissions(e.Permissions) {
			return nil, errs.Newf(errs.CodeInvalidInput, "layout entry %s: invalid permissions %q", e.Path, e.Permissions)
		}
		if e.Owner == "" {
			e.Owner = "root"
		}
	}
	return &layout, nil
}

// DefaultLayout returns the built-in layout: /home, /root, /tmp, /etc with
// the message of the day, the global alias file and the chef recipes, /bin
func DefaultLayout() *Layout {
	layout, err := ParseLayout(defaultLayout)
	if err != nil {
		panic(fmt.Sprintf("embedded layout is invalid: %v", err))
	}
	return layout
}

// order sorts entries so that every parent comes before its children
func (l *Layout) order() ([]LayoutEntry, error) {
	index := make(map[string]int, len(l.Entries))
	for i, e := range l.Entries {
		index[e.Path] = i
	}

	// Edge is [2]interface{} where element 0 comes before element 1
	edges := make([]toposort.Edge, 0, len(l.Entries))
	for _, e := range l.Entries {
		if _, ok := index[vpath.Parent(e.Path)]; ok {
			edges = append(edges, toposort.Edge{vpath.Parent(e.Path), e.Path})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("layout ordering failed: %w", err)
	}

	ordered := make([]LayoutEntry, 0, len(l.Entries))
	added := make(map[string]bool, len(l.Entries))
	for _, v := range sorted {
		p, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type in topological sort result: %T", v)
		}
		if i, exists := index[p]; exists && !added[p] {
			ordered = append(ordered, l.Entries[i])
			added[p] = true
		}
	}
	// entries that are neither parent nor child of another entry
	for _, e := range l.Entries {
		if !added[e.Path] {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// Seed creates every layout entry, parents first, bypassing permission
// checks. Existing directories are kept; any other collision is an error.
func (t *Tree) Seed(layout *Layout) error {
	entries, err := layout.order()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if existing, ok := t.nodes[e.Path]; ok {
			if existing.isDir() && e.Type == core.NodeDir {
				continue
			}
			return core.NewPathError("seed", e.Path, core.CodeAlreadyExists)
		}
		_, parent, name, err := t.parentFor("seed", e.Path)
		if err != nil {
			return err
		}
		t.insert(parent, name, e.Type, e.Owner, e.Permissions, e.Content)
	}

	t.logger.Debug().Int("entries", len(entries)).Msg("layout seeded")
	t.publish("seed", vpath.Root)
	return nil
}

// NewDefault creates a tree seeded with the built-in layout
func NewDefault(opts ...Option) *Tree {
	t := New(opts...)
	if err := t.Seed(DefaultLayout()); err != nil {
		panic(fmt.Sprintf("seeding the default layout failed: %v", err))
	}
	return t
}
