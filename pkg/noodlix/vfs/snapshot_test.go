package vfs

import (
	"strings"
	"testing"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	th := NewTestHelper(t)
	original := th.Tree()
	th.WriteFile("/home/alice/notes.txt", "line one\nline two", TestAlice)
	th.WriteFile("/tmp/empty", "", TestAdmin)

	data, err := original.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	restored := New()
	if err := restored.Load(data); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if restored.Len() != original.Len() {
		t.Errorf("Node count mismatch: %d vs %d", restored.Len(), original.Len())
	}

	for path, want := range original.nodes {
		got, ok := restored.GetNode(path)
		if !ok {
			t.Errorf("Missing %s after round trip", path)
			continue
		}
		e := want.entry()
		if got.Name != e.Name || got.Type != e.Type || got.Size != e.Size ||
			got.Owner != e.Owner || got.Permissions != e.Permissions || got.ParentPath != e.ParentPath {
			t.Errorf("Entry %s differs:\n  want %+v\n  got  %+v", path, e, got)
		}
		if !got.ModifiedAt.Equal(e.ModifiedAt) {
			t.Errorf("Timestamp of %s differs", path)
		}
	}

	content, err := restored.ReadFile("/home/alice/notes.txt")
	if err != nil || content != "line one\nline two" {
		t.Errorf("Unexpected content %q (%v)", content, err)
	}
}

func TestLoadRecomputesSizes(t *testing.T) {
	data := `{
		"name": "/", "type": "dir", "parentPath": "", "owner": "root", "permissions": "rwxr-xr-x",
		"createdAt": "2024-01-01T00:00:00Z", "modifiedAt": "2024-01-01T00:00:00Z",
		"children": {
			"f": {"name": "f", "type": "file", "parentPath": "/wrong", "owner": "root", "permissions": "rw-r--r--",
				"createdAt": "2024-01-01T00:00:00Z", "modifiedAt": "2024-01-01T00:00:00Z",
				"content": "12345", "size": 999}
		}
	}`

	tree := New()
	if err := tree.Load([]byte(data)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	e, ok := tree.GetNode("/f")
	if !ok {
		t.Fatal("Expected /f")
	}
	if e.Size != 5 {
		t.Errorf("Expected recomputed size 5, got %d", e.Size)
	}
	if e.ParentPath != "/" {
		t.Errorf("Expected recomputed parent path /, got %s", e.ParentPath)
	}
}

func TestLoadRejectsCorruptSnapshots(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"root is a file", `{"name":"/","type":"file","permissions":"rw-r--r--"}`},
		{"unknown type", `{"name":"/","type":"dir","permissions":"rwxr-xr-x","children":{"x":{"name":"x","type":"link","permissions":"rwxr-xr-x"}}}`},
		{"key mismatch", `{"name":"/","type":"dir","permissions":"rwxr-xr-x","children":{"x":{"name":"y","type":"dir","permissions":"rwxr-xr-x"}}}`},
		{"bad permissions", `{"name":"/","type":"dir","permissions":"bogus"}`},
		{"file with children", `{"name":"/","type":"dir","permissions":"rwxr-xr-x","children":{"f":{"name":"f","type":"file","permissions":"rw-r--r--","children":{}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestHelper(t)
			before := th.Tree().Len()

			err := th.Tree().Load([]byte(tt.data))
			AssertCode(t, err, core.CodeCorruptSnapshot)
			if th.Tree().Len() != before {
				t.Error("A rejected snapshot must leave the tree untouched")
			}
		})
	}
}

func TestSerializeUsesNestedFormat(t *testing.T) {
	tree := New()
	if err := tree.WriteFile("/hello", "hi", TestAdmin); err != nil {
		t.Fatal(err)
	}
	data, err := tree.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"children"`, `"parentPath"`, `"modifiedAt"`, `"content":"hi"`, `"size":2`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}
}
