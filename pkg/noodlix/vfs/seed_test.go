package vfs

import (
	"strings"
	"testing"

	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
)

func TestDefaultLayout(t *testing.T) {
	tree := NewDefault()

	for _, dir := range []string{"/home", "/root", "/tmp", "/etc", "/etc/shellcfg", "/etc/chef", "/bin"} {
		e, ok := tree.GetNode(dir)
		if !ok || !e.IsDir() {
			t.Errorf("Expected directory %s", dir)
		}
	}

	root, _ := tree.GetNode("/root")
	if root.Permissions != core.PrivateDirPermissions {
		t.Errorf("Expected /root to be private, got %s", root.Permissions)
	}
	tmp, _ := tree.GetNode("/tmp")
	if tmp.Permissions != "rwxrwxrwt" {
		t.Errorf("Unexpected /tmp permissions %s", tmp.Permissions)
	}

	aliases, err := tree.ReadFile("/etc/shellcfg/aliases")
	if err != nil || aliases != "" {
		t.Errorf("Expected an empty global alias file, got %q (%v)", aliases, err)
	}
	if _, ok := tree.GetNode("/etc/chef/ls.rcp"); !ok {
		t.Error("Expected the ls recipe")
	}
}

func TestSeedOrdersParentsFirst(t *testing.T) {
	layout, err := ParseLayout([]byte(`
entries:
  - path: /srv/app/config
    type: file
    content: "debug: false"
  - path: /srv/app
    type: dir
    owner: alice
  - path: /srv
    type: dir
`))
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}

	tree := New()
	if err := tree.Seed(layout); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	app, _ := tree.GetNode("/srv/app")
	if app.Owner != "alice" {
		t.Errorf("Expected owner alice, got %s", app.Owner)
	}
	cfg, _ := tree.GetNode("/srv/app/config")
	if cfg.Owner != "root" || cfg.Permissions != core.DefaultFilePermissions {
		t.Errorf("Expected defaults on config, got %+v", cfg)
	}
}

func TestSeedCollisions(t *testing.T) {
	tree := NewDefault()

	dirs, _ := ParseLayout([]byte("entries:\n  - path: /etc\n    type: dir\n"))
	if err := tree.Seed(dirs); err != nil {
		t.Errorf("Re-seeding an existing directory should be a no-op: %v", err)
	}

	files, _ := ParseLayout([]byte("entries:\n  - path: /etc/motd\n    type: file\n"))
	AssertCode(t, tree.Seed(files), core.CodeAlreadyExists)
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "entries: [", ""},
		{"root entry", "entries:\n  - path: /\n    type: dir\n", "root"},
		{"duplicate", "entries:\n  - path: /a\n    type: dir\n  - path: /a/\n    type: dir\n", "duplicate"},
		{"unknown type", "entries:\n  - path: /a\n    type: socket\n", "unknown type"},
		{"bad permissions", "entries:\n  - path: /a\n    type: dir\n    permissions: rwxrwxrwxrwx\n", "invalid permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.yaml))
			AssertCode(t, err, errs.CodeInvalidInput)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected %q in %v", tt.want, err)
			}
		})
	}
}
