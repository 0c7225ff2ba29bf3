package vpath

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		cwd  string
		home string
		want string
	}{
		{"absolute", "/etc/motd", "/tmp", "/root", "/etc/motd"},
		{"absolute with dots", "/a/./b/../c", "/", "/root", "/a/c"},
		{"tilde", "~", "/tmp", "/home/alice", "/home/alice"},
		{"tilde slash", "~/docs/../notes", "/tmp", "/home/alice", "/home/alice/notes"},
		{"tilde prefix without slash is relative", "~bob", "/home", "/root", "/home/~bob"},
		{"relative", "docs", "/home/alice", "/home/alice", "/home/alice/docs"},
		{"relative parent", "../bob", "/home/alice", "/home/alice", "/home/bob"},
		{"parent absorbed at root", "../../..", "/tmp", "/root", "/"},
		{"dot", ".", "/tmp", "/root", "/tmp"},
		{"empty is cwd", "", "/tmp", "/root", "/tmp"},
		{"duplicate slashes", "//a//b/", "/", "/root", "/a/b"},
		{"trailing slash", "dir/", "/tmp", "/root", "/tmp/dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.raw, tt.cwd, tt.home); got != tt.want {
				t.Errorf("Resolve(%q, %q, %q) = %q, want %q", tt.raw, tt.cwd, tt.home, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "/", ".", "..", "a/b/../c", "/x/./y//z/..", "~/weird", "/..", "a/../../b"}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
		if once[0] != '/' {
			t.Errorf("Normalize(%q) = %q does not start with /", in, once)
		}
		if again := Resolve(once, "/tmp", "/root"); again != once {
			t.Errorf("Resolve of canonical %q changed it to %q", once, again)
		}
	}
}

func TestHelpers(t *testing.T) {
	t.Run("Parent", func(t *testing.T) {
		cases := map[string]string{"/": "/", "/a": "/", "/a/b": "/a", "a/b/": "/a"}
		for in, want := range cases {
			if got := Parent(in); got != want {
				t.Errorf("Parent(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("Base", func(t *testing.T) {
		cases := map[string]string{"/": "/", "/a": "a", "/a/b.txt": "b.txt"}
		for in, want := range cases {
			if got := Base(in); got != want {
				t.Errorf("Base(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("Join", func(t *testing.T) {
		if got := Join("/", "etc"); got != "/etc" {
			t.Errorf("Join = %q", got)
		}
		if got := Join("/home/alice", "notes.txt"); got != "/home/alice/notes.txt" {
			t.Errorf("Join = %q", got)
		}
	})

	t.Run("Split", func(t *testing.T) {
		if got := Split("/"); len(got) != 0 {
			t.Errorf("Split(/) = %v", got)
		}
		if got := Split("/home/alice/docs"); !reflect.DeepEqual(got, []string{"home", "alice", "docs"}) {
			t.Errorf("Split = %v", got)
		}
	})

	t.Run("IsWithin", func(t *testing.T) {
		cases := []struct {
			p, dir string
			want   bool
		}{
			{"/home/alice", "/home", true},
			{"/home", "/home", true},
			{"/homework", "/home", false},
			{"/etc", "/", true},
			{"/", "/etc", false},
		}
		for _, c := range cases {
			if got := IsWithin(c.p, c.dir); got != c.want {
				t.Errorf("IsWithin(%q, %q) = %v, want %v", c.p, c.dir, got, c.want)
			}
		}
	})

	t.Run("Abbreviate", func(t *testing.T) {
		cases := []struct {
			p, home, want string
		}{
			{"/home/alice", "/home/alice", "~"},
			{"/home/alice/docs", "/home/alice", "~/docs"},
			{"/home/alicex", "/home/alice", "/home/alicex"},
			{"/etc", "/home/alice", "/etc"},
			{"/etc", "/", "/etc"},
			{"/etc", "", "/etc"},
		}
		for _, c := range cases {
			if got := Abbreviate(c.p, c.home); got != c.want {
				t.Errorf("Abbreviate(%q, %q) = %q, want %q", c.p, c.home, got, c.want)
			}
		}
	})
}
