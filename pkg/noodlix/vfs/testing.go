package vfs

import (
	"testing"
	"time"

	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
)

// Fixed identities for tests
var (
	TestAdmin = core.User{Username: "root", Role: core.RoleAdmin, HomeDirectory: "/root"}
	TestAlice = core.User{Username: "alice", Role: core.RoleUser, HomeDirectory: "/home/alice"}
	TestBob   = core.User{Username: "bob", Role: core.RoleUser, HomeDirectory: "/home/bob"}
)

// TestClock is a manually advanced clock for WithClock
type TestClock struct {
	now time.Time
}

// NewTestClock starts a clock at a fixed instant
func NewTestClock() *TestClock {
	return &TestClock{now: time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (c *TestClock) Now() time.Time { return c.now }

// Advance moves the clock forward
func (c *TestClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// TestHelper provides utilities for testing code that drives a Tree
type TestHelper struct {
	t     *testing.T
	tree  *Tree
	clock *TestClock
}

// NewTestHelper creates a helper around a tree seeded with the default
// layout and the homes of TestAlice and TestBob
func NewTestHelper(t *testing.T, opts ...Option) *TestHelper {
	t.Helper()

	clock := NewTestClock()
	tree := NewDefault(append([]Option{WithClock(clock.Now)}, opts...)...)
	for _, u := range []core.User{TestAlice, TestBob} {
		if _, err := tree.CreateDirectory(u.HomeDirectory, u.Username, core.PrivateDirPermissions); err != nil {
			t.Fatalf("Failed to create home for %s: %v", u.Username, err)
		}
	}
	return &TestHelper{t: t, tree: tree, clock: clock}
}

// Tree returns the tree under test
func (th *TestHelper) Tree() *Tree {
	return th.tree
}

// Clock returns the fake clock driving timestamps
func (th *TestHelper) Clock() *TestClock {
	return th.clock
}

// LoginAs makes user the active identity and moves to their home
func (th *TestHelper) LoginAs(user core.User) *TestHelper {
	th.tree.InitializeForUser(user)
	return th
}

// WriteFile writes content as the admin, bypassing permissions
func (th *TestHelper) WriteFile(path, content string, owner core.User) {
	th.t.Helper()

	if err := th.tree.WriteFile(path, content, TestAdmin); err != nil {
		th.t.Fatalf("Failed to write %s: %v", path, err)
	}
	if n, ok := th.tree.nodes[th.tree.Resolve(path)]; ok {
		n.owner = owner.Username
	}
}

// Chmod replaces the permission string of a node
func (th *TestHelper) Chmod(path, perms string) {
	th.t.Helper()

	n, ok := th.tree.nodes[th.tree.Resolve(path)]
	if !ok {
		th.t.Fatalf("Cannot chmod %s: no such node", path)
	}
	n.permissions = perms
}

// AssertFileContent verifies that a file exists with the given content
func (th *TestHelper) AssertFileContent(path, expected string) {
	th.t.Helper()

	n, ok := th.tree.nodes[th.tree.Resolve(path)]
	if !ok {
		th.t.Fatalf("Expected file %s to exist", path)
	}
	if n.isDir() {
		th.t.Fatalf("Expected %s to be a file, but it's a directory", path)
	}
	if n.content != expected {
		th.t.Errorf("File %s content mismatch.\nExpected: %q\nGot: %q", path, expected, n.content)
	}
}

// AssertDirExists verifies that a directory exists
func (th *TestHelper) AssertDirExists(path string) {
	th.t.Helper()

	e, ok := th.tree.GetNode(path)
	if !ok {
		th.t.Fatalf("Expected directory %s to exist", path)
	}
	if !e.IsDir() {
		th.t.Fatalf("Expected %s to be a directory, but it's a file", path)
	}
}

// AssertNotExists verifies that a path does not exist
func (th *TestHelper) AssertNotExists(path string) {
	th.t.Helper()

	if _, ok := th.tree.GetNode(path); ok {
		th.t.Fatalf("Expected %s to not exist, but it does", path)
	}
}

// AssertCode verifies that err carries the given code
func AssertCode(t *testing.T, err error, code errs.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", code)
	}
	if got := core.CodeOf(err); got != code {
		t.Fatalf("Expected error code %s, got %s (%v)", code, got, err)
	}
}
