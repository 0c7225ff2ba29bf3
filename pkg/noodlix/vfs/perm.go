package vfs

import "github.com/arthur-debert/noodlix/pkg/noodlix/core"

// ProtectedPaths can never be deleted, not even by an admin
var ProtectedPaths = map[string]bool{
	"/":     true,
	"/home": true,
	"/root": true,
	"/etc":  true,
	"/bin":  true,
	"/tmp":  true,
}

// CheckPermission reports whether user holds perm on the entry. Admins
// always pass. The owner is judged by the first triplet, everybody else by
// the last; the group triplet is never consulted.
func CheckPermission(e Entry, user core.User, perm core.Permission) bool {
	return permitted(e.Owner, e.Permissions, user, perm)
}

func permitted(owner, permissions string, user core.User, perm core.Permission) bool {
	if user.IsAdmin() {
		return true
	}
	offset := 6
	if user.Username == owner {
		offset = 0
	}
	i := offset + int(perm)
	return i < len(permissions) && permissions[i] == perm.Char()
}

// allowed checks perm for the active user; without one everything passes
func (t *Tree) allowed(n *node, perm core.Permission) bool {
	if t.user == nil {
		return true
	}
	return permitted(n.owner, n.permissions, *t.user, perm)
}

// Can reports whether the active user holds perm on path. A missing path
// is never permitted.
func (t *Tree) Can(path string, perm core.Permission) bool {
	n, ok := t.lookup(t.Resolve(path))
	return ok && t.allowed(n, perm)
}
