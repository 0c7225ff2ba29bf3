package core

import "time"

// NodeType distinguishes files from directories in the virtual tree
type NodeType string

const (
	// NodeFile is a regular text file
	NodeFile NodeType = "file"
	// NodeDir is a directory
	NodeDir NodeType = "dir"
)

// String returns the string representation of the NodeType
func (t NodeType) String() string {
	switch t {
	case NodeFile:
		return "file"
	case NodeDir:
		return "directory"
	default:
		return "unknown"
	}
}

// Role is the privilege level of a user
type Role string

const (
	// RoleAdmin bypasses every permission check
	RoleAdmin Role = "admin"
	// RoleUser is subject to owner/other permission triplets
	RoleUser Role = "user"
)

// User is the identity a session acts as. It is provided by the identity
// collaborator and never persisted by the filesystem or the shell.
type User struct {
	Username      string    `json:"username"`
	Role          Role      `json:"role"`
	HomeDirectory string    `json:"homeDirectory"`
	LastLogin     time.Time `json:"lastLogin,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Permission is one of the three rwx capabilities
type Permission int

const (
	// PermRead maps to 'r'
	PermRead Permission = iota
	// PermWrite maps to 'w'
	PermWrite
	// PermExecute maps to 'x'
	PermExecute
)

// Char returns the rwx character for the permission
func (p Permission) Char() byte {
	switch p {
	case PermRead:
		return 'r'
	case PermWrite:
		return 'w'
	default:
		return 'x'
	}
}

// String returns the permission name
func (p Permission) String() string {
	switch p {
	case PermRead:
		return "read"
	case PermWrite:
		return "write"
	default:
		return "execute"
	}
}

// Default permission strings
const (
	// DefaultDirPermissions is applied by mkdir
	DefaultDirPermissions = "rwxr-xr-x"
	// DefaultFilePermissions is applied to newly created files
	DefaultFilePermissions = "rw-r--r--"
	// PrivateDirPermissions is applied to home directories
	PrivateDirPermissions = "rwx------"
)

// Storage keys of the persisted state
const (
	// FilesystemKey holds the serialized tree snapshot
	FilesystemKey = "noodlix_filesystem"
	// UsersKey holds the serialized user table
	UsersKey = "noodlix_users"
)
