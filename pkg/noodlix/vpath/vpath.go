// Package vpath resolves and normalizes paths of the virtual filesystem.
// Everything here is a pure string transform: nothing consults the tree
// and nothing fails.
package vpath

import (
	"path"
	"strings"
)

// Root is the canonical root path
const Root = "/"

// Resolve turns a raw user path into a canonical absolute path.
//
//	"/x/.."  -> Normalize(raw)
//	"~"      -> home
//	"~/x"    -> home + "/x"
//	"x"      -> cwd + "/x"
func Resolve(raw, cwd, home string) string {
	switch {
	case strings.HasPrefix(raw, "/"):
		return Normalize(raw)
	case raw == "~":
		return Normalize(home)
	case strings.HasPrefix(raw, "~/"):
		return Normalize(home + "/" + raw[2:])
	default:
		return Normalize(cwd + "/" + raw)
	}
}

// Normalize collapses empty and "." segments, applies ".." (absorbed at the
// root) and always returns a path starting with "/".
func Normalize(p string) string {
	// Rooting first makes Clean absorb leading ".." and turns "" into "/"
	return path.Clean(Root + p)
}

// Parent returns the parent of a canonical path; the root is its own parent
func Parent(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	return path.Dir(p)
}

// Base returns the last segment of a canonical path, or "/" for the root
func Base(p string) string {
	return path.Base(Normalize(p))
}

// Join appends a child name to a directory path
func Join(dir, name string) string {
	return Normalize(dir + "/" + name)
}

// Split returns the segments of a path, empty for the root
func Split(p string) []string {
	p = Normalize(p)
	if p == Root {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// IsWithin reports whether p equals dir or lies below it
func IsWithin(p, dir string) bool {
	p, dir = Normalize(p), Normalize(dir)
	if dir == Root || p == dir {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}

// Abbreviate replaces a leading home directory with "~"
func Abbreviate(p, home string) string {
	p = Normalize(p)
	if home == "" {
		return p
	}
	home = Normalize(home)
	switch {
	case home == Root:
		return p
	case p == home:
		return "~"
	case strings.HasPrefix(p, home+"/"):
		return "~" + p[len(home):]
	}
	return p
}
