package vfs

import (
	"fmt"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// DefaultHostname appears in prompts when none is configured
const DefaultHostname = "noodlix"

// InitializeForUser makes user the active identity and moves the cursor to
// their home directory, creating missing segments on the way. The segment
// named after the user is private. If the home path runs into a file the
// cursor falls back to the root.
func (t *Tree) InitializeForUser(user core.User) {
	t.SetUser(&user)
	home := t.Home()

	current := t.nodes[vpath.Root]
	for _, segment := range vpath.Split(home) {
		next, ok := t.nodes[vpath.Join(current.path(), segment)]
		if !ok {
			perms := core.DefaultDirPermissions
			if segment == user.Username {
				perms = core.PrivateDirPermissions
			}
			next = t.insert(current, segment, core.NodeDir, user.Username, perms, "")
			t.publish("mkdir", next.path())
		}
		if !next.isDir() {
			t.logger.Warn().Str("home", home).Str("segment", next.path()).Msg("home path is not a directory")
			t.cwd = vpath.Root
			return
		}
		current = next
	}
	t.cwd = home
}

// Prompt renders "user@host:path# " with the home directory shown as ~
func (t *Tree) Prompt(user core.User, host string) string {
	if host == "" {
		host = DefaultHostname
	}
	return fmt.Sprintf("%s@%s:%s# ", user.Username, host, vpath.Abbreviate(t.cwd, user.HomeDirectory))
}

// WelcomeMessage returns the login banner, including /etc/motd when the
// active user may read it
func (t *Tree) WelcomeMessage(host string) []string {
	if host == "" {
		host = DefaultHostname
	}
	lines := []string{fmt.Sprintf("Welcome to %s v1.0 (Bashimi Shell)", displayName(host))}
	if motd, err := t.ReadFile("/etc/motd"); err == nil {
		lines = append(lines, motd)
	}

	username, home := "guest", vpath.Root
	if t.user != nil {
		username, home = t.user.Username, t.Home()
	}
	return append(lines,
		"Current user: "+username,
		"Home directory: "+home,
		`Type "help" for a list of commands.`,
	)
}

func displayName(host string) string {
	if host == DefaultHostname {
		return "Noodlix"
	}
	return host
}
