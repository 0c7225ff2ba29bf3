package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

var aliasDefinition = regexp.MustCompile(`^([a-zA-Z0-9_-]+)=(.*)$`)

const aliasUsage = "Usage: alias name='command'  (e.g., alias ll='ls -al')\n" +
	`   or: alias name="command" or alias name=command_no_spaces`

// quoteAlias renders a command the way it would have to be typed back in
func quoteAlias(command string) string {
	if strings.Contains(command, "'") {
		return `"` + strings.ReplaceAll(command, `"`, `\"`) + `"`
	}
	return "'" + command + "'"
}

func (b *builtins) alias(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	sh := inv.Shell
	if len(inv.Args) == 0 {
		return listAliases(sh), nil
	}

	m := aliasDefinition.FindStringSubmatch(strings.Join(inv.Args, " "))
	if m == nil {
		return shell.Outputf(aliasUsage), nil
	}
	name, command := m[1], unquote(m[2])

	err := sh.AddAlias(name, command)
	var persistErr *shell.PersistError
	switch {
	case err == nil:
		return shell.Output(), nil
	case errors.As(err, &persistErr):
		return shell.Output(fmt.Sprintf("alias: failed to save alias to %s: %s", persistErr.Path, core.Reason(persistErr.Err))), nil
	default:
		return shell.Output("alias: " + core.Message(err)), nil
	}
}

func listAliases(sh *shell.Processor) shell.Result {
	global, user := sh.GlobalAliases(), sh.UserAliases()
	var lines []string

	if len(global) > 0 {
		lines = append(lines, fmt.Sprintf("Global Aliases (%s):", shell.GlobalAliasFile))
		for _, a := range global {
			lines = append(lines, fmt.Sprintf("alias %s=%s", a.Name, quoteAlias(a.Command)))
		}
		if len(user) > 0 {
			lines = append(lines, "")
		}
	}
	if len(user) > 0 {
		lines = append(lines, fmt.Sprintf("User Aliases (%s):", sh.UserAliasFile()))
		for _, a := range user {
			line := fmt.Sprintf("alias %s=%s", a.Name, quoteAlias(a.Command))
			if sh.IsGlobalAlias(a.Name) {
				line += " (overrides global)"
			}
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return shell.Output("No aliases defined.")
	}
	return shell.Output(lines...)
}

func (b *builtins) unalias(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	name := inv.Arg(0)
	found, err := inv.Shell.RemoveAlias(name)
	if !found {
		return shell.Output(fmt.Sprintf("unalias: %s: not found", name)), nil
	}
	var persistErr *shell.PersistError
	if errors.As(err, &persistErr) {
		return shell.Output(fmt.Sprintf("unalias: %s removed for session, but failed to update %s: %s",
			name, persistErr.Path, core.Reason(persistErr.Err))), nil
	}
	return shell.Output(), err
}
