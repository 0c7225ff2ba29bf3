package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

const (
	helpWidth     = 78
	helpNameWidth = 12
)

func (b *builtins) help(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	lines := []string{"Available commands:"}
	for _, cmd := range inv.Shell.Registry().Commands() {
		lines = append(lines, helpEntry(cmd)...)
	}
	return shell.Output(lines...), nil
}

// helpEntry word-wraps one command's description under a fixed-width name
// column
func helpEntry(cmd shell.Command) []string {
	prefix := fmt.Sprintf("  %-*s - ", helpNameWidth, cmd.Name)
	indent := strings.Repeat(" ", len(prefix))
	width := helpWidth - len(prefix)

	desc := cmd.Description
	if cmd.Usage != "" {
		desc += fmt.Sprintf(" (Usage: %s %s)", cmd.Name, cmd.Usage)
	}

	var out, line []string
	length := 0
	flush := func() {
		lead := indent
		if len(out) == 0 {
			lead = prefix
		}
		out = append(out, lead+strings.Join(line, " "))
	}
	for _, word := range strings.Split(desc, " ") {
		add := len(word)
		if len(line) > 0 {
			add++
		}
		if length+add <= width {
			line = append(line, word)
			length += add
			continue
		}
		flush()
		line, length = []string{word}, len(word)
	}
	if len(line) > 0 {
		flush()
	}
	return out
}

func (b *builtins) whoami(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	return shell.Output(inv.User.Username), nil
}

func (b *builtins) pwd(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	return shell.Output(inv.Tree.CurrentPath()), nil
}
