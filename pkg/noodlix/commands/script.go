package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

// unquote strips one pair of matching surrounding quotes
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (b *builtins) js(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	source := strings.TrimSpace(unquote(strings.Join(inv.Args, " ")))

	out, err := b.deps.Scripts.Run(ctx, "js", source)
	if err != nil {
		return shell.Output("Error: " + core.Message(err)), nil
	}

	lines := out.Lines
	if out.HasValue && out.Value != "" && (len(lines) == 0 || lines[len(lines)-1] != out.Value) {
		lines = append(lines, out.Value)
	}
	return shell.Output(lines...), nil
}

func (b *builtins) jsrun(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	arg := inv.Arg(0)
	e, ok := inv.Tree.GetNode(arg)
	switch {
	case !ok:
		return shell.Output(fmt.Sprintf("jsrun: %s: No such file or directory", arg)), nil
	case e.IsDir():
		return shell.Output(fmt.Sprintf("jsrun: %s: Is not a file", arg)), nil
	case !inv.Tree.Can(arg, core.PermRead):
		return shell.Output(fmt.Sprintf("jsrun: %s: Permission denied", arg)), nil
	}

	source, err := inv.Tree.ReadFile(arg)
	if err != nil {
		return shell.Output(fmt.Sprintf("jsrun: %s: Error reading file content: %s", arg, core.Reason(err))), nil
	}

	out, err := b.deps.Scripts.Run(ctx, e.Path, source)
	if err != nil {
		return shell.Output(fmt.Sprintf("Error executing script %s: %s", arg, core.Message(err))), nil
	}
	return shell.Output(out.Lines...), nil
}
