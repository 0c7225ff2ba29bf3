package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vfs"
)

const longDateFormat = "Jan 02 15:04"

func (b *builtins) cd(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	target := inv.Arg(0)
	e, ok := inv.Tree.GetNode(target)
	switch {
	case !ok:
		return shell.Output(fmt.Sprintf("cd: %s: No such file or directory", target)), nil
	case !e.IsDir():
		return shell.Output(fmt.Sprintf("cd: %s: Not a directory", target)), nil
	case !inv.Tree.Can(target, core.PermExecute):
		return shell.Output(fmt.Sprintf("cd: %s: Permission denied", target)), nil
	}
	inv.Tree.SetCurrentPath(e.Path)
	return shell.Output(), nil
}

func (b *builtins) ls(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	target := inv.Tree.CurrentPath()
	var showHidden, long bool
	for _, arg := range inv.Args {
		if strings.HasPrefix(arg, "-") {
			showHidden = showHidden || strings.Contains(arg, "a")
			long = long || strings.Contains(arg, "l")
			continue
		}
		target = arg
	}

	e, ok := inv.Tree.GetNode(target)
	if !ok {
		return shell.Output(fmt.Sprintf("ls: cannot access '%s': No such file or directory", target)), nil
	}
	if !inv.Tree.Can(target, core.PermRead) {
		return shell.Output(fmt.Sprintf("ls: cannot open directory '%s': Permission denied", target)), nil
	}

	entries := []vfs.Entry{e}
	if e.IsDir() {
		var err error
		if entries, err = inv.Tree.ListDirectory(target, showHidden); err != nil {
			return shell.Output(fmt.Sprintf("ls: cannot open directory '%s': %s", target, core.Reason(err))), nil
		}
	}
	if len(entries) == 0 {
		return shell.Output(), nil
	}

	if long {
		lines := make([]string, len(entries))
		for i, entry := range entries {
			lines[i] = formatLong(entry)
		}
		return shell.Output(lines...), nil
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return shell.Output(strings.Join(names, "  ")), nil
}

// formatLong renders one ls -l line; the owner doubles as the group
func formatLong(e vfs.Entry) string {
	return fmt.Sprintf("%s 1 %-8s %-8s %5d %s %s",
		e.Mode(), e.Owner, e.Owner, e.Size, e.ModifiedAt.Format(longDateFormat), e.Name)
}

func (b *builtins) mkdir(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	var lines []string
	for _, arg := range inv.Args {
		if _, err := inv.Tree.CreateDirectory(arg, inv.User.Username, ""); err != nil {
			lines = append(lines, fmt.Sprintf("mkdir: cannot create directory '%s': %s", arg, core.Reason(err)))
		}
	}
	return shell.Output(lines...), nil
}

func (b *builtins) touch(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	var lines []string
	for _, arg := range inv.Args {
		if _, err := inv.Tree.CreateFile(arg, inv.User.Username, ""); err != nil {
			lines = append(lines, fmt.Sprintf("touch: cannot touch '%s': %s", arg, core.Reason(err)))
		}
	}
	return shell.Output(lines...), nil
}

func (b *builtins) cat(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	var lines []string
	for _, arg := range inv.Args {
		content, err := inv.Tree.ReadFile(arg)
		if err != nil {
			lines = append(lines, fmt.Sprintf("cat: %s: %s", arg, core.Reason(err)))
			continue
		}
		if content != "" {
			lines = append(lines, strings.Split(content, "\n")...)
		}
	}
	return shell.Output(lines...), nil
}

func (b *builtins) rm(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	var recursive, force bool
	var targets []string
	for _, arg := range inv.Args {
		if len(arg) > 1 && strings.HasPrefix(arg, "-") {
			recursive = recursive || strings.ContainsAny(arg, "rR")
			force = force || strings.Contains(arg, "f")
			continue
		}
		targets = append(targets, arg)
	}
	if len(targets) == 0 {
		return shell.Output("rm: missing operand"), nil
	}

	var lines []string
	for _, target := range targets {
		if e, ok := inv.Tree.GetNode(target); ok && e.IsDir() && !recursive {
			lines = append(lines, fmt.Sprintf("rm: cannot remove '%s': Is a directory", target))
			continue
		}
		err := inv.Tree.DeleteNode(target, recursive)
		if err == nil || (force && core.HasCode(err, core.CodeNotFound)) {
			continue
		}
		lines = append(lines, fmt.Sprintf("rm: cannot remove '%s': %s", target, core.Reason(err)))
	}
	return shell.Output(lines...), nil
}

func (b *builtins) find(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	dir, pattern := ".", inv.Arg(0)
	if len(inv.Args) > 1 {
		dir, pattern = inv.Arg(0), inv.Arg(1)
	}

	matches, err := inv.Tree.Find(ctx, dir, pattern)
	if err != nil {
		var pathErr *core.PathError
		if errors.As(err, &pathErr) {
			return shell.Output(fmt.Sprintf("find: '%s': %s", dir, core.Reason(err))), nil
		}
		return shell.Output("find: " + core.Reason(err)), nil
	}
	return shell.Output(matches...), nil
}

func (b *builtins) file(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	lines := make([]string, 0, len(inv.Args))
	for _, arg := range inv.Args {
		lines = append(lines, describe(inv.Tree, arg))
	}
	return shell.Output(lines...), nil
}

func describe(tree *vfs.Tree, path string) string {
	e, ok := tree.GetNode(path)
	if !ok {
		return fmt.Sprintf("%s: cannot open '%s' (No such file or directory)", path, path)
	}
	if e.IsDir() {
		return path + ": directory"
	}
	content, err := tree.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("%s: cannot open '%s' (%s)", path, path, core.Reason(err))
	}
	if content == "" {
		return path + ": empty"
	}
	return fmt.Sprintf("%s: %s", path, mimetype.Detect([]byte(content)).String())
}
