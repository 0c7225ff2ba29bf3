package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// RecipeDir holds the chef pages, one <command>.rcp file each
const RecipeDir = "/etc/chef"

func (b *builtins) note(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	filename := inv.Arg(0)
	abs := inv.Tree.Resolve(filename)

	if e, ok := inv.Tree.GetNode(abs); ok {
		if e.IsDir() {
			return shell.Output(fmt.Sprintf("note: %s: Is a directory", filename)), nil
		}
		if !inv.Tree.Can(abs, core.PermRead) {
			return shell.Output(fmt.Sprintf("note: %s: Permission denied (read)", filename)), nil
		}
		return shell.EnterEditor(abs), nil
	}

	parent, ok := inv.Tree.GetNode(vpath.Parent(abs))
	if !ok || !parent.IsDir() || !inv.Tree.Can(parent.Path, core.PermWrite) {
		return shell.Output(fmt.Sprintf("note: %s: Permission denied (write to directory)", filename)), nil
	}
	return shell.EnterEditor(abs), nil
}

func (b *builtins) chef(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	name := inv.Arg(0)
	if strings.Contains(name, "/") {
		return shell.Output(fmt.Sprintf("chef: Invalid command name '%s'. Provide only the command name.", name)), nil
	}

	content, err := inv.Tree.ReadFile(vpath.Join(RecipeDir, name+".rcp"))
	if err != nil {
		return shell.Output(fmt.Sprintf("chef: No recipe found for '%s' in %s/", name, RecipeDir)), nil
	}
	return shell.Output(strings.Split(content, "\n")...), nil
}
