package commands

import (
	"context"
	"fmt"
	"regexp"

	"github.com/arthur-debert/noodlix/pkg/noodlix/auth"
	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

var usernameRE = regexp.MustCompile(`^[a-z_][a-z0-9_-]*[$]?$`)

const maxUsernameLength = 32

func (b *builtins) useradd(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	if b.deps.Users == nil {
		return shell.Result{}, errNoUsers
	}
	username, password := inv.Arg(0), inv.Arg(1)
	if !usernameRE.MatchString(username) || len(username) > maxUsernameLength {
		return shell.Output("useradd: invalid username format."), nil
	}
	if username == auth.RootUsername {
		return shell.Output("useradd: cannot recreate root user."), nil
	}

	home := vpath.Join("/home", username)
	if _, err := b.deps.Users.Add(ctx, username, password, core.RoleUser, home); err != nil {
		return shell.Output("useradd: " + core.Message(err)), nil
	}

	if _, err := inv.Tree.CreateDirectory(home, username, core.PrivateDirPermissions); err != nil && !core.HasCode(err, core.CodeAlreadyExists) {
		if _, derr := b.deps.Users.Delete(ctx, username); derr != nil {
			b.deps.Logger.Warn().Str("user", username).Err(derr).Msg("rollback of useradd failed")
		}
		return shell.Output(fmt.Sprintf("useradd: created user '%s' but failed to create home directory: %s", username, core.Reason(err))), nil
	}

	cfgDir := vpath.Join(home, "localcfg")
	if _, err := inv.Tree.CreateDirectory(cfgDir, username, core.PrivateDirPermissions); err != nil && !core.HasCode(err, core.CodeAlreadyExists) {
		return shell.Output(fmt.Sprintf("useradd: warning: could not create %s for %s", cfgDir, username)), nil
	}
	aliasFile := vpath.Join(cfgDir, "aliases")
	if _, err := inv.Tree.CreateFile(aliasFile, username, ""); err != nil {
		return shell.Output(fmt.Sprintf("useradd: warning: could not create %s for %s", aliasFile, username)), nil
	}

	return shell.Output(fmt.Sprintf("User '%s' created successfully with home directory '%s'.", username, home)), nil
}

func (b *builtins) userdel(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	if b.deps.Users == nil {
		return shell.Result{}, errNoUsers
	}
	username, removeHome := inv.Arg(0), false
	if username == "-r" {
		if len(inv.Args) < 2 {
			return shell.Output("userdel: missing username after -r option."), nil
		}
		username, removeHome = inv.Arg(1), true
	}

	if username == auth.RootUsername {
		return shell.Output("userdel: cannot delete root user."), nil
	}
	user, ok := b.deps.Users.User(username)
	if !ok {
		return shell.Output(fmt.Sprintf("userdel: user '%s' does not exist.", username)), nil
	}

	deleted, err := b.deps.Users.Delete(ctx, username)
	if err != nil || !deleted {
		return shell.Output(fmt.Sprintf("userdel: failed to delete user '%s'.", username)), nil
	}

	if !removeHome {
		return shell.Output(fmt.Sprintf("User '%s' deleted.", username)), nil
	}
	if err := inv.Tree.DeleteNode(user.HomeDirectory, true); err != nil {
		return shell.Output(fmt.Sprintf("User '%s' deleted, but failed to remove home directory '%s': %s",
			username, user.HomeDirectory, core.Reason(err))), nil
	}
	return shell.Output(fmt.Sprintf("User '%s' and home directory '%s' deleted.", username, user.HomeDirectory)), nil
}

func (b *builtins) passwd(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	if b.deps.Users == nil {
		return shell.Result{}, errNoUsers
	}

	var target, password string
	switch len(inv.Args) {
	case 1:
		target, password = inv.User.Username, inv.Arg(0)
	case 2:
		target, password = inv.Arg(0), inv.Arg(1)
		if !inv.User.IsAdmin() && inv.User.Username != target {
			return shell.Output("passwd: Only admin can change other users' passwords."), nil
		}
	default:
		return shell.Output("passwd: incorrect usage. Usage: passwd [username] <newpassword> OR passwd <newpassword>"), nil
	}

	if password == "" {
		return shell.Output("passwd: password cannot be empty."), nil
	}
	updated, err := b.deps.Users.UpdatePassword(ctx, target, password)
	if err != nil || !updated {
		return shell.Output(fmt.Sprintf("passwd: failed to update password for '%s'. User may not exist.", target)), nil
	}
	return shell.Output(fmt.Sprintf("Password for '%s' updated successfully.", target)), nil
}
