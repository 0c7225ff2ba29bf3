// Package commands holds the built-in command set. NewRegistry builds it
// once at startup; the shell processor dispatches into it.
package commands

import (
	"context"

	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/fetch"
	"github.com/arthur-debert/noodlix/pkg/noodlix/script"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

// Users is the identity directory the account commands manage
type Users interface {
	User(username string) (core.User, bool)
	Add(ctx context.Context, username, password string, role core.Role, home string) (core.User, error)
	Delete(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, username, password string) (bool, error)
}

// Scripts runs JavaScript for js and jsrun
type Scripts interface {
	Run(ctx context.Context, name, source string) (*script.Output, error)
}

// Deps are the collaborators commands reach beyond the tree and the shell
type Deps struct {
	Users   Users
	Fetcher fetch.Fetcher
	Scripts Scripts
	Logger  zerolog.Logger
}

var errNoUsers = errs.New(errs.CodeUnavailable, "user directory unavailable")

type builtins struct {
	deps Deps
}

// Builtins returns the built-in commands in help order. Missing script and
// fetch collaborators are replaced by defaults.
func Builtins(deps Deps) []shell.Command {
	if deps.Scripts == nil {
		deps.Scripts = script.New(script.WithLogger(deps.Logger))
	}
	if deps.Fetcher == nil {
		deps.Fetcher = fetch.New(fetch.WithLogger(deps.Logger))
	}
	b := &builtins{deps: deps}

	return []shell.Command{
		{Name: "help", Description: "Show this help message.", Handler: b.help},
		{Name: "whoami", Description: "Print the current user name.", Handler: b.whoami},
		{Name: "pwd", Description: "Print the current working directory.", Handler: b.pwd},
		{Name: "cd", Description: "Change the current directory.", Usage: "<directory>", MinArgs: 1, Handler: b.cd},
		{Name: "ls", Description: "List directory contents.", Usage: "[-la] [directory]", Handler: b.ls},
		{Name: "mkdir", Description: "Create a directory.", Usage: "<directory_name>", MinArgs: 1, Handler: b.mkdir},
		{Name: "touch", Description: "Create an empty file or update timestamp.", Usage: "<file_name>", MinArgs: 1, Handler: b.touch},
		{Name: "cat", Description: "Concatenate and print files.", Usage: "<file_name>", MinArgs: 1, Handler: b.cat},
		{Name: "rm", Description: "Remove files or directories.", Usage: "[-rf] <path>", MinArgs: 1, Handler: b.rm},
		{Name: "find", Description: "Search for files by name or path pattern.", Usage: "[directory] <pattern>", MinArgs: 1, Handler: b.find},
		{Name: "file", Description: "Determine file type.", Usage: "<file_name>", MinArgs: 1, Handler: b.file},
		{Name: "clear", Description: "Clear the terminal screen.", Handler: clearScreen},
		{Name: "cls", Description: "Clear the terminal screen (alias for clear).", Handler: clearScreen},
		{Name: "logout", Description: "Log out the current user.", Handler: logout},
		{Name: "wget", Description: "Download a file from a URL.", Usage: "<url> [filename]", MinArgs: 1, Handler: b.wget},
		{Name: "note", Description: "Simple text editor.", Usage: "<filename>", MinArgs: 1, Handler: b.note},
		{Name: "js", Description: "Execute JavaScript code. Use print(...) for output. Simple expressions are auto-returned.", Usage: "<javascript_code_string>", MinArgs: 1, Handler: b.js},
		{Name: "jsrun", Description: "Execute a JavaScript file from the filesystem.", Usage: "<filepath>", MinArgs: 1, Handler: b.jsrun},
		{Name: "alias", Description: `Define or display aliases. Usage: alias name="command" or alias`, Handler: b.alias},
		{Name: "unalias", Description: "Remove an alias. Usage: unalias name", MinArgs: 1, Handler: b.unalias},
		{Name: "useradd", Description: "Create a new user and their home directory.", Usage: "<username> <password>", MinArgs: 2, AdminOnly: true, Handler: b.useradd},
		{Name: "userdel", Description: "Delete a user.", Usage: "[-r] <username>", MinArgs: 1, AdminOnly: true, Handler: b.userdel},
		{Name: "passwd", Description: "Change user password.", Usage: "[username] <newpassword>", MinArgs: 1, Handler: b.passwd},
		{Name: "noodl", Description: "Simple text-based web browser (interactive).", Usage: "<url>", MinArgs: 1, Handler: b.noodl},
		{Name: "chef", Description: "Display Noodlix manual pages (recipes).", Usage: "<command_name>", MinArgs: 1, Handler: b.chef},
	}
}

// NewRegistry builds the registry of built-in commands
func NewRegistry(deps Deps) (*shell.Registry, error) {
	return shell.NewRegistry(Builtins(deps)...)
}

func clearScreen(context.Context, shell.Invocation) (shell.Result, error) {
	return shell.ClearScreen(), nil
}

func logout(context.Context, shell.Invocation) (shell.Result, error) {
	return shell.Logout(), nil
}
