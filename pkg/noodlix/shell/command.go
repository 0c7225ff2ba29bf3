package shell

import (
	"context"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vfs"
)

// Invocation is everything a handler gets to work with
type Invocation struct {
	Name  string   // command name after alias expansion
	Args  []string // arguments after alias expansion
	Tree  *vfs.Tree
	User  core.User
	Shell *Processor
}

// Arg returns the i-th argument or "" when absent
func (inv Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Handler executes a command. Expected failures are reported as output
// lines; a returned error is rendered as "<name>: <error>".
type Handler func(ctx context.Context, inv Invocation) (Result, error)

// Command describes a built-in command
type Command struct {
	Name        string
	Description string
	Usage       string
	MinArgs     int
	AdminOnly   bool
	Handler     Handler
}
