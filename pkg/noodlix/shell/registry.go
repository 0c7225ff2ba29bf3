package shell

import (
	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
)

// Registry is the immutable, ordered set of commands a Processor dispatches to
type Registry struct {
	commands []Command
	index    map[string]int
}

// NewRegistry builds a registry, keeping registration order. Names must be
// unique and non-empty and every command needs a handler.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{
		commands: make([]Command, 0, len(cmds)),
		index:    make(map[string]int, len(cmds)),
	}
	for _, cmd := range cmds {
		if cmd.Name == "" {
			return nil, errs.New(errs.CodeInvalidInput, "command with empty name")
		}
		if cmd.Handler == nil {
			return nil, errs.Newf(errs.CodeInvalidInput, "command %s has no handler", cmd.Name)
		}
		if _, exists := r.index[cmd.Name]; exists {
			return nil, errs.Newf(core.CodeAlreadyExists, "command %s registered twice", cmd.Name)
		}
		r.index[cmd.Name] = len(r.commands)
		r.commands = append(r.commands, cmd)
	}
	return r, nil
}

// Lookup finds a command by exact name
func (r *Registry) Lookup(name string) (Command, bool) {
	i, ok := r.index[name]
	if !ok {
		return Command{}, false
	}
	return r.commands[i], true
}

// Commands returns the commands in registration order
func (r *Registry) Commands() []Command {
	return append([]Command(nil), r.commands...)
}

// Names returns the command names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		names[i] = cmd.Name
	}
	return names
}

// Len returns the number of commands
func (r *Registry) Len() int {
	return len(r.commands)
}
