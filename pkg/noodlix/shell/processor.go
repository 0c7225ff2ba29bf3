// Package shell turns command lines into command invocations: it tokenizes,
// expands aliases, validates against the command descriptor and dispatches.
package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vfs"
)

// Processor is one user's shell session
type Processor struct {
	registry  *Registry
	tree      *vfs.Tree
	user      core.User
	global    *aliasTable
	local     *aliasTable
	sessionID string
	logger    zerolog.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger; dispatches are logged at debug level
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithSessionID overrides the generated session id
func WithSessionID(id string) Option {
	return func(p *Processor) { p.sessionID = id }
}

// NewProcessor creates a session for user over tree and loads both alias
// tables
func NewProcessor(registry *Registry, tree *vfs.Tree, user core.User, opts ...Option) *Processor {
	p := &Processor{
		registry:  registry,
		tree:      tree,
		user:      user,
		sessionID: uuid.New().String(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("session", p.sessionID).Logger()
	p.loadAliases()
	return p
}

// User returns the session's user
func (p *Processor) User() core.User { return p.user }

// Tree returns the tree commands run against
func (p *Processor) Tree() *vfs.Tree { return p.tree }

// Registry returns the command set
func (p *Processor) Registry() *Registry { return p.registry }

// SessionID identifies the session in logs
func (p *Processor) SessionID() string { return p.sessionID }

// SetUser switches identity and reloads aliases
func (p *Processor) SetUser(user core.User) {
	p.user = user
	p.loadAliases()
}

// SetTree switches filesystem and reloads aliases
func (p *Processor) SetTree(tree *vfs.Tree) {
	p.tree = tree
	p.loadAliases()
}

// Tokenize splits a line on runs of whitespace. There is no quoting.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// Expand applies one level of alias substitution to a tokenized line
func (p *Processor) Expand(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return "", nil
	}
	name, args := tokens[0], tokens[1:]
	expansion, ok := p.ResolveAlias(name)
	if !ok {
		return name, args
	}
	aliasTokens := Tokenize(expansion)
	if len(aliasTokens) == 0 {
		return "", nil
	}
	return aliasTokens[0], append(append([]string{}, aliasTokens[1:]...), args...)
}

// ProcessCommand runs one command line. Every failure is reported in the
// returned Result; nothing escapes, panics included.
func (p *Processor) ProcessCommand(ctx context.Context, line string) Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return Output()
	}

	name, args := p.Expand(Tokenize(line))
	if name == "" {
		return Output()
	}

	cmd, ok := p.registry.Lookup(name)
	if !ok {
		return Output(fmt.Sprintf("%s: %s", name, core.ReasonFor(core.CodeCommandNotFound)))
	}
	if cmd.AdminOnly && !p.user.IsAdmin() {
		return Output(fmt.Sprintf("%s: %s", name, core.ReasonFor(core.CodeAdminRequired)))
	}
	if len(args) < cmd.MinArgs {
		return Output(
			strings.TrimRight(fmt.Sprintf("Usage: %s %s", name, cmd.Usage), " "),
			fmt.Sprintf("%s: %s", name, core.ReasonFor(core.CodeMissingOperand)),
		)
	}

	return p.invoke(ctx, cmd, Invocation{Name: name, Args: args, Tree: p.tree, User: p.user, Shell: p})
}

func (p *Processor) invoke(ctx context.Context, cmd Command, inv Invocation) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("command", inv.Name).Interface("panic", r).Msg("command panicked")
			result = Output(fmt.Sprintf("%s: %v", inv.Name, r))
		}
	}()

	res, err := cmd.Handler(ctx, inv)
	p.logger.Debug().
		Str("command", inv.Name).
		Strs("args", inv.Args).
		Str("user", p.user.Username).
		Str("result", res.Kind.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("command dispatched")
	if err != nil {
		return Output(fmt.Sprintf("%s: %s", inv.Name, core.Message(err)))
	}
	return res
}
