// Package noodlix wires the shell together: configuration, the snapshot
// store, the file tree with autosave, the user directory and the built-in
// commands. System is the entry point; Login hands out a Session.
package noodlix

import (
	"context"
	"os"

	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/noodlix/pkg/noodlix/auth"
	"github.com/arthur-debert/noodlix/pkg/noodlix/commands"
	"github.com/arthur-debert/noodlix/pkg/noodlix/config"
	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/fetch"
	"github.com/arthur-debert/noodlix/pkg/noodlix/persist"
	"github.com/arthur-debert/noodlix/pkg/noodlix/script"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/store"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vfs"
)

// System owns the long-lived state shared by every session
type System struct {
	cfg      *config.Config
	store    store.Store
	bus      *core.MemoryEventBus
	tree     *vfs.Tree
	saver    *persist.Saver
	users    *auth.Directory
	fetcher  fetch.Fetcher
	registry *shell.Registry
	restored bool
	logger   zerolog.Logger
}

type options struct {
	logger  zerolog.Logger
	store   store.Store
	fetcher fetch.Fetcher
	cost    int
}

// Option configures New
type Option func(*options)

// WithLogger sets the logger handed to every component
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore replaces the store built from the configuration
func WithStore(st store.Store) Option {
	return func(o *options) { o.store = st }
}

// WithFetcher replaces the HTTP client used by wget and Browse
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithPasswordCost sets the bcrypt cost for new password hashes
func WithPasswordCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

// New builds a System from cfg. A nil cfg uses config.Default. The stored
// filesystem is restored, or the layout is seeded and saved when the store
// is empty.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*System, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	st := o.store
	if st == nil {
		var err error
		if st, err = openStore(cfg, logger); err != nil {
			return nil, err
		}
	}

	layout, err := loadLayout(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	bus := core.NewMemoryEventBus(logger)
	tree := vfs.New(vfs.WithLogger(logger), vfs.WithEventBus(bus))
	restored, err := persist.LoadOrSeed(ctx, tree, st, layout, logger)
	if err != nil {
		return nil, err
	}
	saver := persist.NewSaver(tree, st, logger)
	saver.Attach(bus)

	authOpts := []auth.Option{auth.WithRootPassword(cfg.RootPassword), auth.WithLogger(logger)}
	if o.cost > 0 {
		authOpts = append(authOpts, auth.WithCost(o.cost))
	}
	users, err := auth.Open(ctx, st, authOpts...)
	if err != nil {
		saver.Detach()
		return nil, err
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = fetch.New(
			fetch.WithTimeout(cfg.FetchTimeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithRateLimit(cfg.FetchRateLimit),
			fetch.WithRetries(cfg.FetchRetries),
			fetch.WithLogger(logger),
		)
	}
	registry, err := commands.NewRegistry(commands.Deps{
		Users:   users,
		Fetcher: fetcher,
		Scripts: script.New(script.WithTimeout(cfg.ScriptTimeout), script.WithLogger(logger)),
		Logger:  logger,
	})
	if err != nil {
		saver.Detach()
		return nil, err
	}

	logger.Info().
		Bool("restored", restored).
		Int("nodes", tree.Len()).
		Int("commands", registry.Len()).
		Msg("system ready")

	return &System{
		cfg:      cfg,
		store:    st,
		bus:      bus,
		tree:     tree,
		saver:    saver,
		users:    users,
		fetcher:  fetcher,
		registry: registry,
		restored: restored,
		logger:   logger,
	}, nil
}

func openStore(cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	opts := []store.Option{store.WithCompression(cfg.Compress), store.WithLogger(logger)}
	if cfg.DataDir == "" {
		return store.NewMemory(opts...), nil
	}
	st, err := store.NewOS(cfg.DataDir, opts...)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func loadLayout(seedFile string) (*vfs.Layout, error) {
	if seedFile == "" {
		return vfs.DefaultLayout(), nil
	}
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, errs.Wrapf(err, errs.CodeInvalidConfig, "failed to read seed file %s", seedFile)
	}
	return vfs.ParseLayout(data)
}

// Config returns the configuration the system was built from
func (s *System) Config() *config.Config { return s.cfg }

// Tree returns the shared file tree
func (s *System) Tree() *vfs.Tree { return s.tree }

// Users returns the user directory
func (s *System) Users() *auth.Directory { return s.users }

// Registry returns the built-in command set
func (s *System) Registry() *shell.Registry { return s.registry }

// Store returns the backing store
func (s *System) Store() store.Store { return s.store }

// Restored reports whether the filesystem came from a stored snapshot
func (s *System) Restored() bool { return s.restored }

// Save writes a snapshot of the tree now
func (s *System) Save(ctx context.Context) error {
	return s.saver.Save(ctx)
}

// SaveError returns why the latest snapshot write failed, or nil when the
// stored filesystem is current
func (s *System) SaveError() error { return s.saver.Err() }

// Close stops autosaving after a final save
func (s *System) Close(ctx context.Context) error {
	defer s.saver.Detach()
	return s.saver.Save(ctx)
}

// Login authenticates a user and opens a session in their home directory
func (s *System) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.tree.InitializeForUser(user)
	proc := shell.NewProcessor(s.registry, s.tree, user, shell.WithLogger(s.logger))
	s.logger.Info().Str("user", user.Username).Str("session", proc.SessionID()).Msg("session opened")

	return &Session{sys: s, user: user, proc: proc}, nil
}

// Session is one logged-in user driving the shell
type Session struct {
	sys    *System
	user   core.User
	proc   *shell.Processor
	closed bool
}

// User returns the logged-in user
func (s *Session) User() core.User { return s.user }

// ID returns the session id used in logs
func (s *Session) ID() string { return s.proc.SessionID() }

// Processor returns the shell processor
func (s *Session) Processor() *shell.Processor { return s.proc }

// Execute runs one command line
func (s *Session) Execute(ctx context.Context, line string) shell.Result {
	if s.closed {
		return shell.Output("session closed")
	}
	return s.proc.ProcessCommand(ctx, line)
}

// SaveError reports a failed autosave of the last change
func (s *Session) SaveError() error { return s.sys.SaveError() }

// Prompt renders the prompt for the current directory
func (s *Session) Prompt() string {
	return s.sys.tree.Prompt(s.user, s.sys.cfg.Hostname)
}

// Welcome returns the login banner
func (s *Session) Welcome() []string {
	return s.sys.tree.WelcomeMessage(s.sys.cfg.Hostname)
}

// ReadFile reads a file as the session's user, for the editor
func (s *Session) ReadFile(path string) (string, error) {
	return s.sys.tree.ReadFile(path)
}

// WriteFile saves editor content as the session's user
func (s *Session) WriteFile(path, content string) error {
	return s.sys.tree.WriteFile(path, content, s.user)
}

// Browse fetches url and renders it as text
func (s *Session) Browse(ctx context.Context, url string) (*fetch.Document, error) {
	page, err := s.sys.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !page.OK() {
		return nil, errs.Newf(errs.CodeNotFound, "%s: %d %s", url, page.Status, page.StatusText)
	}
	return fetch.Render(page)
}

// Logout ends the session and drops the tree's active user
func (s *Session) Logout() {
	if s.closed {
		return
	}
	s.closed = true
	s.sys.tree.SetUser(nil)
	s.sys.logger.Info().Str("user", s.user.Username).Str("session", s.ID()).Msg("session closed")
}
