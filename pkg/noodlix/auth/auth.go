// Package auth is the identity directory: it authenticates users and keeps
// the user table in a store under core.UsersKey.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/store"
)

const (
	// RootUsername is the built-in administrator
	RootUsername = "root"
	// DefaultRootPassword is used when the table is created
	DefaultRootPassword = "toor"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password alike
var ErrInvalidCredentials = errs.New(errs.CodeUnauthorized, "Invalid username or password.")

type record struct {
	Username      string     `json:"username"`
	PasswordHash  string     `json:"passwordHash"`
	Role          core.Role  `json:"role"`
	HomeDirectory string     `json:"homeDirectory"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

func (r record) user() core.User {
	u := core.User{Username: r.Username, Role: r.Role, HomeDirectory: r.HomeDirectory}
	if r.LastLogin != nil {
		u.LastLogin = *r.LastLogin
	}
	return u
}

// Directory is the user table
type Directory struct {
	mu           sync.RWMutex
	store        store.Store
	users        []record
	rootPassword string
	cost         int
	now          func() time.Time
	logger       zerolog.Logger
}

// Option configures a Directory
type Option func(*Directory)

// WithRootPassword sets the password given to root when the table is created
func WithRootPassword(password string) Option {
	return func(d *Directory) { d.rootPassword = password }
}

// WithCost sets the bcrypt cost
func WithCost(cost int) Option {
	return func(d *Directory) { d.cost = cost }
}

// WithClock replaces time.Now for last-login stamps
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

// Open loads the user table from st, creating it with the root admin when
// nothing is stored yet
func Open(ctx context.Context, st store.Store, opts ...Option) (*Directory, error) {
	d := &Directory{
		store:        st,
		rootPassword: DefaultRootPassword,
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	data, err := st.Get(ctx, core.UsersKey)
	switch {
	case errs.GetCode(err) == errs.CodeNotFound:
		hash, err := d.hash(d.rootPassword)
		if err != nil {
			return nil, err
		}
		d.users = []record{{
			Username:      RootUsername,
			PasswordHash:  hash,
			Role:          core.RoleAdmin,
			HomeDirectory: "/root",
		}}
		if err := d.save(ctx); err != nil {
			return nil, err
		}
		d.logger.Info().Msg("created user table with default root account")
		return d, nil
	case err != nil:
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to load user table")
	}

	if err := sonic.Unmarshal(data, &d.users); err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to parse user table")
	}
	d.logger.Debug().Int("users", len(d.users)).Msg("user table loaded")
	return d, nil
}

func (d *Directory) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return "", errs.Wrap(err, errs.CodeInternal, "password hashing failed")
	}
	return string(h), nil
}

func (d *Directory) save(ctx context.Context) error {
	data, err := sonic.Marshal(d.users)
	if err != nil {
		return errs.Wrap(err, errs.CodeInternal, "failed to encode user table")
	}
	if err := d.store.Put(ctx, core.UsersKey, data); err != nil {
		return errs.Wrap(err, errs.CodeInternal, "failed to save user table")
	}
	return nil
}

func (d *Directory) find(username string) int {
	for i, r := range d.users {
		if r.Username == username {
			return i
		}
	}
	return -1
}

// Login checks a password and stamps the last login time
func (d *Directory) Login(ctx context.Context, username, password string) (core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.find(username)
	if i < 0 {
		return core.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(d.users[i].PasswordHash), []byte(password)) != nil {
		d.logger.Info().Str("user", username).Msg("failed login")
		return core.User{}, ErrInvalidCredentials
	}

	now := d.now()
	d.users[i].LastLogin = &now
	if err := d.save(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("failed to record last login")
	}
	return d.users[i].user(), nil
}

// User looks up a user by name
func (d *Directory) User(username string) (core.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i := d.find(username)
	if i < 0 {
		return core.User{}, false
	}
	return d.users[i].user(), true
}

// Users lists every user in creation order
func (d *Directory) Users() []core.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]core.User, len(d.users))
	for i, r := range d.users {
		out[i] = r.user()
	}
	return out
}

// Add creates a user
func (d *Directory) Add(ctx context.Context, username, password string, role core.Role, home string) (core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.find(username) >= 0 {
		return core.User{}, errs.Newf(errs.CodeAlreadyExists, "User %s already exists.", username)
	}
	hash, err := d.hash(password)
	if err != nil {
		return core.User{}, err
	}

	r := record{Username: username, PasswordHash: hash, Role: role, HomeDirectory: home}
	d.users = append(d.users, r)
	if err := d.save(ctx); err != nil {
		d.users = d.users[:len(d.users)-1]
		return core.User{}, err
	}
	d.logger.Info().Str("user", username).Str("role", string(role)).Msg("user added")
	return r.user(), nil
}

// Delete removes a user. It reports false when there was no such user.
func (d *Directory) Delete(ctx context.Context, username string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.find(username)
	if i < 0 {
		return false, nil
	}
	removed := d.users[i]
	d.users = append(d.users[:i:i], d.users[i+1:]...)
	if err := d.save(ctx); err != nil {
		d.users = append(d.users[:i:i], append([]record{removed}, d.users[i:]...)...)
		return false, err
	}
	d.logger.Info().Str("user", username).Msg("user deleted")
	return true, nil
}

// UpdatePassword replaces a password. It reports false when there is no
// such user.
func (d *Directory) UpdatePassword(ctx context.Context, username, password string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.find(username)
	if i < 0 {
		return false, nil
	}
	hash, err := d.hash(password)
	if err != nil {
		return false, err
	}
	previous := d.users[i].PasswordHash
	d.users[i].PasswordHash = hash
	if err := d.save(ctx); err != nil {
		d.users[i].PasswordHash = previous
		return false, err
	}
	return true, nil
}
