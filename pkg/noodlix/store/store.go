// Package store persists opaque blobs under string keys. The filesystem
// snapshot and the user table are the two values the shell keeps.
package store

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	errs "github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

// Store is a flat key/value store
type Store interface {
	// Get returns the value for key, or an error with code NOT_FOUND
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value for key
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// BillyStore keeps one file per key on a billy filesystem
type BillyStore struct {
	fs       billy.Filesystem
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	logger   zerolog.Logger
}

// Option configures a BillyStore
type Option func(*BillyStore)

// WithCompression stores values zstd compressed in .json.zst files
func WithCompression(enabled bool) Option {
	return func(s *BillyStore) { s.compress = enabled }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *BillyStore) { s.logger = logger }
}

// New creates a store rooted at the top of fs
func New(fs billy.Filesystem, opts ...Option) (*BillyStore, error) {
	s := &BillyStore{fs: fs, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.encoder, err = zstd.NewWriter(nil); err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to create zstd encoder")
	}
	if s.decoder, err = zstd.NewReader(nil); err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to create zstd decoder")
	}
	return s, nil
}

// NewOS creates a store in a directory of the host filesystem
func NewOS(dir string, opts ...Option) (*BillyStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrapf(err, errs.CodeInternal, "failed to create data directory %s", dir)
	}
	return New(osfs.New(dir), opts...)
}

// NewMemory creates a store that lives as long as the process
func NewMemory(opts ...Option) *BillyStore {
	s, err := New(memfs.New(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return errs.Newf(errs.CodeInvalidInput, "invalid key %q", key)
	}
	return nil
}

func (s *BillyStore) filename(key string, compressed bool) string {
	if compressed {
		return key + ".json.zst"
	}
	return key + ".json"
}

// Get reads a value. Both compressed and plain files are understood so the
// compression setting can change between runs.
func (s *BillyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validKey(key); err != nil {
		return nil, err
	}

	for _, compressed := range []bool{s.compress, !s.compress} {
		name := s.filename(key, compressed)
		data, err := util.ReadFile(s.fs, name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errs.Wrapf(err, errs.CodeInternal, "failed to read %s", name)
		}
		if !compressed {
			return data, nil
		}
		plain, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, errs.Wrapf(err, errs.CodeInternal, "failed to decompress %s", name)
		}
		return plain, nil
	}
	return nil, errs.Newf(errs.CodeNotFound, "no value stored under %q", key)
}

// Put writes a value atomically through a temporary file and a rename
func (s *BillyStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}

	name := s.filename(key, s.compress)
	if s.compress {
		data = s.encoder.EncodeAll(data, nil)
	}

	tmpPath := name + ".tmp"
	tmpFile, err := s.fs.Create(tmpPath)
	if err != nil {
		return errs.Wrapf(err, errs.CodeInternal, "failed to create %s", tmpPath)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		_ = s.fs.Remove(tmpPath)
		return errs.Wrapf(err, errs.CodeInternal, "failed to write %s", tmpPath)
	}
	if err := tmpFile.Close(); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errs.Wrapf(err, errs.CodeInternal, "failed to close %s", tmpPath)
	}
	if err := s.fs.Rename(tmpPath, name); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errs.Wrapf(err, errs.CodeInternal, "failed to rename %s", tmpPath)
	}

	// drop the copy in the other format so Get never sees a stale value
	stale := s.filename(key, !s.compress)
	if err := s.fs.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Str("file", stale).Err(err).Msg("failed to remove stale value")
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Bool("compressed", s.compress).Msg("value stored")
	return nil
}

// Delete removes both formats of a key
func (s *BillyStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}
	for _, compressed := range []bool{false, true} {
		name := s.filename(key, compressed)
		if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errs.Wrapf(err, errs.CodeInternal, "failed to remove %s", name)
		}
	}
	return nil
}
