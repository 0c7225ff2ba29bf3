// Package persist keeps the stored snapshot in step with a live tree.
package persist

import (
	"context"

	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/store"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vfs"
)

// Saver writes a full snapshot of the tree after every mutation
type Saver struct {
	tree   *vfs.Tree
	store  store.Store
	bus    core.EventBus
	sub    core.SubscriptionID
	saves  int
	err    error
	logger zerolog.Logger
}

// NewSaver creates a saver for tree; call Attach to start autosaving
func NewSaver(tree *vfs.Tree, st store.Store, logger zerolog.Logger) *Saver {
	return &Saver{tree: tree, store: st, logger: logger}
}

// Attach subscribes to tree changes on bus
func (s *Saver) Attach(bus core.EventBus) {
	s.Detach()
	s.bus = bus
	s.sub = bus.Subscribe(core.EventTreeChanged, s)
}

// Detach stops autosaving
func (s *Saver) Detach() {
	if s.bus == nil {
		return
	}
	s.bus.Unsubscribe(s.sub)
	s.bus = nil
	s.sub = 0
}

// Handle implements core.EventHandler
func (s *Saver) Handle(ctx context.Context, event core.Event) error {
	s.logger.Debug().Str("op", event.Change.Op).Str("path", event.Change.Path).Msg("saving after change")
	if err := s.Save(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("autosave failed")
		return err
	}
	return nil
}

// Save serializes the tree and stores it under core.FilesystemKey
func (s *Saver) Save(ctx context.Context) error {
	s.err = s.save(ctx)
	return s.err
}

func (s *Saver) save(ctx context.Context) error {
	data, err := s.tree.Serialize()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, core.FilesystemKey, data); err != nil {
		return errs.Wrap(err, errs.CodeInternal, "failed to save filesystem")
	}
	s.saves++
	return nil
}

// Saves returns how many snapshots were written
func (s *Saver) Saves() int { return s.saves }

// Err returns the error of the latest save, nil once a save succeeds again
func (s *Saver) Err() error { return s.err }

// LoadOrSeed restores the stored snapshot into tree. When nothing is stored
// the tree is seeded with layout and the result saved. A corrupt snapshot is
// reported and leaves the tree as it was. loaded tells which path was taken.
func LoadOrSeed(ctx context.Context, tree *vfs.Tree, st store.Store, layout *vfs.Layout, logger zerolog.Logger) (loaded bool, err error) {
	data, err := st.Get(ctx, core.FilesystemKey)
	switch {
	case errs.GetCode(err) == errs.CodeNotFound:
		if err := tree.Seed(layout); err != nil {
			return false, err
		}
		logger.Info().Int("nodes", tree.Len()).Msg("seeded new filesystem")
		return false, NewSaver(tree, st, logger).Save(ctx)
	case err != nil:
		return false, errs.Wrap(err, errs.CodeInternal, "failed to read filesystem")
	}

	if err := tree.Load(data); err != nil {
		return false, err
	}
	logger.Info().Int("nodes", tree.Len()).Msg("filesystem restored")
	return true, nil
}
