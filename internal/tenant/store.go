package tenant

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
)

// Store holds the current Snapshot for a configuration file and replaces it
// on Reload. Readers never block on reloads.
type Store struct {
	path    string
	current *atomic.Pointer[Snapshot]
}

// NewStore loads path once and returns a store serving it. An unreadable or
// malformed file leaves the store on DefaultSnapshot; the failure is logged.
func NewStore(path string) *Store {
	s := &Store{
		path:    path,
		current: atomic.NewPointer(DefaultSnapshot()),
	}

	_ = s.Reload(context.Background())

	return s
}

// Resolve resolves host against the current snapshot.
func (s *Store) Resolve(host string) Config {
	return s.current.Load().Resolve(host)
}

// Snapshot returns the snapshot currently in use.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file. A missing or unreadable file resets the store to
// DefaultSnapshot. A malformed file is rejected and the previous snapshot
// stays in place. The returned error is informational only.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := Load(s.path)
	switch {
	case err == nil:
		s.current.Store(snap)
		slog.InfoContext(ctx, "tenant config loaded", "path", s.path, "domains", snap.Domains())
		return nil

	case errors.Is(err, ErrUnavailable):
		s.current.Store(DefaultSnapshot())
		slog.WarnContext(ctx, "tenant config unavailable, using defaults", "path", s.path, "error", err)
		return err

	default:
		slog.ErrorContext(ctx, "tenant config rejected, keeping previous", "path", s.path, "error", err)
		return err
	}
}

// Watch reloads the store whenever the configuration file is written,
// created, renamed or removed. The parent directory is watched so editors
// that replace the file atomically are picked up. Watch blocks until ctx is
// done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close tenant config watcher", "error", err)
		}
	}()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				_ = s.Reload(ctx)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "tenant config watcher error", "error", err)
		}
	}
}
