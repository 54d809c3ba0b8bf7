package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"freightx/internal/domain"
	"freightx/internal/port"
	"freightx/internal/storage"
)

type checkpointStore struct {
	fs   afero.Fs
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewCheckpointStore creates a CheckpointStore backed by a JSON file on the
// local filesystem.
func NewCheckpointStore(path string) port.CheckpointStore {
	return NewCheckpointStoreFs(afero.NewOsFs(), path)
}

// NewCheckpointStoreFs is NewCheckpointStore over an arbitrary filesystem.
func NewCheckpointStoreFs(fs afero.Fs, path string) port.CheckpointStore {
	return &checkpointStore{fs: fs, path: path, now: time.Now}
}

func (s *checkpointStore) Load(ctx context.Context) ([]domain.CheckpointEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *checkpointStore) load(ctx context.Context) ([]domain.CheckpointEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint %s: %w", s.path, err)
	}
	entries, err := storage.DecodeCheckpoint(data)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", s.path, err)
	}
	return entries, nil
}

// Append rewrites the whole file through a temp file and rename, so a crash
// leaves either the old or the new checkpoint on disk.
func (s *checkpointStore) Append(ctx context.Context, entries []domain.CheckpointEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	data, err := storage.EncodeCheckpoint(storage.MergeCheckpoint(existing, entries), s.now())
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("syncing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}

func (s *checkpointStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing checkpoint %s: %w", s.path, err)
	}
	return nil
}
