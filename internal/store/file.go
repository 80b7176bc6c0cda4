package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// FileStore keeps the registry in a single binary file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore bound to path.  The file does not
// need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the store file.
func (s *FileStore) Path() string { return s.path }

// Load reads and decodes the store file.  A missing or empty file yields
// an empty snapshot.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
	}
	if len(data) == 0 {
		log.Printf("store: %s is empty, starting with no routes", s.path)
		return Snapshot{}, nil
	}
	snap, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	return snap, nil
}

// Save replaces the store file with routes.  The data is written to a
// temporary file in the same directory, synced, and renamed over the old
// file so a crash mid-write never leaves a truncated store behind.
func (s *FileStore) Save(ctx context.Context, routes []model.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file in %s: %v", ErrIO, dir, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(Encode(routes)); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIO, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrIO, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", ErrIO, s.path, err)
	}
	success = true
	return nil
}
