// Package file implements the snapshot store on a local JSON document with
// atomic whole-file replace. It is the development and single-machine
// backend; external changes are picked up by polling the file's mtime.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobbykesh/lms/internal/domain/model"
)

const pollInterval = 2 * time.Second

// SnapshotStore stores the dataset as one JSON file.
type SnapshotStore struct {
	path string

	mu        sync.Mutex
	lastStamp time.Time
}

// NewSnapshotStore creates a store backed by the given path. The file is
// created on first save.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Load reads the stored document. A missing file yields an empty dataset,
// not an error.
func (s *SnapshotStore) Load(_ context.Context) (model.Dataset, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Dataset{}, nil
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var data model.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.Dataset{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return data, nil
}

// Save replaces the whole document atomically: write to a temp file in the
// same directory, then rename over the target.
func (s *SnapshotStore) Save(_ context.Context, data model.Dataset) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.lastStamp = data.LastUpdated
	s.mu.Unlock()
	return nil
}

// Subscribe polls the file and delivers the dataset whenever its
// last_updated stamp moves past the one this process wrote. Blocks until ctx
// is cancelled.
func (s *SnapshotStore) Subscribe(ctx context.Context, onData func(model.Dataset), onErr func(error)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			data, err := s.Load(ctx)
			if err != nil {
				onErr(err)
				continue
			}

			s.mu.Lock()
			changed := data.LastUpdated.After(s.lastStamp)
			if changed {
				s.lastStamp = data.LastUpdated
			}
			s.mu.Unlock()

			if changed {
				onData(data)
			}
		}
	}
}
