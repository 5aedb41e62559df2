package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt marks a persisted blob that could not be decoded. Load downgrades
// it: the caller gets a fresh empty store together with the wrapped error, and
// the bad file is left on disk for inspection.
var ErrCorrupt = errors.New("persisted store is corrupt")

// Gateway round-trips the full store to a single opaque blob.
type Gateway interface {
	// Load reads the blob. A missing blob yields a fresh empty store and a
	// nil error. A corrupt blob yields a fresh empty store and an error
	// matching ErrCorrupt; the store is still usable.
	Load(ctx context.Context) (*Store, error)
	// Save writes the full store. On failure the previously persisted blob
	// and the in-memory store are both left untouched.
	Save(ctx context.Context, s *Store) error
}

// FileGateway persists the store as one JSON file.
type FileGateway struct {
	path string
}

// NewFileGateway creates a gateway writing to the given path.
func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

// Load implements Gateway.
func (g *FileGateway) Load(_ context.Context) (*Store, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return New(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s.normalize()
	return &s, nil
}

// Save implements Gateway. The blob is written to a temp file in the same
// directory and renamed over the target, so a crash mid-write never leaves a
// half-written store behind.
func (g *FileGateway) Save(_ context.Context, s *Store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	dir := filepath.Dir(g.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save store: %w", err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}
