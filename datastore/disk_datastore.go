package datastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type (
	// DiskDataStore rewrites one JSON file on every write. A crash mid write can
	// leave a truncated file behind.
	DiskDataStore struct {
		path string
	}
)

func NewDiskDataStore(path string) (*DiskDataStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	dds := &DiskDataStore{
		path: path,
	}

	return dds, nil
}

func (dds *DiskDataStore) ReadSnapshot(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(dds.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}
	return b, nil
}

func (dds *DiskDataStore) WriteSnapshot(_ context.Context, snapshot []byte) error {
	err := os.WriteFile(dds.path, snapshot, 0o644)
	if err != nil {
		return fmt.Errorf("error in os.WriteFile: %w", err)
	}
	return nil
}

func (dds *DiskDataStore) Shutdown(_ context.Context) error {
	return nil
}
