package datastore

import (
	"context"
	"sync"
)

type (
	MemoryDataStore struct {
		mu       sync.Mutex
		snapshot []byte
		Writes   int
	}
)

func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{}
}

func (mds *MemoryDataStore) ReadSnapshot(_ context.Context) ([]byte, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()
	if mds.snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	b := make([]byte, len(mds.snapshot))
	copy(b, mds.snapshot)
	return b, nil
}

func (mds *MemoryDataStore) WriteSnapshot(_ context.Context, snapshot []byte) error {
	mds.mu.Lock()
	defer mds.mu.Unlock()
	mds.snapshot = make([]byte, len(snapshot))
	copy(mds.snapshot, snapshot)
	mds.Writes++
	return nil
}

func (mds *MemoryDataStore) Shutdown(_ context.Context) error {
	return nil
}
