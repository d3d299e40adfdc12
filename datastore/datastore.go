package datastore

import (
	"context"
	"errors"

	"github.com/danthegoodman1/tinyrdb/gologger"
)

var (
	logger = gologger.NewLogger()

	ErrSnapshotNotFound = errors.New("snapshot not found")
)

type (
	// DataStore holds the single aggregate catalog snapshot. Every write
	// replaces the previous snapshot in full.
	DataStore interface {
		// ReadSnapshot returns ErrSnapshotNotFound when nothing was written yet
		ReadSnapshot(ctx context.Context) ([]byte, error)
		WriteSnapshot(ctx context.Context, snapshot []byte) error

		Shutdown(ctx context.Context) error
	}
)
