package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/danthegoodman1/tinyrdb/datastore"
	"github.com/danthegoodman1/tinyrdb/table"
)

var ErrUnknownTable = errors.New("unknown table")

type (
	// Database is the catalog: every table of one database instance plus the
	// store its snapshot lives in. Not safe for concurrent use.
	Database struct {
		tables map[string]*table.Table
		store  datastore.DataStore
	}

	// Snapshot is the aggregate document written on every mutation.
	Snapshot map[string]table.Snapshot
)

// Open creates a catalog backed by store and loads the existing snapshot, if
// any.
func Open(ctx context.Context, store datastore.DataStore) (*Database, error) {
	db := &Database{
		tables: make(map[string]*table.Table),
		store:  store,
	}
	if err := db.Load(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// CreateTable registers a new table and persists the catalog. An existing
// table with the same name is left untouched and created is false.
func (db *Database) CreateTable(ctx context.Context, name string, columns []table.Column, primaryKey string, uniqueKeys []string) (created bool, err error) {
	if _, exists := db.tables[name]; exists {
		return false, nil
	}

	t, err := table.New(name, columns, primaryKey, uniqueKeys)
	if err != nil {
		return false, err
	}
	t.OnChange(db.Persist)
	db.tables[name] = t

	if err := db.Persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (db *Database) Table(name string) (*table.Table, error) {
	t, exists := db.tables[name]
	if !exists {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownTable, name)
	}
	return t, nil
}

func (db *Database) TableNames() []string {
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (db *Database) Serialize() Snapshot {
	snap := make(Snapshot, len(db.tables))
	for name, t := range db.tables {
		snap[name] = t.Serialize()
	}
	return snap
}

// Persist rewrites the whole snapshot.
func (db *Database) Persist(ctx context.Context) error {
	b, err := EncodeSnapshot(db.Serialize())
	if err != nil {
		return err
	}
	if err := db.store.WriteSnapshot(ctx, b); err != nil {
		return fmt.Errorf("error in store.WriteSnapshot: %w", err)
	}
	return nil
}

// Load replaces the in memory catalog with the stored snapshot. A missing
// snapshot yields an empty catalog.
func (db *Database) Load(ctx context.Context) error {
	b, err := db.store.ReadSnapshot(ctx)
	if errors.Is(err, datastore.ErrSnapshotNotFound) {
		db.tables = make(map[string]*table.Table)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error in store.ReadSnapshot: %w", err)
	}

	snap, err := DecodeSnapshot(b)
	if err != nil {
		return err
	}

	tables := make(map[string]*table.Table, len(snap))
	for name, ts := range snap {
		if ts.Name == "" {
			ts.Name = name
		}
		t, err := table.Deserialize(ts)
		if err != nil {
			return fmt.Errorf("error loading table '%s': %w", name, err)
		}
		t.OnChange(db.Persist)
		tables[name] = t
	}
	db.tables = tables
	return nil
}

func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error in json.MarshalIndent: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a snapshot document. Numbers are kept as json.Number
// until each table converts them to its column types.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}
	if snap == nil {
		snap = make(Snapshot)
	}
	return snap, nil
}
