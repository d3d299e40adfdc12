package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/danthegoodman1/tinyrdb/audit_log"
	"github.com/danthegoodman1/tinyrdb/crdb"
	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/datastore"
	"github.com/danthegoodman1/tinyrdb/executor"
	"github.com/danthegoodman1/tinyrdb/migrations"
	"github.com/danthegoodman1/tinyrdb/utils"
	"github.com/danthegoodman1/tinyrdb/wallet"
)

var ErrUnknownDataStore = errors.New("unknown datastore")

type (
	App struct {
		DataStore datastore.DataStore
		DB        *database.Database
		Exec      *executor.Executor
		Wallets   *wallet.Service
		Audit     *audit_log.Logger
	}
)

func NewApp(ctx context.Context) (*App, error) {
	ds, err := NewDataStore(ctx, utils.DATASTORE)
	if err != nil {
		return nil, fmt.Errorf("error in NewDataStore: %w", err)
	}

	db, err := database.Open(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("error in database.Open: %w", err)
	}

	audit, err := audit_log.Open(utils.AUDIT_LOG_PATH)
	if err != nil {
		return nil, fmt.Errorf("error in audit_log.Open: %w", err)
	}

	exec := executor.New(db)
	app := &App{
		DataStore: ds,
		DB:        db,
		Exec:      exec,
		Wallets:   wallet.NewService(exec),
		Audit:     audit,
	}

	if utils.SEED_WALLETS {
		if err := app.Wallets.EnsureTables(ctx); err != nil {
			return nil, fmt.Errorf("error seeding wallet tables: %w", err)
		}
	}

	logger.Debug().Str("datastore", utils.DATASTORE).Strs("tables", db.TableNames()).Msg("opened database")
	return app, nil
}

// NewDataStore builds the snapshot store named by kind.
func NewDataStore(ctx context.Context, kind string) (datastore.DataStore, error) {
	switch kind {
	case "disk":
		return datastore.NewDiskDataStore(utils.DATA_PATH)
	case "memory":
		return datastore.NewMemoryDataStore(), nil
	case "s3":
		return datastore.NewS3DataStore(utils.SNAPSHOT_KEY)
	case "crdb":
		if utils.CRDB_DSN == "" {
			return nil, fmt.Errorf("CRDB_DSN is required for the crdb datastore")
		}
		n, err := migrations.RunMigrations(utils.CRDB_DSN)
		if err != nil {
			return nil, fmt.Errorf("error running migrations: %w", err)
		}
		if err := migrations.CheckMigrations(utils.CRDB_DSN); err != nil {
			return nil, fmt.Errorf("error checking migrations: %w", err)
		}
		logger.Debug().Int("applied", n).Msg("migrations up to date")
		pool, err := crdb.Connect(ctx, utils.CRDB_DSN)
		if err != nil {
			return nil, fmt.Errorf("error connecting to CRDB: %w", err)
		}
		return datastore.NewCRDBDataStore(pool, utils.SNAPSHOT_KEY), nil
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnknownDataStore, kind)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Audit.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing audit log")
	}
	return a.DataStore.Shutdown(ctx)
}
