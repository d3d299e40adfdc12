package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/danthegoodman1/tinyrdb/utils"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type (
	// CRDBDataStore keeps the snapshot as a JSONB document in the snapshots
	// table, one row per snapshot name.
	CRDBDataStore struct {
		pool *pgxpool.Pool
		name string
	}
)

var crdbTryTimeout = time.Second * 10

const errNullSnapshot = utils.PermError("snapshot document is null")

func NewCRDBDataStore(pool *pgxpool.Pool, name string) *CRDBDataStore {
	return &CRDBDataStore{
		pool: pool,
		name: name,
	}
}

func (cds *CRDBDataStore) ReadSnapshot(ctx context.Context) ([]byte, error) {
	var doc pgtype.JSONB
	err := utils.ReliableExec(ctx, cds.pool, crdbTryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx, `SELECT doc FROM snapshots WHERE name = $1`, cds.name).Scan(&doc)
		if err == nil && doc.Status != pgtype.Present {
			return errNullSnapshot
		}
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNullSnapshot) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error in ReliableExec: %w", err)
	}
	return doc.Bytes, nil
}

func (cds *CRDBDataStore) WriteSnapshot(ctx context.Context, snapshot []byte) error {
	doc := pgtype.JSONB{Bytes: snapshot, Status: pgtype.Present}
	s := time.Now()
	err := utils.ReliableExec(ctx, cds.pool, crdbTryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		return crdbpgx.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `UPSERT INTO snapshots (name, doc, updated_at) VALUES ($1, $2, now())`, cds.name, &doc)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("error in ReliableExec: %w", err)
	}
	logger.Debug().Str("snapshot", cds.name).Int("bytes", len(snapshot)).Str("duration", time.Since(s).String()).Msg("wrote snapshot to crdb")
	return nil
}

func (cds *CRDBDataStore) Shutdown(_ context.Context) error {
	cds.pool.Close()
	return nil
}
