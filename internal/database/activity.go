// internal/database/activity.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/tabletop/internal/cache"
)

const activitySchema = `
	CREATE TABLE IF NOT EXISTS room_activity (
		event_id   UUID PRIMARY KEY,
		room_code  TEXT NOT NULL,
		game       TEXT NOT NULL,
		version    INT NOT NULL,
		actor_id   TEXT,
		action     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)
`

// ActivityStore appends room activity records.
type ActivityStore struct {
	pool *pgxpool.Pool
}

func NewActivityStore(pool *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

// EnsureSchema creates the activity table when it does not exist yet.
func (s *ActivityStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, activitySchema); err != nil {
		return fmt.Errorf("failed to create room_activity: %w", err)
	}
	return nil
}

// SaveActivity inserts recs in one transaction. Records already stored are skipped,
// so a batch retried after a partial failure does not duplicate rows.
func (s *ActivityStore) SaveActivity(ctx context.Context, recs []cache.ActivityRecord) error {
	return beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO room_activity (
				event_id, room_code, game, version, actor_id, action, created_at
			) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
			ON CONFLICT (event_id) DO NOTHING
		`
		batch := &pgx.Batch{}
		for _, rec := range recs {
			batch.Queue(q, rec.EventID, rec.RoomCode, rec.Game, rec.Version, rec.ActorID, rec.Action, time.UnixMilli(rec.Timestamp))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert room_activity: %w", err)
		}
		return nil
	})
}

// beginTxFunc starts a transaction on pool, runs f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
