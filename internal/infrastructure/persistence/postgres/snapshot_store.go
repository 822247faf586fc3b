// Package postgres implements the snapshot store on a single-row JSONB
// document. Saves replace the whole document and fire pg_notify; Subscribe
// drives a LISTEN loop so other processes see every replace. Concurrent
// writers resolve last-write-wins, which matches the single-logical-writer
// model the book assumes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobbykesh/lms/internal/domain/model"
)

const notifyChannel = "lms_dataset_changed"

// reconnectDelay paces LISTEN connection re-establishment after a failure.
const reconnectDelay = 2 * time.Second

// SnapshotStore stores the dataset as one JSONB row.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Load reads the stored document. No row yet yields an empty dataset.
func (s *SnapshotStore) Load(ctx context.Context) (model.Dataset, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM dataset WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Dataset{}, nil
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}

	var data model.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return data, nil
}

// Save replaces the whole document and notifies listeners in one
// transaction.
func (s *SnapshotStore) Save(ctx context.Context, data model.Dataset) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO dataset (id, doc, last_updated)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			doc          = EXCLUDED.doc,
			last_updated = EXCLUDED.last_updated
	`
	if _, err := tx.Exec(ctx, query, raw, data.LastUpdated); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, data.LastUpdated.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("notify listeners: %w", err)
	}

	return tx.Commit(ctx)
}

// Subscribe listens for document replaces and reloads on every notification.
// Blocks until ctx is cancelled; connection failures are reported to onErr
// and the LISTEN loop re-establishes itself.
func (s *SnapshotStore) Subscribe(ctx context.Context, onData func(model.Dataset), onErr func(error)) error {
	for {
		if err := s.listen(ctx, onData); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			onErr(err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// listen holds a dedicated connection on the notify channel and reloads the
// document for each notification.
func (s *SnapshotStore) listen(ctx context.Context, onData func(model.Dataset)) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		data, err := s.Load(ctx)
		if err != nil {
			return err
		}
		onData(data)
	}
}
