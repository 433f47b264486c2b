package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresEventStore stores streams in PostgreSQL. The optimistic concurrency
// check is enforced twice: by comparing the stream head inside the append
// transaction, and by the unique (stream_id, version) index as a backstop
// against races the read misses.
type PostgresEventStore struct {
	db        *sql.DB
	publisher EventPublisher
}

func NewPostgresEventStore(db *sql.DB, publisher EventPublisher) *PostgresEventStore {
	return &PostgresEventStore{db: db, publisher: publisher}
}

// Migrate creates the events table if it does not exist.
func (es *PostgresEventStore) Migrate(ctx context.Context) error {
	_, err := es.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			global_seq BIGSERIAL PRIMARY KEY,
			id         UUID NOT NULL UNIQUE,
			stream_id  TEXT NOT NULL,
			event_type TEXT NOT NULL,
			data       JSONB NOT NULL,
			metadata   JSONB NOT NULL,
			version    INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (stream_id, version)
		)`)
	return err
}

func (es *PostgresEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	current := VersionNoStream
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM events WHERE stream_id = $1 ORDER BY version DESC LIMIT 1 FOR UPDATE`,
		streamID,
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read stream head: %w", err)
	}
	if current != expectedVersion {
		return ErrConcurrencyConflict
	}

	for _, event := range events {
		meta, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, stream_id, event_type, data, metadata, version, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			event.ID, event.StreamID, event.EventType, []byte(event.Data), meta, event.Version, event.Timestamp,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to commit append transaction: %w", err)
	}

	if es.publisher != nil {
		for _, event := range events {
			if err := es.publisher.Publish(ctx, streamID, event); err != nil {
				return fmt.Errorf("failed to publish committed event: %w", err)
			}
		}
	}
	return nil
}

func (es *PostgresEventStore) ReadStream(ctx context.Context, streamID string) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, stream_id, event_type, data, metadata, version, created_at
		 FROM events
		 WHERE stream_id = $1
		 ORDER BY version ASC`,
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stream: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrStreamNotFound
	}
	return events, nil
}

func (es *PostgresEventStore) ReadAllEvents(ctx context.Context) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, stream_id, event_type, data, metadata, version, created_at
		 FROM events
		 ORDER BY global_seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e    Event
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.StreamID, &e.EventType, (*[]byte)(&e.Data), &meta, &e.Version, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ConnectPostgres establishes a pooled connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
