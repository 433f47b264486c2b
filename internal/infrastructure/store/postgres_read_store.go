package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/lunch-orders/internal/readmodel"
)

// PostgresReadStore stores read-model documents as jsonb, one table per
// collection. Documents are decoded back into their typed read models on the
// way out so callers keep the same assertions they use against the in-memory
// store.
type PostgresReadStore struct {
	db *sql.DB
}

func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

var collectionTables = map[string]string{
	CollectionMenus:     "read_menus",
	CollectionCalendars: "read_calendars",
	CollectionOrders:    "read_orders",
}

// Migrate creates the read model tables if they do not exist.
func (rs *PostgresReadStore) Migrate(ctx context.Context) error {
	for _, table := range collectionTables {
		_, err := rs.db.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id      TEXT PRIMARY KEY,
				doc     JSONB NOT NULL,
				version INT NOT NULL
			)`, table))
		if err != nil {
			return err
		}
	}
	return nil
}

func (rs *PostgresReadStore) Get(ctx context.Context, collection, id string) (any, bool, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, false, err
	}

	var doc []byte
	err = rs.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, table), id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	model, err := decodeReadModel(collection, doc)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

func (rs *PostgresReadStore) GetAll(ctx context.Context, collection string) ([]any, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	rows, err := rs.db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		model, err := decodeReadModel(collection, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, rows.Err()
}

func (rs *PostgresReadStore) Insert(ctx context.Context, collection, id string, doc any) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	data, version, err := encodeReadModel(doc)
	if err != nil {
		return err
	}

	_, err = rs.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc, version) VALUES ($1, $2, $3)`, table),
		id, data, version,
	)
	if isUniqueViolation(err) {
		return ErrDocumentExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (rs *PostgresReadStore) Replace(ctx context.Context, collection, id string, doc any) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	data, version, err := encodeReadModel(doc)
	if err != nil {
		return err
	}

	result, err := rs.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET doc = $2, version = $3 WHERE id = $1`, table),
		id, data, version,
	)
	if err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (rs *PostgresReadStore) Delete(ctx context.Context, collection, id string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	_, err = rs.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func tableFor(collection string) (string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return "", fmt.Errorf("unknown read model collection %q", collection)
	}
	return table, nil
}

func decodeReadModel(collection string, doc []byte) (any, error) {
	var model any
	switch collection {
	case CollectionMenus:
		model = &readmodel.Menu{}
	case CollectionCalendars:
		model = &readmodel.Calendar{}
	case CollectionOrders:
		model = &readmodel.Order{}
	default:
		return nil, fmt.Errorf("unknown read model collection %q", collection)
	}
	if err := json.Unmarshal(doc, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s document: %w", collection, err)
	}
	return model, nil
}

func encodeReadModel(doc any) ([]byte, int, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal read model: %w", err)
	}
	version := 0
	if v, ok := doc.(readmodel.Versioned); ok {
		version = v.DocVersion()
	}
	return data, version, nil
}
