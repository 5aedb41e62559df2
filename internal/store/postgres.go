package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresGateway persists the store as a single-row blob in Postgres. The
// load/save contract is identical to the file gateway; the database is just a
// different home for the same opaque blob.
type PostgresGateway struct {
	db  *sql.DB
	key string
}

// NewPostgresGateway opens a Postgres connection with sane pool defaults and
// ensures the blob table exists.
func NewPostgresGateway(ctx context.Context, connString, key string) (*PostgresGateway, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_blobs (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		db.Close()
		return nil, err
	}
	if key == "" {
		key = "default"
	}
	return &PostgresGateway{db: db, key: key}, nil
}

// Close closes the underlying connection.
func (g *PostgresGateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// Load implements Gateway. A missing row is a fresh deployment, not an error.
func (g *PostgresGateway) Load(ctx context.Context) (*Store, error) {
	var data []byte
	row := g.db.QueryRowContext(ctx, `SELECT data FROM store_blobs WHERE key = $1`, g.key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(), nil
		}
		return New(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s.normalize()
	return &s, nil
}

// Save implements Gateway via upsert, so the row swap is atomic on the
// database side.
func (g *PostgresGateway) Save(ctx context.Context, s *Store) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO store_blobs (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, g.key, data)
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}
