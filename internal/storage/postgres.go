package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const initKVSQL = `
	CREATE TABLE IF NOT EXISTS pmsdash_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStorage keeps values in a single kv table, for deployments where
// the dashboard server runs without a writable local disk.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	if dsn == "" {
		return nil, errors.New("postgres storage needs a DSN")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping the db: %w", err)
	}

	if _, err := pool.Exec(ctx, initKVSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to execute init sql: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

func (p *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM pmsdash_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `
        INSERT INTO pmsdash_kv (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `, key, value)

	return err
}

// Remove is a no-op for a missing key.
func (p *PostgresStorage) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `DELETE FROM pmsdash_kv WHERE key = $1`, key)

	return err
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()

	return nil
}
