package store

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each collection as one jsonb row in the records table
// (see postgres.Migrate).
type Postgres struct{ DB *pgxpool.Pool }

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := p.DB.QueryRow(ctx, `SELECT body FROM records WHERE key=$1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.DB.Exec(ctx, `
		INSERT INTO records(key, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, key, value)
	return err
}

func (p *Postgres) Close() error {
	p.DB.Close()
	return nil
}
