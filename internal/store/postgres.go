// Package store keeps users, delivered vacancies and cached profiles.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the part of *pgxpool.Pool the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id  BIGINT PRIMARY KEY,
	username     TEXT NOT NULL DEFAULT '',
	resume_text  TEXT NOT NULL DEFAULT '',
	hh_resume_id TEXT NOT NULL DEFAULT '',
	is_active    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sent_vacancies (
	id            BIGSERIAL PRIMARY KEY,
	telegram_id   BIGINT NOT NULL,
	vacancy_id    TEXT NOT NULL,
	vacancy_name  TEXT NOT NULL DEFAULT '',
	employer_name TEXT NOT NULL DEFAULT '',
	score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	sent_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (telegram_id, vacancy_id)
);

CREATE INDEX IF NOT EXISTS sent_vacancies_user_sent_at ON sent_vacancies (telegram_id, sent_at);
`

// NewPostgresPool connects to Postgres and verifies connectivity.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates tables when they do not exist.
func EnsureSchema(ctx context.Context, db querier) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
