package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a pgx-backed Store. Schema lives in migrations/.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Store on top of an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) PutSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, code, password_hash, created_at)
		VALUES ($1, $2, COALESCE($3, ''), $4)
		ON CONFLICT (code) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		rec.ID, rec.Code, rec.PasswordHash, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *Postgres) GetSession(ctx context.Context, code string) (*SessionRecord, error) {
	var rec SessionRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, password_hash, created_at FROM sessions WHERE code = $1`,
		code).Scan(&rec.ID, &rec.Code, &rec.PasswordHash, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

func (s *Postgres) SaveStateKey(ctx context.Context, code, key string, value json.RawMessage) error {
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_state (session_code, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_code, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		code, key, value)
	if err != nil {
		return fmt.Errorf("save state key %q: %w", key, err)
	}
	return nil
}

func (s *Postgres) SaveStateSnapshot(ctx context.Context, code string, snap map[string]json.RawMessage) error {
	batch := &pgx.Batch{}
	for key, value := range snap {
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		batch.Queue(`
			INSERT INTO session_state (session_code, key, value, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (session_code, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			code, key, value)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range snap {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save state snapshot: %w", err)
		}
	}
	return nil
}

func (s *Postgres) LoadState(ctx context.Context, code string) (map[string]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key, value FROM session_state WHERE session_code = $1`, code)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value json.RawMessage
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state rows: %w", err)
	}
	return out, nil
}
