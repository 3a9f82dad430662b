package storage

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/delbarteam/delbar-api/internal/db"
)

// Postgres — хранилище на таблице kv_store
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создает хранилище поверх общего пула соединений
func NewPostgres() *Postgres {
	return &Postgres{pool: db.Pool}
}

func (p *Postgres) Get(key string) (string, bool, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var value string
	err := p.pool.QueryRow(ctx, `
		SELECT value FROM kv_store WHERE key = $1
	`, key).Scan(&value)

	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (p *Postgres) Set(key, value string) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP
	`, key, value)

	return err
}

func (p *Postgres) Remove(key string) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := p.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}
