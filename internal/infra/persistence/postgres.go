package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresMedium is a persistent byte-string medium backed by a single
// table: one row per root entry, document stored as text. It is an
// alternative to FileMedium for deployments that already run Postgres.
type PostgresMedium struct {
	db *pgxpool.Pool
}

// NewPostgresMedium creates the medium over an established pool.
func NewPostgresMedium(db *pgxpool.Pool) *PostgresMedium {
	return &PostgresMedium{db: db}
}

// NewPostgresPool parses url, applies the pool limits, and connects.
func NewPostgresPool(ctx context.Context, url string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if minConns > 0 {
		poolConfig.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate brings the entries schema up to date using the embedded
// migration files.
func Migrate(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Load reads the document stored under root.
func (p *PostgresMedium) Load(ctx context.Context, root string) (string, bool, error) {
	var doc string
	err := p.db.QueryRow(ctx,
		`SELECT doc FROM nestkv_entries WHERE root_key = $1`, root).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return doc, true, nil
}

// Store upserts the document under root.
func (p *PostgresMedium) Store(ctx context.Context, root string, doc string) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO nestkv_entries (root_key, doc, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (root_key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		root, doc)
	return err
}

// Remove deletes the row under root. Absent entries are a no-op.
func (p *PostgresMedium) Remove(ctx context.Context, root string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM nestkv_entries WHERE root_key = $1`, root)
	return err
}

// Keys lists all root-entry names.
func (p *PostgresMedium) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT root_key FROM nestkv_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, err
		}
		keys = append(keys, root)
	}
	return keys, rows.Err()
}

// Clear removes every row in the entries table.
func (p *PostgresMedium) Clear(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `DELETE FROM nestkv_entries`)
	return err
}
