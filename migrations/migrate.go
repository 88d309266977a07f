// Package migrations holds the storefront schema as ordered SQL files and
// applies them under a Postgres advisory lock.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var sqlFiles embed.FS

// lockKey serializes concurrent migrators across replicas.
const lockKey int64 = 734210001

const ensureLedger = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type migration struct {
	name string
	sql  string
}

// load returns the non-empty embedded migrations sorted by file name.
func load() ([]migration, error) {
	names, err := fs.Glob(sqlFiles, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		raw, err := sqlFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			continue
		}
		out = append(out, migration{name: name, sql: body})
	}
	return out, nil
}

// Apply runs every migration not yet recorded in schema_migrations.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	all, err := load()
	if err != nil {
		return err
	}

	return locked(ctx, pool, func(conn *pgxpool.Conn) error {
		done, err := appliedSet(ctx, conn)
		if err != nil {
			return err
		}
		for _, m := range all {
			if done[m.name] {
				continue
			}
			if err := applyOne(ctx, conn, m); err != nil {
				return err
			}
			logger.Info().Str("migration", m.name).Msg("migration applied")
		}
		return nil
	})
}

// Pending lists the migrations Apply would run, in order.
func Pending(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}

	var pending []string
	err = locked(ctx, pool, func(conn *pgxpool.Conn) error {
		done, err := appliedSet(ctx, conn)
		if err != nil {
			return err
		}
		for _, m := range all {
			if !done[m.name] {
				pending = append(pending, m.name)
			}
		}
		return nil
	})
	return pending, err
}

func locked(ctx context.Context, pool *pgxpool.Pool, fn func(*pgxpool.Conn) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	if _, err := conn.Exec(ctx, ensureLedger); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return fn(conn)
}

func appliedSet(ctx context.Context, conn *pgxpool.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		done[name] = true
	}
	return done, rows.Err()
}

// applyOne runs a migration and records it in one transaction.
func applyOne(ctx context.Context, conn *pgxpool.Conn, m migration) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.name); err != nil {
		return fmt.Errorf("record migration %s: %w", m.name, err)
	}
	return tx.Commit(ctx)
}
