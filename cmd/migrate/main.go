package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/driverdash/internal/pkg/config"
)

const migrationsDir = "migrations"

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("driverdash-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, createVersionTable); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	versions, err := listVersions(migrationsDir)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		log.Fatalf("read applied versions: %v", err)
	}

	switch os.Args[1] {
	case "up":
		for _, v := range versions {
			if applied[v] {
				continue
			}
			if err := apply(ctx, pool, v, v+".sql", true); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("UP    %s\n", v)
		}
	case "down":
		// Rolls back the most recent migration only.
		for i := len(versions) - 1; i >= 0; i-- {
			v := versions[i]
			if !applied[v] {
				continue
			}
			if err := apply(ctx, pool, v, v+".down.sql", false); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("DOWN  %s\n", v)
			break
		}
	case "status":
		for _, v := range versions {
			state := "pending"
			if applied[v] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, v)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// listVersions returns migration names without extension, e.g.
// "001_route_history", in lexical order.
func listVersions(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, f := range files {
		name := filepath.Base(f)
		if strings.HasSuffix(name, ".down.sql") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(name, ".sql"))
	}
	sort.Strings(versions)
	return versions, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// apply runs one file and records or forgets its version in the same
// transaction.
func apply(ctx context.Context, pool *pgxpool.Pool, version, file string, up bool) error {
	data, err := os.ReadFile(filepath.Join(migrationsDir, file))
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", file, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}

	if up {
		_, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version)
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", file, err)
	}
	return nil
}
