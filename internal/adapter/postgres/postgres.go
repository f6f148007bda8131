// Package postgres stores the history of resolved rounds.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	applicationName    = "tradesbychat"
	schemaVersionTable = "public.schema_version"

	// hashed server-side into the advisory lock key shared by all instances
	migrationLockName    = "tradesbychat:migrations"
	migrationLockTimeout = 5 * time.Second
)

// Connect opens a pool and verifies it. m may be nil.
func Connect(ctx context.Context, databaseURL string, m *metrics.DBMetrics) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	if m != nil {
		poolCfg.ConnConfig.Tracer = &MetricsTracer{metrics: m}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", describeTarget(poolCfg)...)
	return pool, nil
}

// describeTarget returns log attributes naming the server without leaking credentials.
func describeTarget(cfg *pgxpool.Config) []any {
	return []any{
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"tls", cfg.ConnConfig.TLSConfig != nil,
		"max_conns", cfg.MaxConns,
	}
}

// Migrate brings the schema up to date. Instances starting together serialize on a
// session-level advisory lock, so only the first one applies anything.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtext($1))", migrationLockName); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer unlockMigrations(conn.Conn())

	return migrateSchema(ctx, conn.Conn())
}

func unlockMigrations(conn *pgx.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), migrationLockTimeout)
	defer cancel()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock(hashtext($1))", migrationLockName); err != nil {
		slog.Error("Failed to release migration lock", "error", err)
	}
}

func migrateSchema(ctx context.Context, conn *pgx.Conn) error {
	migrationFS, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	migrator, err := migrate.NewMigrator(ctx, conn, schemaVersionTable)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.LoadMigrations(migrationFS); err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	migrator.OnStart = func(sequence int32, name, direction, _ string) {
		slog.Info("Applying migration", "sequence", sequence, "name", name, "direction", direction)
	}

	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	current, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("Database schema up to date", "version", current, "migrations", len(migrator.Migrations))
	return nil
}
