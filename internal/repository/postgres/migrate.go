package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/maxviazov/cricket-tournament-service/migrations"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate applies the embedded goose migrations through a database/sql handle borrowed from pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string, logger zerolog.Logger) error {
	if err := ensurePool(pool); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log: logger.With().Str("component", "migrate").Logger()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	switch command {
	case MigrateUp:
		return goose.UpContext(ctx, db, ".")
	case MigrateDown:
		return goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// gooseLogger routes goose output into zerolog.
type gooseLogger struct{ log zerolog.Logger }

func (l gooseLogger) Printf(format string, v ...any) { l.log.Info().Msgf(format, v...) }

func (l gooseLogger) Fatalf(format string, v ...any) { l.log.Fatal().Msgf(format, v...) }
