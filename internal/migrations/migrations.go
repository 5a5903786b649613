// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// ErrUnknownCommand is returned by Run for anything but up, down or status.
var ErrUnknownCommand = errors.New("migrations: unknown command")

const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

// Up applies all pending migrations.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	return Run(ctx, pool, CommandUp)
}

// Run executes a goose command against the database behind pool.
func Run(ctx context.Context, pool *pgxpool.Pool, command string) error {
	switch command {
	case CommandUp, CommandDown, CommandStatus:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close migration connection", "error", err)
		}
	}(db)

	goose.SetBaseFS(files)
	goose.SetLogger(logger{ctx: ctx})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var err error
	switch command {
	case CommandUp:
		err = goose.UpContext(ctx, db, dir)
	case CommandDown:
		err = goose.DownContext(ctx, db, dir)
	case CommandStatus:
		err = goose.StatusContext(ctx, db, dir)
	}
	if err != nil {
		return fmt.Errorf("migrations %s: %w", command, err)
	}

	return nil
}

// logger routes goose output through slog.
type logger struct {
	ctx context.Context
}

func (l logger) Fatalf(format string, v ...any) {
	slog.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l logger) Printf(format string, v ...any) {
	slog.InfoContext(l.ctx, fmt.Sprintf(format, v...))
}
