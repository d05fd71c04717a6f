package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"quizmaster/internal/logger"
)

// Migrations holds the schema, one NNNN_name.up.sql / .down.sql pair per version.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	migrationsTableExistsQuery = `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`
	createMigrationsTableQuery = `CREATE TABLE schema_migrations (VERSION NUMBER(19) PRIMARY KEY, APPLIED_AT TIMESTAMP WITH TIME ZONE NOT NULL)`
	migrationAppliedQuery      = `SELECT COUNT(*) FROM schema_migrations WHERE VERSION = :1`
	recordMigrationQuery       = `INSERT INTO schema_migrations (VERSION, APPLIED_AT) VALUES (:1, :2)`
)

// RunMigrations applies every up migration in dir of fsys that is not yet
// recorded in schema_migrations, in version order. golang-migrate ships no
// Oracle database driver, so only its source driver is used here for ordering
// and parsing file names.
func RunMigrations(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir string) (int, error) {
	log := logger.Get()

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("could not open migrations source: %w", err)
	}
	defer src.Close()

	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, err
	}

	applied := 0
	version, err := src.First()
	for err == nil {
		var done int
		if err := db.GetContext(ctx, &done, migrationAppliedQuery, version); err != nil {
			return applied, fmt.Errorf("could not check migration %d: %w", version, err)
		}

		if done == 0 {
			r, identifier, err := src.ReadUp(version)
			if err != nil {
				return applied, fmt.Errorf("could not read migration %d: %w", version, err)
			}
			body, err := io.ReadAll(r)
			r.Close()
			if err != nil {
				return applied, fmt.Errorf("could not read migration %d: %w", version, err)
			}

			for _, stmt := range SplitStatements(string(body)) {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return applied, fmt.Errorf("could not execute migration %d_%s: %w", version, identifier, err)
				}
			}
			if _, err := db.ExecContext(ctx, recordMigrationQuery, version, time.Now()); err != nil {
				return applied, fmt.Errorf("could not record migration %d: %w", version, err)
			}
			applied++
			log.Info("Executed migration", zap.Uint("version", version), zap.String("name", identifier))
		}

		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return applied, fmt.Errorf("could not list migrations: %w", err)
	}

	log.Info("Migrations completed successfully", zap.Int("applied", applied))
	return applied, nil
}

func ensureMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	var exists int
	if err := db.GetContext(ctx, &exists, migrationsTableExistsQuery); err != nil {
		return fmt.Errorf("could not check schema_migrations: %w", err)
	}
	if exists > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, createMigrationsTableQuery); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}
	return nil
}

// SplitStatements breaks a migration file into single statements. Oracle
// rejects a trailing semicolon, so each one is stripped.
func SplitStatements(body string) []string {
	var stmts []string
	for _, part := range strings.Split(body, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
