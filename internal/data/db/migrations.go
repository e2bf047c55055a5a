package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

var stepName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.sql$`)

// schemaStep is one forward-only schema change. The schema version of a
// database file is kept in PRAGMA user_version and equals the number of
// the last step applied.
type schemaStep struct {
	Version int
	Name    string
	SQL     string
}

// schemaSteps reads the embedded steps. fs.ReadDir returns entries sorted by
// filename, so the zero-padded prefix gives version order; gaps are rejected.
func schemaSteps() ([]schemaStep, error) {
	entries, err := fs.ReadDir(schemaFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("list schema steps: %w", err)
	}

	steps := make([]schemaStep, 0, len(entries))
	for _, e := range entries {
		version, name, err := splitStepName(e.Name())
		if err != nil {
			return nil, err
		}
		if want := len(steps) + 1; version != want {
			return nil, fmt.Errorf("schema step %s: want version %04d", e.Name(), want)
		}

		body, err := fs.ReadFile(schemaFS, path.Join("migrations", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema step %s: %w", e.Name(), err)
		}
		steps = append(steps, schemaStep{Version: version, Name: name, SQL: string(body)})
	}
	return steps, nil
}

func splitStepName(filename string) (int, string, error) {
	m := stepName.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", fmt.Errorf("schema step %q: expected NNNN_name.sql", filename)
	}
	version, _ := strconv.Atoi(m[1])
	if version == 0 {
		return 0, "", fmt.Errorf("schema step %q: version starts at 0001", filename)
	}
	return version, m[2], nil
}

func schemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrateUp brings the database to the newest embedded schema. Each step
// and its version bump commit together.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	current, err := schemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current > len(steps) {
		return fmt.Errorf("database schema version %d is newer than this build (%d)", current, len(steps))
	}

	for _, step := range steps[current:] {
		log.Info().Int("version", step.Version).Str("step", step.Name).Msg("upgrading todo schema")
		if err := applyStep(ctx, conn, step); err != nil {
			return fmt.Errorf("schema step %04d_%s: %w", step.Version, step.Name, err)
		}
	}
	return nil
}

func applyStep(ctx context.Context, conn *sql.DB, step schemaStep) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step.Version)); err != nil {
		return err
	}
	return tx.Commit()
}
