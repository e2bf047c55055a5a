package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/backoff"
	"github.com/colonyops/todosync/internal/data/db"
	"github.com/rs/zerolog"
)

// busyRetry governs retries while another process holds the database lock.
var busyRetry = backoff.Policy{
	Base:       100 * time.Millisecond,
	Growth:     2,
	Cap:        2 * time.Second,
	MaxRetries: 3,
	MaxJitter:  0.1,
}

// OpenDatabase opens the SQLite database at path. A locked database is
// retried; a corrupted one is moved aside and recreated empty.
func OpenDatabase(ctx context.Context, path string, opts db.OpenOptions, logger zerolog.Logger) (*db.DB, error) {
	database, err := db.Open(path, opts)
	if err != nil && IsBusyError(err) {
		logger.Debug().Err(err).Msg("database busy, retrying")
		database, err = backoff.Retry(logger.WithContext(ctx), busyRetry, func(context.Context) (*db.DB, error) {
			database, err := db.Open(path, opts)
			if err != nil && !IsBusyError(err) {
				return nil, backoff.Permanent(err)
			}
			return database, err
		})
	}
	if err == nil {
		return database, nil
	}
	if !IsCorruptionError(err) {
		return nil, err
	}

	logger.Warn().Err(err).Str("path", path).Msg("database corrupted, moving it aside")
	if rerr := RecoverFromCorruption(path); rerr != nil {
		return nil, fmt.Errorf("recover corrupted database: %w", rerr)
	}

	return db.Open(path, opts)
}
