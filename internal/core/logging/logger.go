package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// OpContext attaches logger, the operation name and the task ID (when set) to
// ctx so that zerolog.Ctx and ContextHook pick them up.
func OpContext(ctx context.Context, logger zerolog.Logger, op, taskID string) context.Context {
	ctx = logger.WithContext(ctx)
	ctx = WithOp(ctx, op)
	if taskID != "" {
		ctx = WithTaskID(ctx, taskID)
	}
	return ctx
}
