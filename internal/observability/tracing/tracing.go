package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID attaches a logger carrying a fresh traceId to ctx.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := log.Ctx(ctx).With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// InjectSessionID attaches a logger carrying the subscription id to ctx.
func InjectSessionID(ctx context.Context, sessionID string) context.Context {
	logger := log.Ctx(ctx).With().Str("session", sessionID).Logger()
	return logger.WithContext(ctx)
}
