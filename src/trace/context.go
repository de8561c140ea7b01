package trace

import (
	"context"
)

type contextKey string

const CorrelationKey contextKey = "correlation_id"

// WithCorrelationID tags a request context so every log line downstream of
// the webhook can be joined back to one inbound signal.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}

func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CorrelationKey).(string)
	return id, ok
}
