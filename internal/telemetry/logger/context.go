package logger

import "context"

type contextKey string

const (
	requestIDKey contextKey = "forkmesh.request_id"
	forkIDKey    contextKey = "forkmesh.fork_id"
)

// WithRequestID tags ctx with the id of the HTTP request being served.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id, or "" when ctx has none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithForkID tags ctx with the fork an operation targets.
func WithForkID(ctx context.Context, forkID string) context.Context {
	return context.WithValue(ctx, forkIDKey, forkID)
}

// ForkIDFromContext returns the fork id, or "" when ctx has none.
func ForkIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(forkIDKey).(string)
	return id
}
