package model

import "context"

type contextKey string

const requestIDKey contextKey = "ckdrisk_request_id"

// WithRequestID attaches a request identifier to the context for event
// logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom extracts the request identifier from the context.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
