package logger

import "context"

// ctxKey is unexported so outside packages cannot collide with these
// context values.
type ctxKey int

const (
	requestIDKey ctxKey = iota
	turnIDKey
)

// WithRequestID stores the HTTP request ID on the context. The request
// ID middleware sets it; handlers and adapters read it back for log
// correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTurnID stores the deliberation turn ID on the context so logs
// emitted deep in a turn (provider calls, event publishes) can be tied
// back to it.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey, id)
}

// TurnID returns the turn ID from the context, or "" if unset.
func TurnID(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}
