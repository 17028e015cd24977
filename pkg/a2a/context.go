package a2a

import "context"

type contextIDKey struct{}

// WithContextID tags ctx with the conversation identifier of the caller's
// own conversation, so downstream calls (e.g. a specialist invoked as a
// tool) can reuse one conversation key per end user.
func WithContextID(ctx context.Context, contextID string) context.Context {
	return context.WithValue(ctx, contextIDKey{}, contextID)
}

// ContextIDFrom returns the conversation identifier carried by ctx, or "".
func ContextIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(contextIDKey{}).(string); ok {
		return v
	}
	return ""
}
