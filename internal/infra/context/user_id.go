package context

import (
	"context"
)

const contextKeyUserID = contextKey("userID")

// UserIDFromContext extracts the authenticated user's id from the context.
// Returns the id and true if present, or zero and false if not present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)

	return userID, ok
}

// WithUserID creates a new context with the given user id value.
// This context tracks the authenticated user throughout a request.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}
