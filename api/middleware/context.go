package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxModerator contextKey = "is_moderator"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func ModeratorFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxModerator).(bool); ok {
		return v
	}
	return false
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithModerator marks the request as made by a moderator.
func WithModerator(ctx context.Context, isModerator bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxModerator, isModerator)
}
