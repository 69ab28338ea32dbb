package webutil

import (
	"context"

	"github.com/coreybb/todo-api/models"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// WithUser stores the authenticated user on the request context. Only the
// access middleware calls this, after token verification succeeds.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom returns the authenticated user resolved by the access middleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
