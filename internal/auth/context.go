package auth

import "context"

type userContextKey struct{}

// CurrentUser is the authenticated caller of a request.
type CurrentUser struct {
	ID       int64
	Username string
	Role     Role
}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (CurrentUser, bool) {
	if ctx == nil {
		return CurrentUser{}, false
	}
	u, ok := ctx.Value(userContextKey{}).(CurrentUser)
	if !ok || u.ID <= 0 {
		return CurrentUser{}, false
	}
	return u, true
}
