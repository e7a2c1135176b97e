package identity

import "context"

// User is the signed-in account as reported by the identity provider.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Gateway resolves bearer tokens to users. A missing or empty token is not
// an error: the caller simply proceeds without a user, and submission
// degrades to local-only result display.
type Gateway interface {
	UserFromToken(ctx context.Context, token string) (*User, error)
}

type contextKey struct{}

// WithUser stores the resolved user on the request context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the signed-in user, or nil for anonymous requests.
func FromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}
