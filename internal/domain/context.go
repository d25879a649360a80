package domain

import "context"

// ContextKey is a type for context keys to avoid magic strings
type ContextKey string

const (
	// ContextKeyGrant is the key for the validated access token grant
	ContextKeyGrant ContextKey = "grant"
)

// WithGrant adds the validated access token grant to the context
func WithGrant(ctx context.Context, grant *AccessToken) context.Context {
	return context.WithValue(ctx, ContextKeyGrant, grant)
}

// GetGrant retrieves the validated access token grant from the context
func GetGrant(ctx context.Context) (*AccessToken, bool) {
	grant, ok := ctx.Value(ContextKeyGrant).(*AccessToken)
	return grant, ok
}
