package backend

import "context"

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx so backend clients
// can authenticate the request. Service methods wrap the context once,
// right after session resolution.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached by WithToken, or ""
// when the call is unauthenticated.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
