package auth

import "context"

// TokenHeader carries the login session token on protected requests.
const TokenHeader = "X-Gym-Token"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	LoggedUser(ctx context.Context, token string) (string, error)
}

type usernameCtxKey struct{}

func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameCtxKey{}, username)
}

// UsernameFromContext returns the user set by the auth middleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameCtxKey{}).(string)
	return username, ok && username != ""
}
