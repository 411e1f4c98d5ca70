package auth

import "context"

// LoginTestChecker maps tokens to usernames, for dev and tests.
type LoginTestChecker struct {
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]string{},
	}
}

func (c *LoginTestChecker) LoggedUser(_ context.Context, token string) (string, error) {
	return c.LoggedSessions[token], nil
}
