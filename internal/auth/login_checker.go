package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// LoggedUser returns the username owning the token, or "" when the token is
// unknown or its session expired.
func (lc *LoginChecker) LoggedUser(ctx context.Context, token string) (string, error) {
	cmd := lc.redisClient.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(cmd.Err(), redis.Nil) {
		return "", nil
	}
	if err := cmd.Err(); err != nil {
		return "", err
	}

	createdAt, username, err := parseSessionValue(cmd.Val())
	if err != nil {
		return "", err
	}

	if time.Since(createdAt) > lc.ttl {
		return "", nil
	}

	return username, nil
}
