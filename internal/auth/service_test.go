package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testUsername = "sara"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestAuthService_LoginLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	require.NotNil(t, authService)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		assert.Equal(t, tokenLength, s)
		return testToken, nil
	}

	ctx := context.Background()
	now := time.Now()
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, fmt.Sprintf("%d|%s", now.Unix(), testUsername), 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)
	token, err := authService.Login(ctx, testUsername, now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)
	loggedOut, err := authService.Logout(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	// logout again, session already gone
	mock.ExpectDel(sessionKey).SetVal(0)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(0)
	loggedOut, err = authService.Logout(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, loggedOut)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_LoginErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	authService.RandStringFunc = func(s int) (string, error) {
		return "", errors.New("no entropy")
	}
	_, err := authService.Login(context.Background(), testUsername, time.Now())
	assert.EqualError(t, err, "no entropy")

	authService.RandStringFunc = func(s int) (string, error) {
		return "tkn", nil
	}
	now := time.Now()
	mock.ExpectSet(sessionKeyPrefix+"tkn", fmt.Sprintf("%d|%s", now.Unix(), testUsername), 0).SetErr(errors.New("redis down"))
	_, err = authService.Login(context.Background(), testUsername, now)
	assert.EqualError(t, err, "redis down")
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	authService := NewAuthService(ttl, rdb)

	t1, t2, t3 := "token1", "token2", "token3"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2, t3})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(fmt.Sprintf("%d|%s", then.Unix(), testUsername))
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(fmt.Sprintf("%d|%s", now.Unix(), testUsername))
	mock.ExpectGet(sessionKeyPrefix + t3).SetVal("garbage")
	// t1 expired, t3 malformed
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)
	mock.ExpectDel(sessionKeyPrefix + t3).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t3).SetVal(1)

	authService.ScanAndClean(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseSessionValue(t *testing.T) {
	createdAt, username, err := parseSessionValue("1700000000|user|with|pipes")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), createdAt.Unix())
	assert.Equal(t, "user|with|pipes", username)

	_, _, err = parseSessionValue("1700000000")
	assert.ErrorIs(t, err, ErrMalformedSession)
	_, _, err = parseSessionValue("abc|user")
	assert.ErrorIs(t, err, ErrMalformedSession)
	_, _, err = parseSessionValue("1700000000|")
	assert.ErrorIs(t, err, ErrMalformedSession)
}
