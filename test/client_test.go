//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/gym/users"

	"github.com/stretchr/testify/require"
)

// do sends a request to the running server and returns the status code and body.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) registerAndLogin(ctx context.Context, t *testing.T, params users.RegisterParams) string {
	t.Helper()

	status, body := s.do(ctx, "POST", "/a/register", "", params)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(ctx, "POST", "/a/login", "", map[string]string{
		"username": params.Username,
		"password": params.Password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var loginResp users.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token, fmt.Sprintf("no token for %s", params.Username))
	return loginResp.Token
}
