//go:build integration

package test

import (
	"context"
	"net/http"

	"github.com/2beens/gymcoach/internal/gym/program"
	"github.com/2beens/gymcoach/internal/gym/users"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	params := users.RegisterParams{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
		Gender:   program.GenderMale,
		Goal:     program.GoalMuscleGain,
		Level:    program.LevelBeginner,
	}
	token := s.registerAndLogin(ctx, t, params)

	status, _ := s.do(ctx, "POST", "/a/register", "", params)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(ctx, "POST", "/a/login", "", map[string]string{
		"username": params.Username,
		"password": "bad-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(ctx, "POST", "/a/login", "", map[string]string{
		"username": "nobody-" + params.Username,
		"password": params.Password,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(ctx, "GET", "/me", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(ctx, "GET", "/a/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(ctx, "GET", "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
