//go:build integration

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2beens/gymcoach/internal/gym/program"
	"github.com/2beens/gymcoach/internal/gym/report"
	"github.com/2beens/gymcoach/internal/gym/users"
	"github.com/2beens/gymcoach/internal/gym/weekly"
	"github.com/2beens/gymcoach/internal/gym/workout"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestWorkoutToReport() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.registerAndLogin(ctx, t, users.RegisterParams{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
		Gender:   program.GenderFemale,
		Goal:     program.GoalWeightLoss,
		Level:    program.LevelIntermediate,
	})

	status, body := s.do(ctx, "GET", "/me/program", token, nil)
	require.Equal(t, http.StatusOK, status)
	var days []users.ProgramDay
	require.NoError(t, json.Unmarshal(body, &days))
	require.Len(t, days, 3)
	for _, ex := range days[0].Exercises {
		if ex.Reps != program.TimedReps {
			assert.Equal(t, "12-15", ex.Reps)
			assert.Equal(t, 45, ex.Rest)
		}
	}

	status, body = s.do(ctx, "POST", "/workout/start", token, map[string]string{"day": program.DayUpper})
	require.Equal(t, http.StatusCreated, status, string(body))
	var session workout.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))

	for i := 0; i < session.Total; i++ {
		status, body = s.do(ctx, "GET", "/workout/current", token, nil)
		require.Equal(t, http.StatusOK, status, string(body))
		var current workout.CurrentExercise
		require.NoError(t, json.Unmarshal(body, &current))
		assert.True(t, current.Narrate)

		status, body = s.do(ctx, "POST", "/workout/next", token, map[string]string{"feedback": "heavy"})
		require.Equal(t, http.StatusOK, status, string(body))
	}

	status, body = s.do(ctx, "POST", "/workout/finish", token, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(ctx, "GET", "/me/week", token, nil)
	require.Equal(t, http.StatusOK, status)
	var week weekly.Status
	require.NoError(t, json.Unmarshal(body, &week))
	assert.Equal(t, 1, week.Week)
	assert.Equal(t, []string{program.DayUpper}, week.Completed)

	status, body = s.do(ctx, "GET", "/reports/preview", token, nil)
	require.Equal(t, http.StatusOK, status)
	var preview struct {
		Rows []report.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(body, &preview))
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, program.DayUpper, preview.Rows[0].Day)

	status, body = s.do(ctx, "GET", "/reports/export.csv", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(string(body), strings.Join(report.Header, ",")))
}
