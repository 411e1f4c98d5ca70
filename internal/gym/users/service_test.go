package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/gymcoach/internal/gym/program"
	"github.com/2beens/gymcoach/internal/gym/users"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword     = "testpass"
	testPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i" // testpass
)

var testNow = time.Date(2025, time.April, 2, 18, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, initial []byte) (*users.Service, *storage.MemoryBackend, *metrics.Manager) {
	t.Helper()
	m := metrics.NewTestManager()
	backend := storage.NewMemoryBackend(initial)
	s := users.NewService(storage.NewGateway(backend, m), m)
	s.HashPasswordFunc = func(password string) (string, error) {
		return "hashed:" + password, nil
	}
	s.NowFunc = func() time.Time {
		return testNow
	}
	return s, backend, m
}

func testRegisterParams() users.RegisterParams {
	return users.RegisterParams{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
		Gender:   program.GenderFemale,
		Goal:     program.GoalWeightLoss,
		Level:    program.LevelBeginner,
	}
}

func TestService_Register(t *testing.T) {
	s, backend, m := newTestService(t, nil)
	ctx := context.Background()
	params := testRegisterParams()

	record, err := s.Register(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "hashed:"+params.Password, record.Password)
	assert.Equal(t, "2025-04-02", record.Profile.Joined)
	assert.Equal(t, "female", record.Profile.Gender)
	assert.Equal(t, "weight loss", record.Profile.Goal)
	assert.Zero(t, record.Profile.Weight)
	assert.Zero(t, record.Profile.Height)
	assert.Empty(t, record.History)
	assert.Len(t, record.Program, 3)
	assert.Equal(t, float64(4), record.Weights["Floor Press"])
	assert.Equal(t, 1, backend.Saves)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRegistrations))

	stored, err := s.Get(ctx, params.Username)
	require.NoError(t, err)
	assert.Equal(t, record.Program, stored.Program)
	assert.NotNil(t, stored.History)
}

func TestService_Register_DuplicateLeavesRecordUntouched(t *testing.T) {
	s, backend, _ := newTestService(t, nil)
	ctx := context.Background()
	params := testRegisterParams()

	_, err := s.Register(ctx, params)
	require.NoError(t, err)
	_, err = s.UpdateProfile(ctx, params.Username, users.ProfileUpdate{Weight: 70, Height: 170})
	require.NoError(t, err)
	before := string(backend.Document())

	again := params
	again.Password = "other-password"
	again.Gender = program.GenderMale
	again.Goal = program.GoalMuscleGain
	_, err = s.Register(ctx, again)
	require.ErrorIs(t, err, users.ErrUserExists)
	assert.Equal(t, "username already taken", err.Error())

	assert.Equal(t, before, string(backend.Document()))
	assert.Equal(t, 2, backend.Saves)
}

func TestService_Register_InvalidInput(t *testing.T) {
	s, backend, _ := newTestService(t, nil)

	testCases := []struct {
		name   string
		modify func(p *users.RegisterParams)
	}{
		{"empty username", func(p *users.RegisterParams) { p.Username = "  " }},
		{"empty password", func(p *users.RegisterParams) { p.Password = "" }},
		{"bad gender", func(p *users.RegisterParams) { p.Gender = "x" }},
		{"bad goal", func(p *users.RegisterParams) { p.Goal = "get huge" }},
		{"bad level", func(p *users.RegisterParams) { p.Level = "" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := testRegisterParams()
			tc.modify(&params)
			_, err := s.Register(context.Background(), params)
			assert.ErrorIs(t, err, users.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, backend.Saves)
}

func TestService_Register_SaveFails(t *testing.T) {
	s, backend, _ := newTestService(t, nil)
	backend.SaveErr = errors.New("sheets quota")

	_, err := s.Register(context.Background(), testRegisterParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.SaveErr)
}

func TestService_Authenticate(t *testing.T) {
	doc := `{
		"hashed": {"password": "` + testPasswordHash + `", "profile": {"joined": "2025-01-01"}},
		"legacy": {"password": "1234", "profile": {"joined": "2024-01-01"}}
	}`
	s, _, m := newTestService(t, []byte(doc))
	ctx := context.Background()

	assert.NoError(t, s.Authenticate(ctx, "hashed", testPassword))
	assert.NoError(t, s.Authenticate(ctx, "legacy", "1234"))

	// unknown user and wrong password look the same
	assert.ErrorIs(t, s.Authenticate(ctx, "hashed", "wrong"), users.ErrInvalidCredentials)
	assert.ErrorIs(t, s.Authenticate(ctx, "legacy", "12345"), users.ErrInvalidCredentials)
	assert.ErrorIs(t, s.Authenticate(ctx, "nobody", testPassword), users.ErrInvalidCredentials)
	assert.ErrorIs(t, s.Authenticate(ctx, "legacy", ""), users.ErrInvalidCredentials)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterLogins.WithLabelValues("ok")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.CounterLogins.WithLabelValues("failed")))
}

func TestService_UpdateProfile(t *testing.T) {
	s, _, _ := newTestService(t, nil)
	ctx := context.Background()
	params := testRegisterParams()
	_, err := s.Register(ctx, params)
	require.NoError(t, err)

	record, err := s.UpdateProfile(ctx, params.Username, users.ProfileUpdate{Weight: 82.5, Height: 181})
	require.NoError(t, err)
	assert.Equal(t, 82.5, record.Profile.Weight)

	stored, err := s.Get(ctx, params.Username)
	require.NoError(t, err)
	assert.Equal(t, float64(181), stored.Profile.Height)

	_, err = s.UpdateProfile(ctx, params.Username, users.ProfileUpdate{Weight: -1})
	assert.ErrorIs(t, err, users.ErrInvalidInput)
	_, err = s.UpdateProfile(ctx, "nobody", users.ProfileUpdate{Weight: 80})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestComputeBMI(t *testing.T) {
	_, ok := users.ComputeBMI(0, 180)
	assert.False(t, ok)
	_, ok = users.ComputeBMI(80, 0)
	assert.False(t, ok)

	bmi, ok := users.ComputeBMI(81, 180)
	require.True(t, ok)
	assert.Equal(t, 25.0, bmi.Value)
	assert.InDelta(t, 50.0, bmi.Position, 0.001)

	bmi, ok = users.ComputeBMI(40, 190)
	require.True(t, ok)
	assert.Equal(t, 0.0, bmi.Position)

	bmi, ok = users.ComputeBMI(150, 160)
	require.True(t, ok)
	assert.Equal(t, 100.0, bmi.Position)
}
