package internal

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/config"
	"github.com/2beens/gymcoach/internal/gym/program"
	"github.com/2beens/gymcoach/internal/gym/report"
	"github.com/2beens/gymcoach/internal/gym/workout"
	"github.com/2beens/gymcoach/internal/misc"
	"github.com/2beens/gymcoach/internal/music"
	"github.com/2beens/gymcoach/internal/narration"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSessionManager struct {
	checker *auth.LoginTestChecker
	count   int
	cleaned int
}

func (m *testSessionManager) Login(_ context.Context, username string, _ time.Time) (string, error) {
	m.count++
	token := fmt.Sprintf("token-%d", m.count)
	m.checker.LoggedSessions[token] = username
	return token, nil
}

func (m *testSessionManager) Logout(_ context.Context, token string) (bool, error) {
	_, ok := m.checker.LoggedSessions[token]
	delete(m.checker.LoggedSessions, token)
	return ok, nil
}

func (m *testSessionManager) ScanAndClean(context.Context) {
	m.cleaned++
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(_ context.Context, _ string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{Limit: limit, Allowed: 1}, nil
}

func newTestServer(t *testing.T) (*Server, *mux.Router, *storage.MemoryBackend) {
	t.Helper()

	checker := auth.NewLoginTestChecker()
	metricsManager, promRegistry := metrics.NewTestManagerAndRegistry()
	backend := storage.NewMemoryBackend(nil)
	quotesManager, err := misc.NewDefaultQuotesManager()
	require.NoError(t, err)

	s := &Server{
		config: &config.Config{
			LoginRateLimitAllowedPerMin: 100,
			AllowedOrigins:              []string{"http://gym.test"},
		},
		versionInfo:     "test-version",
		gateway:         storage.NewGateway(backend, metricsManager),
		workoutSessions: workout.NewMemorySessionStore(),
		loginChecker:    checker,
		authService:     &testSessionManager{checker: checker},
		rateLimiter:     allowAllLimiter{},
		synthesizer:     narration.NewSynthesizer("http://localhost:1", "en", http.DefaultClient),
		music:           music.NewService(context.Background(), music.ServiceParams{}),
		quotesManager:   quotesManager,
		metricsManager:  metricsManager,
		promRegistry:    promRegistry,
		otelShutdown:    func() {},
	}

	r, err := s.routerSetup()
	require.NoError(t, err)
	return s, r, backend
}

func do(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestServer_PublicRoutes(t *testing.T) {
	_, r, _ := newTestServer(t)

	rec := do(t, r, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/version", "", "")
	assert.Equal(t, "test-version", rec.Body.String())

	rec = do(t, r, "GET", "/quote/random?genre=strength", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/exercises", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/music/playlist", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, "GET", "/nope", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, path := range []string{"/me", "/me/program", "/workout/current", "/reports/preview"} {
		rec = do(t, r, "GET", path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestServer_WorkoutFlow(t *testing.T) {
	s, r, backend := newTestServer(t)

	rec := do(t, r, "POST", "/a/register", "",
		`{"username":"ana","password":"s3cret","gender":"female","goal":"weight loss","level":"beginner"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, r, "POST", "/a/register", "",
		`{"username":"ana","password":"other","gender":"male","goal":"muscle gain","level":"beginner"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, "POST", "/a/login", "", `{"username":"ana","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, "POST", "/a/login", "", `{"username":"ana","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login.Token
	require.NotEmpty(t, token)

	rec = do(t, r, "PUT", "/me/profile", token, `{"weight":62.5,"height":168}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, "POST", "/workout/start", token, `{"day":"`+program.DayLower+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started workout.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.Greater(t, started.Total, 0)

	for i := 0; i < started.Total; i++ {
		rec = do(t, r, "GET", "/workout/current", token, "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, r, "POST", "/workout/next", token, `{"feedback":"light"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// nothing saved to history before finishing
	db := s.gateway.Load(context.Background())
	assert.Empty(t, db["ana"].History)

	rec = do(t, r, "POST", "/workout/finish", token, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	db, err := storage.Decode(backend.Document())
	require.NoError(t, err)
	require.Len(t, db["ana"].History, 1)
	assert.Equal(t, program.DayLower, db["ana"].History[0].DayLabel())
	assert.Equal(t, 62.5, db["ana"].History[0].UserWeight)
	// Goblet Squat seeded at 10, one "light" feedback
	assert.Equal(t, float64(11), db["ana"].Weights["Goblet Squat"])

	rec = do(t, r, "GET", "/me/week", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/reports/preview", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview struct {
		Rows  []report.Row `json:"rows"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, 1, preview.Total)
	require.Len(t, preview.Rows, 1)
	assert.Contains(t, preview.Rows[0].Details, "Goblet squat: 10kg")

	rec = do(t, r, "GET", "/reports/export.csv", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	rec = do(t, r, "GET", "/a/logout", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, "GET", "/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.CounterWorkoutsFinished))
}

func TestServer_StartJobs(t *testing.T) {
	s, _, _ := newTestServer(t)
	require.NoError(t, s.startJobs(context.Background()))
	assert.Len(t, s.cron.Entries(), 1)
	s.cron.Stop()
}
