package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/gym/weekly"
	"github.com/2beens/gymcoach/internal/middleware"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=users_test

type usersService interface {
	Register(ctx context.Context, params RegisterParams) (*storage.UserRecord, error)
	Authenticate(ctx context.Context, username, password string) error
	Get(ctx context.Context, username string) (*storage.UserRecord, error)
	UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*storage.UserRecord, error)
}

type loginService interface {
	Login(ctx context.Context, username string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type MeResponse struct {
	Username string             `json:"username"`
	Profile  storage.Profile    `json:"profile"`
	BMI      *BMI               `json:"bmi,omitempty"`
	Weights  map[string]float64 `json:"weights"`
	Sessions int                `json:"sessions"`
}

type ProgramExercise struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Sets            int     `json:"sets"`
	Reps            string  `json:"reps"`
	Rest            int     `json:"rest"`
	SuggestedWeight float64 `json:"suggested_weight"`
}

type ProgramDay struct {
	Day       string            `json:"day"`
	Exercises []ProgramExercise `json:"exercises"`
}

type Handler struct {
	service     usersService
	authService loginService
	nowFunc     func() time.Time
}

func NewHandler(service usersService, authService loginService) *Handler {
	return &Handler{
		service:     service,
		authService: authService,
		nowFunc:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) {
	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/register", handler.HandleRegister).
		Methods("POST", "OPTIONS").Name("register")
	loginSubrouter.
		HandleFunc("/login", handler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	// rate limit the account endpoints to slow down password guessing
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", allowedPerMin, metricsManager))

	meSubrouter := mainRouter.PathPrefix("/me").Subrouter()
	meSubrouter.HandleFunc("", handler.HandleMe).Methods("GET").Name("me")
	meSubrouter.HandleFunc("/profile", handler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("me-profile")
	meSubrouter.HandleFunc("/program", handler.HandleProgram).Methods("GET").Name("me-program")
	meSubrouter.HandleFunc("/week", handler.HandleWeek).Methods("GET").Name("me-week")
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var params RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Errorf("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	_, err := handler.service.Register(ctx, params)
	switch {
	case errors.Is(err, ErrUserExists):
		span.SetStatus(codes.Error, "user-exists")
		http.Error(w, ErrUserExists.Error(), http.StatusConflict)
		return
	case errors.Is(err, ErrInvalidInput):
		span.SetStatus(codes.Error, "invalid-input")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		span.SetStatus(codes.Error, "register-failed")
		log.Errorf("register user %s: %s", params.Username, err)
		http.Error(w, "registration failed, try again later", http.StatusInternalServerError)
		return
	}

	log.Printf("new user registered: %s", params.Username)
	pkg.WriteJSON(w, map[string]string{"username": params.Username}, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if err := handler.service.Authenticate(ctx, loginReq.Username, loginReq.Password); err != nil {
		log.Tracef("failed login attempt for user [%s]: %s", loginReq.Username, err)
		span.SetStatus(codes.Error, "wrong-credentials")
		http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	token, err := handler.authService.Login(ctx, loginReq.Username, handler.nowFunc())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LoginResponse{Token: token, Username: loginReq.Username})
	if err != nil {
		http.Error(w, "marshal response error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	username, record, ok := handler.loggedUserRecord(ctx, w)
	if !ok {
		return
	}

	resp := MeResponse{
		Username: username,
		Profile:  record.Profile,
		Weights:  record.Weights,
		Sessions: len(record.History),
	}
	if bmi, ok := ComputeBMI(record.Profile.Weight, record.Profile.Height); ok {
		resp.BMI = &bmi
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateProfile")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var update ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	record, err := handler.service.UpdateProfile(ctx, username, update)
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("update profile of %s: %s", username, err)
		http.Error(w, "profile not saved, try again later", http.StatusInternalServerError)
		return
	}

	resp := MeResponse{
		Username: username,
		Profile:  record.Profile,
		Weights:  record.Weights,
		Sessions: len(record.History),
	}
	if bmi, ok := ComputeBMI(record.Profile.Weight, record.Profile.Height); ok {
		resp.BMI = &bmi
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleProgram(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.program")
	defer span.End()

	_, record, ok := handler.loggedUserRecord(ctx, w)
	if !ok {
		return
	}

	days := make([]ProgramDay, 0, len(record.Program))
	for _, day := range record.Program.Days() {
		entries := record.Program[day]
		pd := ProgramDay{
			Day:       day,
			Exercises: make([]ProgramExercise, 0, len(entries)),
		}
		for _, e := range entries {
			pd.Exercises = append(pd.Exercises, ProgramExercise{
				ID:              e.ID,
				Name:            library.Name(e.ID),
				Sets:            e.Sets,
				Reps:            e.Reps,
				Rest:            e.Rest,
				SuggestedWeight: record.Weights[e.ID],
			})
		}
		days = append(days, pd)
	}
	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.week")
	defer span.End()

	_, record, ok := handler.loggedUserRecord(ctx, w)
	if !ok {
		return
	}

	status := weekly.Compute(record.Profile, record.History, record.Program.Days(), handler.nowFunc())
	pkg.WriteJSON(w, status, http.StatusOK)
}

func (handler *Handler) loggedUserRecord(ctx context.Context, w http.ResponseWriter) (string, *storage.UserRecord, bool) {
	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", nil, false
	}

	record, err := handler.service.Get(ctx, username)
	if err != nil {
		log.Warnf("logged user %s not found in user db: %s", username, err)
		http.Error(w, "user not found", http.StatusNotFound)
		return "", nil, false
	}
	return username, record, true
}
