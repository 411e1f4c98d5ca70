package workout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workout_test

type workoutService interface {
	Start(ctx context.Context, username, day string) (*Session, error)
	Current(ctx context.Context, username string) (*CurrentExercise, error)
	RecordAndNext(ctx context.Context, username string, feedback Feedback) (*Session, error)
	Finish(ctx context.Context, username string) (*storage.SessionLog, error)
}

type SessionResponse struct {
	SessionID string             `json:"session_id"`
	Day       string             `json:"day"`
	State     State              `json:"state"`
	Index     int                `json:"index"`
	Total     int                `json:"total"`
	Weights   map[string]float64 `json:"weights"`
}

func newSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		SessionID: s.ID,
		Day:       s.Day,
		State:     s.State(),
		Index:     s.Index,
		Total:     len(s.Exercises),
		Weights:   s.Weights,
	}
}

type Handler struct {
	service workoutService
}

func NewHandler(service workoutService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutRouter := mainRouter.PathPrefix("/workout").Subrouter()
	workoutRouter.HandleFunc("/start", handler.HandleStart).Methods("POST", "OPTIONS").Name("workout-start")
	workoutRouter.HandleFunc("/current", handler.HandleCurrent).Methods("GET").Name("workout-current")
	workoutRouter.HandleFunc("/next", handler.HandleNext).Methods("POST", "OPTIONS").Name("workout-next")
	workoutRouter.HandleFunc("/finish", handler.HandleFinish).Methods("POST", "OPTIONS").Name("workout-finish")
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.start")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req struct {
		Day string `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Day == "" {
		http.Error(w, "error, day empty", http.StatusBadRequest)
		return
	}

	session, err := handler.service.Start(ctx, username, req.Day)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeError(w, username, err)
		return
	}

	pkg.WriteJSON(w, newSessionResponse(session), http.StatusCreated)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.current")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	current, err := handler.service.Current(ctx, username)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeError(w, username, err)
		return
	}

	pkg.WriteJSON(w, current, http.StatusOK)
}

func (handler *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.next")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req struct {
		Feedback Feedback `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, ErrInvalidFeedback.Error(), http.StatusBadRequest)
		return
	}

	session, err := handler.service.RecordAndNext(ctx, username, req.Feedback)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeError(w, username, err)
		return
	}

	pkg.WriteJSON(w, newSessionResponse(session), http.StatusOK)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.finish")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sessionLog, err := handler.service.Finish(ctx, username)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeError(w, username, err)
		return
	}

	pkg.WriteJSON(w, sessionLog, http.StatusCreated)
}

func (handler *Handler) writeError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, storage.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnknownDay), errors.Is(err, ErrInvalidFeedback):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotInProgress), errors.Is(err, ErrNotComplete):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("workout of %s: %s", username, err)
		http.Error(w, "workout not saved, try again later", http.StatusInternalServerError)
	}
}
