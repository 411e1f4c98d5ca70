package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoSession       = errors.New("no workout in progress")
	ErrUnknownDay      = errors.New("day not in program")
	ErrInvalidFeedback = errors.New("invalid feedback, expected light, good or heavy")
	ErrNotInProgress   = errors.New("workout has no exercise left")
	ErrNotComplete     = errors.New("workout still has exercises left")
)

// CurrentExercise is what the client shows for the running workout.
type CurrentExercise struct {
	SessionID  string `json:"session_id"`
	Day        string `json:"day"`
	State      State  `json:"state"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	ElapsedSec int    `json:"elapsed_sec"`

	Exercise        *library.Exercise `json:"exercise,omitempty"`
	Sets            int               `json:"sets,omitempty"`
	Reps            string            `json:"reps,omitempty"`
	Rest            int               `json:"rest"`
	SuggestedWeight float64           `json:"suggested_weight"`
	// Narrate is set the first time an exercise is shown in a session.
	Narrate bool `json:"narrate"`
}

type Service struct {
	store    storage.Store
	sessions SessionStore
	metrics  *metrics.Manager

	NowFunc   func() time.Time
	NewIDFunc func() string
}

func NewService(store storage.Store, sessions SessionStore, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:     store,
		sessions:  sessions,
		metrics:   metricsManager,
		NowFunc:   time.Now,
		NewIDFunc: uuid.NewString,
	}
}

// Start begins a workout of the given program day, replacing any session
// the user already had.
func (s *Service) Start(ctx context.Context, username, day string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", username), attribute.String("day", day))

	record, err := s.store.Load(ctx).Get(username)
	if err != nil {
		return nil, err
	}

	entries, ok := record.Program[day]
	if !ok {
		return nil, ErrUnknownDay
	}

	session := &Session{
		ID:        s.NewIDFunc(),
		Username:  username,
		Day:       day,
		StartedAt: s.NowFunc(),
		Exercises: append([]storage.ExerciseEntry(nil), entries...),
		Weights:   map[string]float64{},
		Narrated:  make([]bool, len(entries)),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store workout session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterWorkoutsStarted.Inc()
	}
	log.Debugf("workout %s started: %s, %s [%d exercises]", session.ID, username, day, len(entries))

	return session, nil
}

func (s *Service) Current(ctx context.Context, username string) (_ *CurrentExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.current")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.session(ctx, username)
	if err != nil {
		return nil, err
	}

	current := &CurrentExercise{
		SessionID:  session.ID,
		Day:        session.Day,
		State:      session.State(),
		Index:      session.Index,
		Total:      len(session.Exercises),
		ElapsedSec: int(session.Elapsed(s.NowFunc()).Seconds()),
	}

	entry, ok := session.Current()
	if !ok {
		return current, nil
	}

	ex, err := library.Get(entry.ID)
	if err != nil {
		// programs written by older clients may reference dropped exercises
		ex = library.Exercise{ID: entry.ID, Name: entry.ID}
	}
	current.Exercise = &ex
	current.Sets = entry.Sets
	current.Reps = entry.Reps
	current.Rest = entry.Rest

	if record, err := s.store.Load(ctx).Get(username); err == nil {
		current.SuggestedWeight = record.Weights[entry.ID]
	}

	if !session.Narrated[session.Index] {
		session.Narrated[session.Index] = true
		if err := s.sessions.Put(ctx, session); err != nil {
			return nil, fmt.Errorf("store workout session: %w", err)
		}
		current.Narrate = true
	}

	return current, nil
}

// RecordAndNext logs the current suggested weight for the exercise, applies
// the feedback to the stored suggestion and moves to the next exercise.
func (s *Service) RecordAndNext(ctx context.Context, username string, feedback Feedback) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.next")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("feedback", string(feedback)))

	if !feedback.IsValid() {
		return nil, ErrInvalidFeedback
	}

	session, err := s.session(ctx, username)
	if err != nil {
		return nil, err
	}
	entry, ok := session.Current()
	if !ok {
		return nil, ErrNotInProgress
	}

	db := s.store.Load(ctx)
	record, err := db.Get(username)
	if err != nil {
		return nil, err
	}

	if record.Weights == nil {
		record.Weights = map[string]float64{}
	}
	used := record.Weights[entry.ID]
	record.Weights[entry.ID] = feedback.Adjust(used)
	if err := s.store.Save(ctx, db); err != nil {
		return nil, err
	}

	session.Weights[library.Name(entry.ID)] = used
	session.Index++
	if err := s.sessions.Put(ctx, session); err != nil {
		// the session stays on this exercise, so the adjustment is undone
		record.Weights[entry.ID] = used
		if rollbackErr := s.store.Save(ctx, db); rollbackErr != nil {
			log.Errorf("workout %s: roll back %s weight to %.1f kg: %s", session.ID, entry.ID, used, rollbackErr)
		}
		return nil, fmt.Errorf("store workout session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterWeightFeedback.WithLabelValues(string(feedback)).Inc()
	}
	log.Tracef("workout %s: %s done with %.1f kg, feedback %s", session.ID, entry.ID, used, feedback)

	return session, nil
}

// Finish appends the completed workout to the user history and ends the session.
func (s *Service) Finish(ctx context.Context, username string) (_ *storage.SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.session(ctx, username)
	if err != nil {
		return nil, err
	}
	if session.State() != StateComplete {
		return nil, ErrNotComplete
	}

	db := s.store.Load(ctx)
	record, err := db.Get(username)
	if err != nil {
		return nil, err
	}

	now := s.NowFunc()
	durationMin := int(session.Elapsed(now).Minutes())
	sessionLog := storage.SessionLog{
		Date:        now.Format(storage.DateLayout),
		Day:         session.Day,
		DurationMin: &durationMin,
		UserWeight:  record.Profile.Weight,
		Details:     session.Weights,
	}
	record.History = append(record.History, sessionLog)
	if err := s.store.Save(ctx, db); err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, username); err != nil {
		log.Errorf("delete finished workout session %s: %s", session.ID, err)
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsFinished.Inc()
	}
	log.Debugf("workout %s finished: %s, %s in %d min", session.ID, username, session.Day, durationMin)

	return &sessionLog, nil
}

func (s *Service) session(ctx context.Context, username string) (*Session, error) {
	session, err := s.sessions.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get workout session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}
