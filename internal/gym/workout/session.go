package workout

import (
	"time"

	"github.com/2beens/gymcoach/internal/storage"
)

type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Session is the in-flight state of one workout. It is kept apart from the
// user database, which only sees the weight adjustments and the final log.
type Session struct {
	ID        string                  `json:"id"`
	Username  string                  `json:"username"`
	Day       string                  `json:"day"`
	StartedAt time.Time               `json:"started_at"`
	Index     int                     `json:"index"`
	Exercises []storage.ExerciseEntry `json:"exercises"`
	// Weights used, keyed by exercise display name.
	Weights  map[string]float64 `json:"weights"`
	Narrated []bool             `json:"narrated"`
}

func (s *Session) State() State {
	switch {
	case s == nil:
		return StateIdle
	case s.Index < len(s.Exercises):
		return StateInProgress
	default:
		return StateComplete
	}
}

func (s *Session) Current() (storage.ExerciseEntry, bool) {
	if s.State() != StateInProgress {
		return storage.ExerciseEntry{}, false
	}
	return s.Exercises[s.Index], true
}

// Elapsed is never negative, even if the clock went backwards.
func (s *Session) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
