// Package library holds the static exercise catalogue: display text, safety
// notes and the narration lines read out during a workout.
package library

import (
	"errors"
	"sort"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Category drives the initial suggested weight of an exercise. The rep/rest
// scheme depends on Exercise.Timed instead.
type Category string

const (
	CategoryWarmUp       Category = "warm_up"
	CategorySquat        Category = "squat"
	CategoryHinge        Category = "hinge"
	CategoryPress        Category = "press"
	CategoryPull         Category = "pull"
	CategoryArms         Category = "arms"
	CategoryLunge        Category = "lunge"
	CategoryCore         Category = "core"
	CategoryConditioning Category = "conditioning"
)

type Exercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Instructions []string `json:"instructions"`
	Safety       string   `json:"safety,omitempty"`
	Technique    string   `json:"technique,omitempty"`
	Voice        string   `json:"voice"`
	// Timed exercises are done for time (warm-ups, isometric holds), not reps.
	Timed bool `json:"timed"`
}

func (e Exercise) IsWarmUp() bool {
	return e.Category == CategoryWarmUp
}

// Get returns a copy of the library entry for the given exercise id.
func Get(id string) (Exercise, error) {
	ex, ok := exercises[id]
	if !ok {
		return Exercise{}, ErrExerciseNotFound
	}
	return ex, nil
}

// MustGet is Get for ids known at compile time.
func MustGet(id string) Exercise {
	ex, err := Get(id)
	if err != nil {
		panic("library: unknown exercise id " + id)
	}
	return ex
}

// Name returns the display name, or the id itself for unknown exercises.
func Name(id string) string {
	if ex, ok := exercises[id]; ok {
		return ex.Name
	}
	return id
}

// All returns every library entry ordered by id.
func All() []Exercise {
	all := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		all = append(all, ex)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all
}
