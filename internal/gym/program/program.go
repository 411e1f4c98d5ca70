// Package program builds the fixed three day training split and the
// initial suggested weights for a new user.
package program

import (
	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/storage"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

type Goal string

const (
	GoalWeightLoss Goal = "weight loss"
	GoalMuscleGain Goal = "muscle gain"
)

func (g Goal) IsValid() bool {
	return g == GoalWeightLoss || g == GoalMuscleGain
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
)

func (l Level) IsValid() bool {
	return l == LevelBeginner || l == LevelIntermediate
}

const (
	DayUpper = "Day 1 (Upper)"
	DayLower = "Day 2 (Lower)"
	DayFull  = "Day 3 (Full)"

	SetsPerExercise = 3
	TimedReps       = "Time"
)

var split = []struct {
	day       string
	exercises []string
}{
	{DayUpper, []string{library.WarmUpUpper, library.FloorPress, library.OneArmRow, library.OverheadPress, library.BicepCurl, library.TricepExt}},
	{DayLower, []string{library.WarmUpLower, library.GobletSquat, library.RDL, library.Lunges, library.Plank}},
	{DayFull, []string{library.WarmUpUpper, library.ShadowBoxing, library.GobletSquat, library.FloorPress, library.Plank}},
}

// Scheme returns the rep target and rest (seconds) for non-timed work.
func Scheme(goal Goal) (reps string, rest int) {
	if goal == GoalWeightLoss {
		return "12-15", 45
	}
	return "8-10", 90
}

// Generate returns the weekly split for the user. The level is stored on the
// profile but does not change the program.
func Generate(gender Gender, goal Goal, level Level) storage.Program {
	reps, rest := Scheme(goal)

	p := make(storage.Program, len(split))
	for _, d := range split {
		entries := make([]storage.ExerciseEntry, 0, len(d.exercises))
		for _, id := range d.exercises {
			entry := storage.ExerciseEntry{
				ID:   id,
				Sets: SetsPerExercise,
				Reps: reps,
				Rest: rest,
			}
			if ex := library.MustGet(id); ex.Timed {
				entry.Reps = TimedReps
				entry.Rest = 0
			}
			entries = append(entries, entry)
		}
		p[d.day] = entries
	}
	return p
}

// SeedWeights returns the initial suggested weight (kg) for every exercise in the program.
func SeedWeights(p storage.Program, gender Gender) map[string]float64 {
	weights := make(map[string]float64)
	for id := range p.ExerciseIDs() {
		weights[id] = seedWeight(id, gender)
	}
	return weights
}

func seedWeight(id string, gender Gender) float64 {
	ex, err := library.Get(id)
	if err != nil {
		return 0
	}
	switch ex.Category {
	case library.CategorySquat, library.CategoryHinge:
		return 10
	case library.CategoryPress:
		if gender == GenderMale {
			return 8
		}
		return 4
	default:
		return 0
	}
}
