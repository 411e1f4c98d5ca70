package storage

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

var ErrUserNotFound = errors.New("user not found")

// Database is the whole user database: username -> record. It is loaded
// and written back as a single JSON document.
type Database map[string]*UserRecord

type UserRecord struct {
	Password string             `json:"password"`
	Profile  Profile            `json:"profile"`
	Program  Program            `json:"program"`
	Weights  map[string]float64 `json:"weights"`
	History  []SessionLog       `json:"history"`
}

type Profile struct {
	Gender string  `json:"gender"`
	Goal   string  `json:"goal"`
	Level  string  `json:"level"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Joined string  `json:"joined"`
}

// JoinedDate parses the join date; ok is false for missing or malformed values.
func (p Profile) JoinedDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, p.Joined)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Program maps a day label to its ordered exercise entries.
type Program map[string][]ExerciseEntry

// Days returns the day labels in display order.
func (p Program) Days() []string {
	days := make([]string, 0, len(p))
	for day := range p {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// ExerciseIDs returns every distinct exercise id referenced by the program.
func (p Program) ExerciseIDs() map[string]bool {
	ids := map[string]bool{}
	for _, entries := range p {
		for _, e := range entries {
			ids[e.ID] = true
		}
	}
	return ids
}

type ExerciseEntry struct {
	ID   string `json:"id"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	// Rest between sets, in seconds.
	Rest int `json:"rest"`
}

type SessionLog struct {
	Date        string             `json:"date"`
	Day         string             `json:"day,omitempty"`
	Plan        string             `json:"plan,omitempty"`
	DurationMin *int               `json:"duration_min,omitempty"`
	UserWeight  float64            `json:"user_weight"`
	Details     map[string]float64 `json:"details,omitempty"`
}

// DayLabel returns the program day of the log. Older logs stored it as "plan".
func (l SessionLog) DayLabel() string {
	if l.Day != "" {
		return l.Day
	}
	return l.Plan
}

func (l SessionLog) ParsedDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, l.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (db Database) Get(username string) (*UserRecord, error) {
	rec, ok := db[username]
	if !ok || rec == nil {
		return nil, ErrUserNotFound
	}
	if rec.Weights == nil {
		rec.Weights = map[string]float64{}
	}
	return rec, nil
}

// Decode parses a stored document. An empty document is an empty database.
func Decode(raw []byte) (Database, error) {
	db := Database{}
	if len(raw) == 0 {
		return db, nil
	}
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, err
	}
	if db == nil {
		db = Database{}
	}
	return db, nil
}

func Encode(db Database) ([]byte, error) {
	if db == nil {
		db = Database{}
	}
	return json.Marshal(db)
}
