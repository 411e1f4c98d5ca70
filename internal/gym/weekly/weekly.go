// Package weekly works out the user's current training week and which
// program days were already done in it.
package weekly

import (
	"time"

	"github.com/2beens/gymcoach/internal/storage"
)

const daysInWeek = 7

type DayStatus struct {
	Day  string `json:"day"`
	Done bool   `json:"done"`
}

type Status struct {
	Week      int    `json:"week"`
	WeekStart string `json:"week_start"`
	// Completed holds the day labels of the sessions logged this week, in history order.
	Completed []string    `json:"completed"`
	Days      []DayStatus `json:"days"`
}

// Compute derives the weekly status from the join date and the session history.
// A missing or malformed join date counts as joining today. Logs with
// unparseable dates are skipped. A join date in the future yields week 1.
func Compute(profile storage.Profile, history []storage.SessionLog, programDays []string, now time.Time) Status {
	today := dateOnly(now)
	joined, ok := profile.JoinedDate()
	if !ok {
		joined = today
	}

	week := 1
	if days := int(today.Sub(joined).Hours() / 24); days > 0 {
		week = days/daysInWeek + 1
	}
	weekStart := joined.AddDate(0, 0, (week-1)*daysInWeek)

	completed := make([]string, 0)
	done := map[string]bool{}
	for _, l := range history {
		logDate, ok := l.ParsedDate()
		if !ok || logDate.Before(weekStart) {
			continue
		}
		label := l.DayLabel()
		completed = append(completed, label)
		done[label] = true
	}

	dayStatuses := make([]DayStatus, 0, len(programDays))
	for _, day := range programDays {
		dayStatuses = append(dayStatuses, DayStatus{
			Day:  day,
			Done: done[day],
		})
	}

	return Status{
		Week:      week,
		WeekStart: weekStart.Format(storage.DateLayout),
		Completed: completed,
		Days:      dayStatuses,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
