// Package report renders the session history as a coach facing table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/storage"

	"github.com/xuri/excelize/v2"
)

const (
	PreviewSize     = 5
	UnknownDuration = "unknown"
	sheetName       = "History"
)

var Header = []string{"date", "program day", "duration (minutes)", "body weight", "details"}

type Row struct {
	Date       string  `json:"date"`
	Day        string  `json:"day"`
	Duration   string  `json:"duration"`
	BodyWeight float64 `json:"body_weight"`
	Details    string  `json:"details"`
}

func (r Row) values() []string {
	return []string{r.Date, r.Day, r.Duration, formatKg(r.BodyWeight), r.Details}
}

// BuildRows maps every history entry to one row, in history order. The
// program gives the order the exercises of each day were performed in.
func BuildRows(history []storage.SessionLog, program storage.Program) []Row {
	rows := make([]Row, 0, len(history))
	for _, l := range history {
		duration := UnknownDuration
		if l.DurationMin != nil {
			duration = strconv.Itoa(*l.DurationMin)
		}
		rows = append(rows, Row{
			Date:       l.Date,
			Day:        l.DayLabel(),
			Duration:   duration,
			BodyWeight: l.UserWeight,
			Details:    FormatDetails(l.Details, performedOrder(program[l.DayLabel()])),
		})
	}
	return rows
}

func performedOrder(entries []storage.ExerciseEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, library.Name(e.ID))
	}
	return names
}

// FormatDetails renders "exercise: Wkg | exercise: Wkg". Exercises listed in
// order come first, in that order; the rest follow sorted by name.
func FormatDetails(details map[string]float64, order []string) string {
	parts := make([]string, 0, len(details))
	seen := make(map[string]bool, len(details))
	for _, name := range order {
		weight, ok := details[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		parts = append(parts, fmt.Sprintf("%s: %skg", name, formatKg(weight)))
	}

	var rest []string
	for name := range details {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		parts = append(parts, fmt.Sprintf("%s: %skg", name, formatKg(details[name])))
	}

	return strings.Join(parts, " | ")
}

// Preview returns the last PreviewSize rows.
func Preview(rows []Row) []Row {
	if len(rows) <= PreviewSize {
		return rows
	}
	return rows[len(rows)-PreviewSize:]
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", headerStyle); err != nil {
		return err
	}

	if err := writeRows(f, sheetName, rows); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetName, "A", "D", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "E", "E", 80); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeRows fills the sheet from its second row on. Durations that are a
// number of minutes are written as numbers.
func writeRows(f *excelize.File, sheet string, rows []Row) error {
	for i, r := range rows {
		var duration interface{} = r.Duration
		if minutes, err := strconv.Atoi(r.Duration); err == nil {
			duration = minutes
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Date, r.Day, duration, r.BodyWeight, r.Details}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
