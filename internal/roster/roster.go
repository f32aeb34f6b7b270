// Package roster loads sales associate availability from a workbook
// kept by the store (column A email, column B name, columns C..I
// Monday through Sunday flags).
package roster

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/cars24/connector-cli/internal/model"
)

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// truthy reports whether a cell marks the associate as available.
func truthy(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

var dayHeaderRe = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)(day)?$`)

// headerDayColumns maps workbook columns to weekdays. Recognized day
// headers win; unlabeled columns after email/name fall back to
// positional Monday-first order.
func headerDayColumns(header []string) map[int]time.Weekday {
	out := make(map[int]time.Weekday)
	seen := 0
	for i, h := range header {
		if i < 2 || seen >= len(weekdays) {
			continue
		}
		s := strings.TrimSpace(h)
		if m := dayHeaderRe.FindStringSubmatch(s); m != nil {
			for j, name := range dayNames {
				if strings.EqualFold(m[1], name) {
					out[i] = weekdays[j]
					break
				}
			}
		} else {
			out[i] = weekdays[seen]
		}
		seen++
	}
	return out
}

// LoadXLSX reads the roster workbook's first sheet.
func LoadXLSX(path string) ([]model.Associate, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "roster: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("roster: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, c := range sheet.Rows[0].Cells {
		header[i] = c.String()
	}
	dayCols := headerDayColumns(header)

	var out []model.Associate
	for _, row := range sheet.Rows[1:] {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		a := parseRow(cells, dayCols)
		if a.Email == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func parseRow(cells []string, dayCols map[int]time.Weekday) model.Associate {
	a := model.Associate{Days: make(map[time.Weekday]bool, len(weekdays))}
	if len(cells) > 0 {
		a.Email = strings.TrimSpace(cells[0])
	}
	if len(cells) > 1 {
		a.Name = strings.TrimSpace(cells[1])
	}
	for col, day := range dayCols {
		if col < len(cells) {
			a.Days[day] = truthy(cells[col])
		}
	}
	return a
}

// ParseFixed builds a roster from "Name <email>" config entries. Fixed
// associates count as available every day.
func ParseFixed(entries []string) []model.Associate {
	var out []model.Associate
	for _, e := range entries {
		name, email := splitEntry(e)
		if email == "" {
			continue
		}
		days := make(map[time.Weekday]bool, len(weekdays))
		for _, d := range weekdays {
			days[d] = true
		}
		out = append(out, model.Associate{Name: name, Email: email, Days: days})
	}
	return out
}

func splitEntry(e string) (name, email string) {
	s := strings.TrimSpace(e)
	if i := strings.IndexByte(s, '<'); i >= 0 {
		name = strings.TrimSpace(s[:i])
		email = strings.TrimSpace(strings.TrimSuffix(s[i+1:], ">"))
		return name, email
	}
	if strings.Contains(s, "@") {
		return s, s
	}
	return s, ""
}

// AvailableOn filters associates working on the given date.
func AvailableOn(associates []model.Associate, date time.Time) []model.Associate {
	var out []model.Associate
	for _, a := range associates {
		if a.AvailableOn(date) && a.Email != "" {
			out = append(out, a)
		}
	}
	return out
}
