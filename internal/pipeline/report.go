package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cars24/connector-cli/internal/model"
)

// WeekSummary is one week of unsold outcomes, bucketed by analysis
// category.
type WeekSummary struct {
	WeekStart  time.Time
	Categories map[string]int
	Total      int
}

// WeeklyBreakdown groups unsold records by the Monday of their
// conducted week. Records without a parseable conducted date are
// collected under a zero week so they still count toward the total.
func WeeklyBreakdown(records []model.UnsoldRecord) []WeekSummary {
	byWeek := make(map[time.Time]*WeekSummary)
	for _, r := range records {
		var week time.Time
		if d, err := time.Parse("2006-01-02", r.ConductedDate); err == nil {
			week = WeekStart(d)
		}
		s, ok := byWeek[week]
		if !ok {
			s = &WeekSummary{WeekStart: week, Categories: make(map[string]int)}
			byWeek[week] = s
		}
		cat := r.Category
		if cat == "" {
			cat = "Unknown"
		}
		s.Categories[cat]++
		s.Total++
	}

	weeks := make([]WeekSummary, 0, len(byWeek))
	for _, s := range byWeek {
		weeks = append(weeks, *s)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.Before(weeks[j].WeekStart) })
	return weeks
}

// RenderWeeklyBreakdown formats the breakdown as a plain-text report.
func RenderWeeklyBreakdown(weeks []WeekSummary) string {
	var b strings.Builder
	grand := 0
	for _, w := range weeks {
		label := "Unknown week"
		if !w.WeekStart.IsZero() {
			label = "Week of " + FormatDateAU(w.WeekStart)
		}
		fmt.Fprintf(&b, "%s (%d customers)\n", label, w.Total)

		cats := make([]string, 0, len(w.Categories))
		for c := range w.Categories {
			cats = append(cats, c)
		}
		sort.Slice(cats, func(i, j int) bool {
			if w.Categories[cats[i]] != w.Categories[cats[j]] {
				return w.Categories[cats[i]] > w.Categories[cats[j]]
			}
			return cats[i] < cats[j]
		})
		for _, c := range cats {
			fmt.Fprintf(&b, "  %-28s %d\n", c, w.Categories[c])
		}
		b.WriteString("\n")
		grand += w.Total
	}
	fmt.Fprintf(&b, "Total: %d customers\n", grand)
	return b.String()
}
