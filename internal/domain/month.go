package domain

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidMonth reports whether s is a reference month in YYYY-MM form.
func ValidMonth(s string) bool {
	if !monthPattern.MatchString(s) {
		return false
	}

	_, err := time.Parse("2006-01", s)

	return err == nil
}

// AddMonths returns the reference month n months after m. Negative n walks
// backwards. Overflow rolls the year the way the calendar does.
func AddMonths(m string, n int) string {
	t, err := time.Parse("2006-01", m)
	if err != nil {
		return m
	}

	return t.AddDate(0, n, 0).Format("2006-01")
}

// MonthDay returns the ISO date for a given day of a reference month.
func MonthDay(m string, day int) string {
	return fmt.Sprintf("%s-%02d", m, day)
}

// MonthsBetween returns how many months lie between two reference months
// (positive when b is after a).
func MonthsBetween(a, b string) int {
	ta, errA := time.Parse("2006-01", a)
	tb, errB := time.Parse("2006-01", b)
	if errA != nil || errB != nil {
		return 0
	}

	return (tb.Year()-ta.Year())*12 + int(tb.Month()) - int(ta.Month())
}

// Timeline collects the distinct reference months present in the given sets
// and returns them in chronological order. Reference months sort correctly
// as strings, which is the point of the YYYY-MM form.
func Timeline(monthSets ...[]string) []string {
	seen := make(map[string]bool)

	var months []string
	for _, set := range monthSets {
		for _, m := range set {
			if m == "" || seen[m] {
				continue
			}

			seen[m] = true
			months = append(months, m)
		}
	}

	sort.Strings(months)

	return months
}
