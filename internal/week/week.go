// Package week derives Monday-aligned week identifiers from calendar dates.
package week

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
)

// ID returns the week identifier of the week containing t: the ISO date of
// that week's Monday. Weeks run Monday through Sunday, so a Sunday belongs
// to the preceding Monday.
func ID(t time.Time) string {
	return Monday(t).Format(docstore.DateLayout)
}

// Monday returns midnight of the Monday of t's week, in t's location.
func Monday(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// time.Weekday counts Sunday as 0; shift so Monday is 0 and Sunday 6.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Parse parses a date specification into a week identifier.
// Supports:
//   - ISO dates: "2025-10-01" (any day; aligned to its Monday)
//   - "today", "" (current week), "next", "last"
//   - relative week offsets: "+1", "-2"
func Parse(spec string, now time.Time) (string, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))

	switch spec {
	case "", "today", "this":
		return ID(now), nil
	case "next":
		return ID(now.AddDate(0, 0, 7)), nil
	case "last", "prev", "previous":
		return ID(now.AddDate(0, 0, -7)), nil
	}

	if t, err := time.Parse(docstore.DateLayout, spec); err == nil {
		return ID(t), nil
	}

	if spec[0] == '+' || spec[0] == '-' {
		if offset, err := strconv.Atoi(spec); err == nil {
			return ID(now.AddDate(0, 0, 7*offset)), nil
		}
	}

	return "", fmt.Errorf("invalid week specification: %s (use a date like '2025-10-01', 'next', or an offset like '+1')", spec)
}

// Validate checks that id is an ISO date falling on a Monday.
func Validate(id string) error {
	t, err := time.Parse(docstore.DateLayout, id)
	if err != nil {
		return fmt.Errorf("invalid week id %q: %w", id, err)
	}
	if t.Weekday() != time.Monday {
		return fmt.Errorf("invalid week id %q: %s is a %s, not a Monday", id, id, t.Weekday())
	}
	return nil
}

// Window returns n consecutive week identifiers starting at the week of
// start: [M, M+7d, M+14d, ...].
func Window(start string, n int) ([]string, error) {
	t, err := time.Parse(docstore.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	monday := Monday(t)

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, monday.AddDate(0, 0, 7*i).Format(docstore.DateLayout))
	}
	return ids, nil
}

// Days returns the seven ISO dates of the week, Monday first.
func Days(id string) ([]string, error) {
	if err := Validate(id); err != nil {
		return nil, err
	}
	monday, _ := time.Parse(docstore.DateLayout, id)

	days := make([]string, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i).Format(docstore.DateLayout)
	}
	return days, nil
}

// Contains reports whether date is one of the seven days of week id.
func Contains(id, date string) bool {
	d, err := time.Parse(docstore.DateLayout, date)
	if err != nil {
		return false
	}
	return ID(d) == id
}
