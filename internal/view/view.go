// Package view renders roster documents for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
	"github.com/olekukonko/tablewriter"
)

// Cell symbols for the week grid. Unknown and TBD are different things and
// must never render the same.
const (
	cellYes     = "YES"
	cellNo      = "no"
	cellTBD     = "~"
	cellUnknown = "?"
)

// Week is everything needed to draw one week grid.
type Week struct {
	ID           string
	Days         []string
	Participants []docstore.Participant
	Availability docstore.WeekAvailability
	Counts       map[string]int
	Total        int
}

// RenderWeek writes a day-by-participant grid with a readiness column.
func RenderWeek(w io.Writer, week Week) error {
	fmt.Fprintf(w, "Week of %s\n", formatDay(week.ID))

	table := tablewriter.NewWriter(w)
	header := []string{"Day"}
	for _, p := range week.Participants {
		header = append(header, string(p))
	}
	header = append(header, "Ready")
	table.Header(header)

	for _, day := range week.Days {
		row := []string{formatDay(day)}
		for _, p := range week.Participants {
			row = append(row, formatStatus(week.Availability, p, day))
		}
		row = append(row, formatReadiness(week.Counts[day], week.Total))
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render week %s: %w", week.ID, err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render week %s: %w", week.ID, err)
	}
	fmt.Fprintf(w, "%s yes  %s no  %s tbd  %s unknown\n", cellYes, cellNo, cellTBD, cellUnknown)
	return nil
}

// RenderResources writes the link list as a table, newest first.
// Returns the number of resources written.
func RenderResources(w io.Writer, resources docstore.ResourceList) (int, error) {
	if len(resources) == 0 {
		fmt.Fprintln(w, "No resources yet")
		return 0, nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Type", "Title", "URL", "Description"})
	for _, r := range resources {
		row := []string{formatID(r.ID), string(r.Type), truncate(r.Title, 40), r.URL, truncate(r.Desc, 40)}
		if err := table.Append(row); err != nil {
			return 0, fmt.Errorf("failed to render resources: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return 0, fmt.Errorf("failed to render resources: %w", err)
	}

	countMsg := "resource"
	if len(resources) != 1 {
		countMsg = "resources"
	}
	fmt.Fprintf(w, "\n%d %s\n", len(resources), countMsg)
	return len(resources), nil
}

// RenderNotes writes the shared note followed by each participant's note.
// Empty notes are shown as "-".
func RenderNotes(w io.Writer, participants []docstore.Participant, note func(scope string) string) {
	scopes := []string{docstore.SharedScope}
	for _, p := range participants {
		scopes = append(scopes, string(p))
	}

	width := 0
	for _, scope := range scopes {
		if len(scope) > width {
			width = len(scope)
		}
	}

	for _, scope := range scopes {
		text := note(scope)
		if strings.TrimSpace(text) == "" {
			text = "-"
		}
		lines := strings.Split(text, "\n")
		fmt.Fprintf(w, "%-*s  %s\n", width, scope, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "%-*s  %s\n", width, "", line)
		}
	}
}

// TeamTitle is the heading shown above every view.
func TeamTitle(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed team)"
	}
	return name
}

func formatStatus(w docstore.WeekAvailability, p docstore.Participant, day string) string {
	status, ok := w.Status(p, day)
	if !ok {
		return cellUnknown
	}
	switch status {
	case docstore.StatusYes:
		return cellYes
	case docstore.StatusNo:
		return cellNo
	default:
		return cellTBD
	}
}

func formatReadiness(count, total int) string {
	return fmt.Sprintf("%d/%d", count, total)
}

// formatDay shows an ISO date as "Mon 29 Sep".
func formatDay(date string) string {
	d, err := time.Parse(docstore.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Mon 02 Jan")
}

// formatID truncates resource IDs to the first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to max runes, marking the cut with "...".
// Only the first non-empty line is kept. Empty values return "-".
func truncate(s string, max int) string {
	var firstLine string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			firstLine = trimmed
			break
		}
	}
	if firstLine == "" {
		return "-"
	}

	runes := []rune(firstLine)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return firstLine
}
