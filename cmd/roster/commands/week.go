package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/roster/internal/orchestrator"
	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/view"
	"github.com/dyluth/roster/internal/week"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

func newWeekCmd(g *globalOptions) *cobra.Command {
	var (
		weekSpec string
		weeks    int
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the availability grid",
		Long: `Show who is available on each day of a week, with the number of
participants ready per day.

Cells: YES, no, ~ (to be decided), ? (no answer yet).`,
		Example: `  # This week
  roster week

  # Next week and the two after it
  roster week --week next --weeks 3

  # The week containing a date
  roster week --week 2025-10-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks < 1 {
				return printer.Error("invalid --weeks", fmt.Sprintf("--weeks must be at least 1, got %d", weeks), nil)
			}
			start, err := week.Parse(weekSpec, g.now())
			if err != nil {
				return printer.Error("invalid --week", err.Error(), nil)
			}
			ids, err := week.Window(start, weeks)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			for i, id := range ids {
				if err := s.load(id); err != nil {
					return err
				}
				if i == 0 {
					printer.Printf("%s\n\n", view.TeamTitle(s.orch.TeamName()))
				} else {
					printer.Println()
				}
				if err := renderWeek(s, id); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekSpec, "week", "w", "", "Week to show: a date, 'next', 'last' or an offset like +1")
	cmd.Flags().IntVarP(&weeks, "weeks", "n", 1, "Number of consecutive weeks to show")

	return cmd
}

// renderWeek draws the active week, which must be id.
func renderWeek(s *session, id string) error {
	r := s.orch.Readiness()
	return view.RenderWeek(printer.Stdout(), view.Week{
		ID:           id,
		Days:         r.Days,
		Participants: s.orch.Participants(),
		Availability: s.orch.Week(id),
		Counts:       r.Counts,
		Total:        r.Total,
	})
}

func newSetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set PARTICIPANT DATE STATUS",
		Short: "Record a participant's availability for one day",
		Long: `Record a participant's availability for one day.

STATUS is yes, no or tbd. DATE is an ISO date (2025-10-01), 'today',
'tomorrow' or a phrase such as 'next friday'. Use 'roster clear' to remove an answer.`,
		Example: `  roster set alex 2025-10-01 yes`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1], g.now())
			if err != nil {
				return printer.Error("invalid date", err.Error(), []string{"Use an ISO date like 2025-10-01, 'tomorrow' or 'next friday'"})
			}
			status, err := docstore.ParseDayStatus(args[2])
			if err != nil {
				return printer.Error("invalid status", err.Error(), []string{"Valid statuses: yes, no, tbd"})
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(weekOf(date)); err != nil {
				return err
			}

			p := docstore.Participant(args[0])
			if err := s.orch.SetDayStatus(p, date, status); err != nil {
				return participantError(s, err)
			}

			r := s.orch.Readiness()
			printer.Success("%s is %s on %s (%d/%d ready)\n", p, status, date, r.Counts[date], r.Total)
			return nil
		},
	}
}

func newClearCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "clear PARTICIPANT DATE",
		Short:   "Remove a participant's answer for one day",
		Example: `  roster clear alex 2025-10-01`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1], g.now())
			if err != nil {
				return printer.Error("invalid date", err.Error(), []string{"Use an ISO date like 2025-10-01, 'tomorrow' or 'next friday'"})
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(weekOf(date)); err != nil {
				return err
			}

			p := docstore.Participant(args[0])
			if err := s.orch.ClearDayStatus(p, date); err != nil {
				return participantError(s, err)
			}

			printer.Success("Cleared %s on %s\n", p, date)
			return nil
		},
	}
}

// participantError renders an unknown-participant failure with the roster
// as a hint; other errors pass through.
func participantError(s *session, err error) error {
	if !errors.Is(err, orchestrator.ErrUnknownParticipant) && !errors.Is(err, orchestrator.ErrUnknownScope) {
		return err
	}

	return printer.ErrorWithContext(
		"unknown participant",
		err.Error(),
		map[string]string{"Participants": strings.Join(s.team.Participants, ", ")},
		[]string{fmt.Sprintf("Add them to %s", s.env.ConfigPath)},
	)
}

// dateParser understands phrases like "next friday" or "in 3 days".
var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDate accepts an ISO date, "today", "tomorrow" or an English phrase
// that names a single day.
func parseDate(spec string, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(spec)
	switch strings.ToLower(trimmed) {
	case "today":
		return now.Format(docstore.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(docstore.DateLayout), nil
	}
	if _, err := time.Parse(docstore.DateLayout, trimmed); err == nil {
		return trimmed, nil
	}

	r, err := dateParser.Parse(trimmed, now)
	if err != nil || r == nil || r.Index != 0 || len(r.Text) != len(trimmed) {
		return "", fmt.Errorf("invalid date %q", spec)
	}
	return r.Time.Format(docstore.DateLayout), nil
}

// weekOf returns the week of a date already checked by parseDate.
func weekOf(date string) string {
	d, _ := time.Parse(docstore.DateLayout, date)
	return week.ID(d)
}
