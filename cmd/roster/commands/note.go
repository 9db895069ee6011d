package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/roster/internal/orchestrator"
	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/view"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/spf13/cobra"
)

func newNoteCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note [SCOPE] [TEXT...]",
		Short: "Show or edit notes",
		Long: `Show or edit notes. SCOPE is 'shared' or a participant name.

With no arguments every note is shown. With SCOPE only, that note is
shown. With TEXT the note is replaced; pass "" to empty it.`,
		Example: `  roster note
  roster note shared "scrims at 8 this week"
  roster note jo away friday`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(""); err != nil {
				return err
			}

			switch len(args) {
			case 0:
				view.RenderNotes(printer.Stdout(), s.orch.Participants(), s.orch.Note)
				return nil
			case 1:
				if !s.knownScope(args[0]) {
					return participantError(s, fmt.Errorf("%w: %s", orchestrator.ErrUnknownScope, args[0]))
				}
				printer.Println(s.orch.Note(args[0]))
				return nil
			}

			// Without quotes the shell splits the text; rejoin it.
			scope, text := args[0], strings.Join(args[1:], " ")
			if err := s.orch.SetNote(scope, text); err != nil {
				return participantError(s, err)
			}
			printer.Success("Updated %s note\n", scope)
			return nil
		},
	}
}

func newTeamCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "team [NAME...]",
		Short:   "Show or set the team name",
		Example: `  roster team Night Owls`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(""); err != nil {
				return err
			}

			if len(args) == 0 {
				printer.Println(view.TeamTitle(s.orch.TeamName()))
				return nil
			}

			name := strings.Join(args, " ")
			if err := s.orch.SetTeamName(name); err != nil {
				return err
			}
			printer.Success("Team name set to %q\n", name)
			return nil
		},
	}
}

// knownScope reports whether scope names a notes document.
func (s *session) knownScope(scope string) bool {
	if scope == docstore.SharedScope {
		return true
	}
	for _, p := range s.team.Participants {
		if p == scope {
			return true
		}
	}
	return false
}
