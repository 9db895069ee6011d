package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/roster/internal/orchestrator"
	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/week"
	"github.com/spf13/cobra"
)

func newExportCmd(g *globalOptions) *cobra.Command {
	var weekSpecs []string

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write everything to a JSON file (or stdout)",
		Long: `Write the whole roster as one JSON document: team name, notes, links
and every week known to this machine.

Weeks not viewed on this machine yet can be pulled in first with --week.`,
		Example: `  roster export backup.json
  roster export --week 2025-09-29 --week 2025-10-06 > backup.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, spec := range weekSpecs {
				id, err := parseWeek(spec, g)
				if err != nil {
					return err
				}
				if err := s.load(id); err != nil {
					return err
				}
			}
			if err := s.load(""); err != nil {
				return err
			}

			data, err := s.orch.Export()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err := fmt.Fprintln(printer.Stdout(), string(data))
				return err
			}
			if err := os.WriteFile(args[0], append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			printer.Success("Exported to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&weekSpecs, "week", "w", nil, "Also fetch this week before exporting (repeatable)")
	return cmd
}

func newImportCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace everything with an exported JSON file",
		Long: `Replace the whole roster with the contents of an exported JSON file
and share every document it contains.

Comments and trailing commas are allowed, so a hand-edited export can be
imported directly. A file that does not validate changes nothing.`,
		Example: `  roster import backup.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return printer.Error("cannot read import file", err.Error(), nil)
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.orch.Import(data); err != nil {
				if errors.Is(err, orchestrator.ErrMalformedImport) {
					return printer.ErrorWithContext(
						"import rejected",
						err.Error(),
						map[string]string{"File": args[0]},
						[]string{"Nothing was changed. Fix the file and try again."},
					)
				}
				return err
			}

			printer.Success("Imported %s\n", args[0])
			return nil
		},
	}
}

func parseWeek(spec string, g *globalOptions) (string, error) {
	id, err := week.Parse(spec, g.now())
	if err != nil {
		return "", printer.Error("invalid --week", err.Error(), nil)
	}
	return id, nil
}
