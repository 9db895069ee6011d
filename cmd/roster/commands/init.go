package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		force        bool
		dir          string
		participants []string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a roster.yml team file",
		Long: `Create a roster.yml team file and a .env.example next to it.

Creates:
  • roster.yml   - participants shown as columns of the week grid
  • .env.example - the settings needed to share the roster with your team

Use --force to overwrite an existing roster.yml.`,
		Example: `  roster init --participants alex,sam,jo`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if err := scaffold.CheckExisting(dir); err != nil {
					return printer.Error("already initialized", err.Error(), nil)
				}
			}

			files, err := scaffold.Initialize(dir, participants, force)
			if err != nil {
				return printer.Error(
					"initialization failed",
					err.Error(),
					[]string{"Participant names must be unique, non-empty, not 'shared', and at most 8 in total"},
				)
			}

			printer.Success("Initialized roster\n")
			printer.Println("\nCreated:")
			for _, f := range files {
				printer.Printf("  ✓ %s\n", filepath.Base(f.Path))
			}
			printer.Println("\nNext steps:")
			printer.Println("  1. Copy .env.example to .env and set ROSTER_TEAM and REDIS_URL to share")
			printer.Println("  2. Run 'roster week' to see this week's availability")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing roster.yml")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to create the files in")
	cmd.Flags().StringSliceVarP(&participants, "participants", "p", nil,
		fmt.Sprintf("Comma-separated participant names (default %s)", strings.Join(scaffold.DefaultParticipants, ",")))

	return cmd
}
