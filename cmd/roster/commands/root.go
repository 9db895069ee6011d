package commands

import (
	"fmt"
	"time"

	"github.com/dyluth/roster/internal/printer"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	cacheDir   string
	logLevel   string
	logFile    string
	localOnly  bool

	now func() time.Time
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster - shared team availability, notes and links",
		Long: `Roster keeps a small team's weekly availability, notes, links and
team name in sync across everyone's machine.

Every change is saved locally first and shared through Redis when
ROSTER_TEAM and REDIS_URL are set. Without them roster works
local-only on this machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Team file (default $ROSTER_CONFIG or ./roster.yml)")
	flags.StringVar(&g.envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	flags.StringVar(&g.cacheDir, "cache-dir", "", "Local cache directory (default $ROSTER_CACHE_DIR or the user cache dir)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $ROSTER_LOG_LEVEL or warn)")
	flags.StringVar(&g.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	flags.BoolVar(&g.localOnly, "local", false, "Ignore remote settings and work on this machine only")

	cmd.AddCommand(
		newInitCmd(),
		newWeekCmd(g),
		newSetCmd(g),
		newClearCmd(g),
		newNoteCmd(g),
		newTeamCmd(g),
		newResourceCmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newWatchCmd(g),
	)

	return cmd
}
