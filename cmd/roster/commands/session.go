package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dyluth/roster/internal/cache"
	"github.com/dyluth/roster/internal/config"
	"github.com/dyluth/roster/internal/logging"
	"github.com/dyluth/roster/internal/orchestrator"
	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pingTimeout bounds the reachability check before falling back to
// local-only mode.
const pingTimeout = 3 * time.Second

// session is one CLI invocation's view of the roster: configuration, logger,
// optional remote client and the orchestrator wired over them.
type session struct {
	env    *config.Env
	team   *config.TeamConfig
	logger *zap.Logger
	client *docstore.Client
	orch   *orchestrator.Orchestrator
}

// openSession loads configuration and connects. An unreachable remote store
// is not an error: the session continues local-only with a banner.
func openSession(cmd *cobra.Command, g *globalOptions) (*session, error) {
	env, err := config.LoadEnv(g.envFile)
	if err != nil {
		return nil, printer.Error(
			"invalid environment",
			err.Error(),
			[]string{"Check ROSTER_TEAM and REDIS_URL in your environment or .env file"},
		)
	}
	if g.configPath != "" {
		env.ConfigPath = g.configPath
	}
	if g.cacheDir != "" {
		env.CacheDir = g.cacheDir
	}
	if g.logLevel != "" {
		env.LogLevel = g.logLevel
	}
	if g.logFile != "" {
		env.LogFile = g.logFile
	}

	team, err := config.Load(env.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, printer.Error(
				"no team file found",
				fmt.Sprintf("Could not find %s.", env.ConfigPath),
				[]string{
					"Create one in this directory:\n  roster init",
					"Point at an existing file:\n  roster --config path/to/roster.yml <command>",
				},
			)
		}
		return nil, printer.Error("invalid team file", err.Error(), nil)
	}

	logger, err := logging.New(logging.Options{
		Level:  env.LogLevel,
		File:   env.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, printer.Error("invalid log settings", err.Error(), []string{"Valid levels: debug, info, warn, error"})
	}

	s := &session{env: env, team: team, logger: logger}

	var remote orchestrator.Remote
	if env.RemoteEnabled() && !g.localOnly {
		client, err := s.connect(cmd.Context())
		if err != nil {
			logger.Warn("remote store unreachable", zap.Error(err))
			printer.Banner("remote store unreachable, working local-only: changes stay on this machine")
		} else {
			s.client = client
			remote = client
		}
	} else {
		printer.Banner("local-only mode: changes stay on this machine (set ROSTER_TEAM and REDIS_URL to share)")
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Remote:       remote,
		Local:        cache.New(filepath.Join(env.CacheDir, s.cacheScope()), logger),
		Participants: team.Roster(),
		Debounce:     team.Debounce(),
		Logger:       logger,
		Now:          g.now,
	})
	if err != nil {
		s.closeClient()
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	s.orch = orch

	return s, nil
}

func (s *session) connect(ctx context.Context) (*docstore.Client, error) {
	opts, err := s.env.RedisOptions()
	if err != nil {
		return nil, err
	}
	client, err := docstore.NewClient(opts, s.env.Team)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// cacheScope keeps each team's cache apart so switching ROSTER_TEAM never
// mixes two teams' documents.
func (s *session) cacheScope() string {
	if s.env.Team == "" {
		return "local"
	}
	return s.env.Team
}

// load makes weekID the active week and waits until every document of
// interest has been read from the remote store.
func (s *session) load(weekID string) error {
	if weekID != "" {
		if err := s.orch.SetActiveWeek(weekID); err != nil {
			return err
		}
	}
	s.orch.Resync()
	s.orch.Wait()
	return nil
}

// Close flushes pending writes and releases connections.
func (s *session) Close() {
	s.orch.Close()
	s.closeClient()
	_ = s.logger.Sync()
}

func (s *session) closeClient() {
	if s.client != nil {
		s.client.Close()
	}
}
