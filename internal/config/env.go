package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Env holds the runtime settings read from environment variables.
type Env struct {
	// Team is the team scope of every remote key (from ROSTER_TEAM)
	Team string

	// RedisURL is the remote store connection string (from REDIS_URL)
	RedisURL string

	// CacheDir holds the local cache blob (from ROSTER_CACHE_DIR)
	CacheDir string

	// ConfigPath is the team file (from ROSTER_CONFIG)
	ConfigPath string

	// LogLevel and LogFile configure logging (from ROSTER_LOG_LEVEL, ROSTER_LOG_FILE)
	LogLevel string
	LogFile  string
}

// LoadEnv reads configuration from environment variables, first seeding
// the environment from dotenvFile when it exists. Variables already set in
// the environment win over the file.
func LoadEnv(dotenvFile string) (*Env, error) {
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvFile, err)
		}
	}

	env := &Env{
		Team:       strings.TrimSpace(os.Getenv("ROSTER_TEAM")),
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
		CacheDir:   os.Getenv("ROSTER_CACHE_DIR"),
		ConfigPath: os.Getenv("ROSTER_CONFIG"),
		LogLevel:   os.Getenv("ROSTER_LOG_LEVEL"),
		LogFile:    os.Getenv("ROSTER_LOG_FILE"),
	}

	if env.ConfigPath == "" {
		env.ConfigPath = DefaultFileName
	}
	if env.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("ROSTER_CACHE_DIR is not set and no user cache directory is available: %w", err)
		}
		env.CacheDir = filepath.Join(base, "roster")
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// Validate checks that the remote settings come as a pair and parse.
func (e *Env) Validate() error {
	if e.Team != "" && strings.Contains(e.Team, ":") {
		return fmt.Errorf("ROSTER_TEAM cannot contain ':' (got %q)", e.Team)
	}
	if e.RedisURL != "" {
		if _, err := redis.ParseURL(e.RedisURL); err != nil {
			return fmt.Errorf("REDIS_URL is invalid: %w", err)
		}
	}
	return nil
}

// RemoteEnabled reports whether both remote settings are present. Without
// them the app runs local-only.
func (e *Env) RemoteEnabled() bool {
	return e.Team != "" && e.RedisURL != ""
}

// RedisOptions parses RedisURL into client options.
func (e *Env) RedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(e.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL is invalid: %w", err)
	}
	return opts, nil
}
