package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the team file looked up in the working directory.
const DefaultFileName = "roster.yml"

// MaxParticipants bounds the roster size; the week grid is rendered one
// column per participant.
const MaxParticipants = 8

// TeamConfig represents the top-level roster.yml configuration
type TeamConfig struct {
	Version       string   `yaml:"version"`
	Participants  []string `yaml:"participants"`
	DebounceMs    *int     `yaml:"debounce_ms,omitempty"`    // Write window for notes and team name (default 400, 0 = off)
	ResourceTypes []string `yaml:"resource_types,omitempty"` // Types accepted by "resource add" (default: all)
}

// Validate performs strict validation on the configuration
func (c *TeamConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if len(c.Participants) == 0 {
		return fmt.Errorf("no participants defined")
	}
	if len(c.Participants) > MaxParticipants {
		return fmt.Errorf("too many participants: %d (maximum %d)", len(c.Participants), MaxParticipants)
	}

	seen := make(map[string]bool)
	for _, name := range c.Participants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("participant names cannot be empty")
		}
		if name == docstore.SharedScope {
			return fmt.Errorf("participant name '%s' is reserved for the shared notes scope", name)
		}
		if strings.Contains(name, ":") {
			return fmt.Errorf("participant '%s': name cannot contain ':'", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate participant '%s'", name)
		}
		seen[name] = true
	}

	if c.DebounceMs != nil && *c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be >= 0 (0 = write immediately), got %d", *c.DebounceMs)
	}

	for _, rt := range c.ResourceTypes {
		if err := docstore.ResourceType(rt).Validate(); err != nil {
			return fmt.Errorf("resource_types: %w", err)
		}
	}

	return nil
}

// Roster returns the participants as docstore values.
func (c *TeamConfig) Roster() []docstore.Participant {
	out := make([]docstore.Participant, len(c.Participants))
	for i, name := range c.Participants {
		out[i] = docstore.Participant(name)
	}
	return out
}

// Debounce converts debounce_ms into the orchestrator's option: zero selects
// the default window and a negative value disables debouncing.
func (c *TeamConfig) Debounce() time.Duration {
	if c.DebounceMs == nil {
		return 0
	}
	if *c.DebounceMs == 0 {
		return -1
	}
	return time.Duration(*c.DebounceMs) * time.Millisecond
}

// AllowsResourceType reports whether "resource add" accepts rt.
func (c *TeamConfig) AllowsResourceType(rt docstore.ResourceType) bool {
	if len(c.ResourceTypes) == 0 {
		return rt.Validate() == nil
	}
	for _, allowed := range c.ResourceTypes {
		if docstore.ResourceType(allowed) == rt {
			return true
		}
	}
	return false
}

// Load reads and validates roster.yml from the specified path
func Load(path string) (*TeamConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config TeamConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
