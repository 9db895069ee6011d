package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/dyluth/roster/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// EnvExampleFile is written next to roster.yml as a starting point for .env.
const EnvExampleFile = ".env.example"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// DefaultParticipants seeds roster.yml when none are given.
var DefaultParticipants = []string{"alex", "sam", "jo"}

// Initialize writes roster.yml and .env.example into dir.
// If force is true, existing files are replaced.
func Initialize(dir string, participants []string, force bool) ([]FileInfo, error) {
	if len(participants) == 0 {
		participants = DefaultParticipants
	}

	if force {
		if err := handleForce(dir); err != nil {
			return nil, err
		}
	}

	files, err := renderTemplates(dir, participants)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := writeFiles(files); err != nil {
		return nil, err
	}

	// Validate created files
	if _, err := config.Load(filepath.Join(dir, config.DefaultFileName)); err != nil {
		return nil, fmt.Errorf("created %s is invalid: %w", config.DefaultFileName, err)
	}

	return files, nil
}

// handleForce removes existing files if --force was specified
func handleForce(dir string) error {
	for _, name := range []string{config.DefaultFileName, EnvExampleFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
		}
	}
	return nil
}

// renderTemplates reads and processes all template files
func renderTemplates(dir string, participants []string) ([]FileInfo, error) {
	team := &config.TeamConfig{Version: "1.0", Participants: participants}
	if err := team.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/roster.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s template: %w", config.DefaultFileName, err)
	}
	var rosterYml bytes.Buffer
	if err := tmpl.Execute(&rosterYml, team); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", config.DefaultFileName, err)
	}

	envExample, err := templatesFS.ReadFile("templates/env.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s template: %w", EnvExampleFile, err)
	}

	return []FileInfo{
		{Path: filepath.Join(dir, config.DefaultFileName), Content: rosterYml.Bytes(), Permissions: 0644},
		{Path: filepath.Join(dir, EnvExampleFile), Content: envExample, Permissions: 0644},
	}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}
