package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/roster/internal/config"
)

// CheckExisting checks if roster.yml already exists in dir
// Returns an error if it does, nil otherwise
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, config.DefaultFileName)); err == nil {
		return fmt.Errorf("roster already initialized\n\nFound existing: %s\n\nUse 'roster init --force' to reinitialize (this will overwrite existing configuration)", config.DefaultFileName)
	}

	return nil
}
