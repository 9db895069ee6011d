package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckExisting(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(dir string)
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "no existing files",
			setupFunc: func(dir string) {},
			wantErr:   false,
		},
		{
			name: "existing roster.yml",
			setupFunc: func(dir string) {
				if err := os.WriteFile(filepath.Join(dir, "roster.yml"), []byte("version: '1.0'"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: true,
			errMsg:  "roster.yml",
		},
		{
			name: "only .env.example",
			setupFunc: func(dir string) {
				if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte("ROSTER_TEAM="), 0644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			err := CheckExisting(dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckExisting() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("CheckExisting() error = %v, should contain %q", err, tt.errMsg)
			}
		})
	}
}
