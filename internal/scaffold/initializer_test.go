package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/roster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		force        bool
		setupFunc    func(dir string)
		want         []string
		wantErr      bool
	}{
		{
			name:      "fresh initialization uses default participants",
			setupFunc: func(dir string) {},
			want:      DefaultParticipants,
		},
		{
			name:         "custom participants keep their order",
			participants: []string{"zoe", "Ana Lu", "bo"},
			setupFunc:    func(dir string) {},
			want:         []string{"zoe", "Ana Lu", "bo"},
		},
		{
			name:         "force replaces existing file",
			participants: []string{"kim"},
			force:        true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, "roster.yml"), []byte("old content"), 0644)
			},
			want: []string{"kim"},
		},
		{
			name:         "reserved participant name",
			participants: []string{"shared"},
			setupFunc:    func(dir string) {},
			wantErr:      true,
		},
		{
			name:         "duplicate participant",
			participants: []string{"kim", "kim"},
			setupFunc:    func(dir string) {},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			files, err := Initialize(dir, tt.participants, tt.force)
			if tt.wantErr {
				assert.Error(t, err)
				_, statErr := os.Stat(filepath.Join(dir, "roster.yml"))
				assert.True(t, os.IsNotExist(statErr), "nothing written on error")
				return
			}
			require.NoError(t, err)
			assert.Len(t, files, 2)

			cfg, err := config.Load(filepath.Join(dir, "roster.yml"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Participants)
			require.NotNil(t, cfg.DebounceMs)
			assert.Equal(t, 400, *cfg.DebounceMs)

			env, err := os.ReadFile(filepath.Join(dir, ".env.example"))
			require.NoError(t, err)
			assert.Contains(t, string(env), "ROSTER_TEAM=")
			assert.Contains(t, string(env), "REDIS_URL=")
		})
	}
}
