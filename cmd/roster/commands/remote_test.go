package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRemote points the environment at a fresh miniredis for team "owls".
func setupRemote(t *testing.T) *miniredis.Miniredis {
	setupWorkspace(t)

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	t.Setenv("ROSTER_TEAM", "owls")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())
	return mr
}

func TestRemote_SharesChangesBetweenMachines(t *testing.T) {
	mr := setupRemote(t)

	_, errOut, err := runRoster(t, "--cache-dir", t.TempDir(), "set", "alex", "2025-10-01", "yes")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "local-only")

	_, _, err = runRoster(t, "--cache-dir", t.TempDir(), "team", "Night Owls")
	require.NoError(t, err)
	assert.True(t, mr.Exists("roster:owls:doc:schedule:2025-09-29"))
	assert.True(t, mr.Exists("roster:owls:doc:team:name"))

	// Another machine with an empty cache sees both edits.
	other := t.TempDir()
	out, _, err := runRoster(t, "--cache-dir", other, "week", "--week", "2025-10-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Night Owls")
	assert.Contains(t, rowFor(out, "Wed 01 Oct"), "YES")
	assert.Contains(t, rowFor(out, "Wed 01 Oct"), "1/3")
}

func TestRemote_LocalFlagIgnoresRemote(t *testing.T) {
	mr := setupRemote(t)

	_, errOut, err := runRoster(t, "--local", "team", "Offline Owls")
	require.NoError(t, err)
	assert.Contains(t, errOut, "local-only mode")
	assert.False(t, mr.Exists("roster:owls:doc:team:name"))
}

func TestRemote_UnreachableFallsBackToLocalOnly(t *testing.T) {
	setupWorkspace(t)
	t.Setenv("ROSTER_TEAM", "owls")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")

	out, errOut, err := runRoster(t, "set", "sam", "2025-10-01", "no")
	require.NoError(t, err)
	assert.Contains(t, errOut, "remote store unreachable")
	assert.Contains(t, out, "sam is NO on 2025-10-01")

	// The edit survives in the local cache.
	out, _, err = runRoster(t, "week", "--week", "2025-10-01")
	require.NoError(t, err)
	assert.Contains(t, rowFor(out, "Wed 01 Oct"), "no")
}

func TestRemote_InvalidEnvironment(t *testing.T) {
	setupWorkspace(t)
	t.Setenv("ROSTER_TEAM", "bad:team")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	_, errOut, err := runRoster(t, "week")
	require.Error(t, err)
	assert.Contains(t, errOut, "invalid environment")
}

func TestWatch_RedrawsOnRemoteChange(t *testing.T) {
	mr := setupRemote(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- executeInto(ctx, &out, &errOut, "--cache-dir", filepath.Join(t.TempDir(), "watch"), "watch", "--week", "2025-10-01")
	}()

	require.Eventually(t, func() bool {
		return containsAll(out.String(), "updated", "Week of Mon 29 Sep")
	}, 5*time.Second, 20*time.Millisecond, "initial dashboard never rendered")

	client, err := docstore.NewClient(&redis.Options{Addr: mr.Addr()}, "owls")
	require.NoError(t, err)
	defer client.Close()

	// The feed may not be subscribed yet; keep publishing until the redraw shows.
	require.Eventually(t, func() bool {
		_ = client.PutDoc(context.Background(), docstore.TeamNameKey, json.RawMessage(`"Live Owls"`))
		return containsAll(out.String(), "Live Owls")
	}, 5*time.Second, 100*time.Millisecond, "dashboard never redrew")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
