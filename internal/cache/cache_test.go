package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleState() *docstore.State {
	s := docstore.NewState()
	s.TeamName = "Night Owls"
	s.Notes[docstore.SharedScope] = "scrims at 8"
	s.Weeks["2025-09-29"] = docstore.WeekAvailability{
		"alex": {"2025-10-01": docstore.StatusYes, "2025-10-02": docstore.StatusTBD},
	}
	s.Resources = docstore.ResourceList{
		{ID: "r1", Title: "Guide", URL: "https://example.com", Type: docstore.ResourceTypeGuide},
	}
	return s
}

func TestLoad(t *testing.T) {
	t.Run("missing blob yields default state", func(t *testing.T) {
		c := New(t.TempDir(), zaptest.NewLogger(t))

		state, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, docstore.NewState(), state)
	})

	t.Run("corrupt blob yields default state and error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{oops"), 0o600))

		state, err := New(dir, nil).Load()
		assert.Error(t, err)
		assert.Equal(t, docstore.NewState(), state)
	})

	t.Run("blob under an older version identifier is ignored", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "roster-state-v0.json"), []byte(`{"team_name":"old"}`), 0o600))

		state, err := New(dir, nil).Load()
		require.NoError(t, err)
		assert.Empty(t, state.TeamName)
	})

	t.Run("fills containers missing from the blob", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"team_name":"x"}`), 0o600))

		state, err := New(dir, nil).Load()
		require.NoError(t, err)
		assert.NotNil(t, state.Weeks)
		assert.NotNil(t, state.Notes)
		assert.NotNil(t, state.Resources)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	c := New(dir, zaptest.NewLogger(t))

	original := sampleState()
	require.NoError(t, c.Save(original))

	loaded, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// absent pair stays absent, TBD stays TBD
	_, ok := loaded.Weeks["2025-09-29"].Status("alex", "2025-10-03")
	assert.False(t, ok)
	status, ok := loaded.Weeks["2025-09-29"].Status("alex", "2025-10-02")
	assert.True(t, ok)
	assert.Equal(t, docstore.StatusTBD, status)

	_, err = os.Stat(c.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not be left behind")
}

func TestSaveOverwrites(t *testing.T) {
	c := New(t.TempDir(), nil)

	first := sampleState()
	require.NoError(t, c.Save(first))

	second := docstore.NewState()
	second.TeamName = "Early Birds"
	require.NoError(t, c.Save(second))

	loaded, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestSaveConcurrentCachesShareDirectory(t *testing.T) {
	dir := t.TempDir()
	caches := []*Cache{New(dir, zaptest.NewLogger(t)), New(dir, zaptest.NewLogger(t))}

	const saves = 100
	errs := make(chan error, len(caches)*saves)
	var wg sync.WaitGroup
	for i, c := range caches {
		wg.Add(1)
		go func(c *Cache, name string) {
			defer wg.Done()
			state := sampleState()
			state.TeamName = name
			for n := 0; n < saves; n++ {
				errs <- c.Save(state)
			}
		}(c, []string{"Owls", "Larks"}[i])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	loaded, err := caches[0].Load()
	require.NoError(t, err)
	assert.Contains(t, []string{"Owls", "Larks"}, loaded.TeamName)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary files are renamed or removed")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, zaptest.NewLogger(t))
	other := New(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func() { changed <- struct{}{} })
	}()

	require.Eventually(t, func() bool {
		// Keep writing until the watcher is registered and reports a change.
		_ = other.Save(sampleState())
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
