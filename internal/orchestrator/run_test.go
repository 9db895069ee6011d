package orchestrator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startRun runs o until the test ends. With a remote store it returns once
// the feed is subscribed and the initial resync has completed.
func startRun(t *testing.T, o *Orchestrator) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not stop after cancel")
		}
	})

	if o.LocalOnly() {
		return
	}
	require.Eventually(t, func() bool {
		return o.KeyState(docstore.TeamNameKey) != Unloaded
	}, 2*time.Second, 10*time.Millisecond, "resync never ran")
	o.Wait()
}

func TestRunAppliesEventsFromOtherClients(t *testing.T) {
	mr := setupRedis(t)
	a := newOrchestrator(t, newRemote(t, mr), -1)
	b := newOrchestrator(t, newRemote(t, mr), -1)
	startRun(t, b)

	require.NoError(t, a.SetNote(docstore.SharedScope, "scrims moved to 9"))

	require.Eventually(t, func() bool {
		return b.Note(docstore.SharedScope) == "scrims moved to 9"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, Live, b.KeyState(docstore.NotesKey(docstore.SharedScope)))
}

func TestRunResyncsAfterSubscribing(t *testing.T) {
	mr := setupRedis(t)
	remote := newRemote(t, mr)
	ctx := context.Background()
	require.NoError(t, remote.PutDoc(ctx, docstore.TeamNameKey, json.RawMessage(`"Night Owls"`)))
	require.NoError(t, remote.PutDoc(ctx, docstore.ScheduleKey(activeWeek), json.RawMessage(`{"jo":{"2025-10-03":"YES"}}`)))

	o := newOrchestrator(t, remote, -1)
	startRun(t, o)

	assert.Equal(t, "Night Owls", o.TeamName())
	status, _ := o.Week(activeWeek).Status("jo", "2025-10-03")
	assert.Equal(t, docstore.StatusYes, status)
}

func TestRunOwnEchoMakesKeyLive(t *testing.T) {
	mr := setupRedis(t)
	o := newOrchestrator(t, newRemote(t, mr), -1)
	startRun(t, o)

	require.NoError(t, o.SetTeamName("Owls"))

	require.Eventually(t, func() bool {
		return o.KeyState(docstore.TeamNameKey) == Live
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Owls", o.TeamName())
}

func TestRunReadinessAcrossClients(t *testing.T) {
	mr := setupRedis(t)
	a := newOrchestrator(t, newRemote(t, mr), -1)
	b := newOrchestrator(t, newRemote(t, mr), -1)
	startRun(t, a)
	startRun(t, b)

	ready := func(o *Orchestrator) int {
		return o.Readiness().Counts["2025-10-01"]
	}

	require.NoError(t, a.SetDayStatus("alex", "2025-10-01", docstore.StatusYes))
	require.Eventually(t, func() bool { return ready(b) == 1 }, 2*time.Second, 10*time.Millisecond)

	// B's read-modify-write builds on A's change it has already received.
	require.NoError(t, b.SetDayStatus("sam", "2025-10-01", docstore.StatusYes))
	require.Eventually(t, func() bool { return ready(a) == 2 }, 2*time.Second, 10*time.Millisecond)

	r := a.Readiness()
	assert.Equal(t, 3, r.Total)
	for _, day := range r.Days {
		if day != "2025-10-01" {
			assert.Zero(t, r.Counts[day], day)
		}
	}
}

func TestRunIgnoresEventsForOtherWeeks(t *testing.T) {
	mr := setupRedis(t)
	a := newOrchestrator(t, newRemote(t, mr), -1)
	b := newOrchestrator(t, newRemote(t, mr), -1)
	startRun(t, b)

	require.NoError(t, a.SetDayStatus("jo", "2025-10-08", docstore.StatusYes))
	a.Wait()
	require.NoError(t, a.SetTeamName("marker"))

	// Events arrive in publish order, so once the marker lands the week
	// event has been handled.
	require.Eventually(t, func() bool {
		return b.KeyState(docstore.TeamNameKey) == Live
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, Unloaded, b.KeyState(docstore.ScheduleKey("2025-10-06")))

	// Switching to the week fetches it fresh.
	require.NoError(t, b.SetActiveWeek("2025-10-06"))
	b.Wait()
	status, _ := b.Week("2025-10-06").Status("jo", "2025-10-08")
	assert.Equal(t, docstore.StatusYes, status)
}

func TestRunLocalOnlyFollowsSharedCache(t *testing.T) {
	dir := t.TempDir()
	a := newOrchestratorInDir(t, nil, dir, 0)
	b := newOrchestratorInDir(t, nil, dir, 0)
	startRun(t, b)

	changed := make(chan docstore.Key, 16)
	b.Subscribe("team:", func(k docstore.Key) {
		select {
		case changed <- k:
		default:
		}
	})

	// The watcher may not be registered yet; keep saving until it sees one.
	require.Eventually(t, func() bool {
		_ = a.SetTeamName("Owls")
		return b.TeamName() == "Owls"
	}, 2*time.Second, 20*time.Millisecond)

	select {
	case k := <-changed:
		assert.Equal(t, docstore.TeamNameKey, k)
	case <-time.After(time.Second):
		t.Fatal("listener not notified of reloaded value")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	mr := setupRedis(t)
	o := newOrchestrator(t, newRemote(t, mr), -1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	require.Eventually(t, func() bool {
		return o.KeyState(docstore.TeamNameKey) != Unloaded
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFailsWithoutFeed(t *testing.T) {
	o := newOrchestrator(t, &failingRemote{}, -1)

	err := o.Run(context.Background())
	assert.ErrorIs(t, err, errNetwork)
}
