package orchestrator

import (
	"context"
	"fmt"

	"github.com/dyluth/roster/pkg/docstore"
	"go.uber.org/zap"
)

// Run feeds change events into the orchestrator and blocks until ctx is
// cancelled or the feed ends.
//
// With a remote store it holds the team's single change-feed subscription
// and re-reads every key of interest once subscribed, since events
// published before the subscription are never replayed. A dropped
// connection ends Run without error; callers that reconnect call Run again.
//
// In local-only mode it watches the local cache (when the store supports
// it) so that other processes sharing the cache converge too.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.remote == nil {
		watcher, ok := o.local.(localWatcher)
		if !ok {
			<-ctx.Done()
			return nil
		}
		o.logger.Info("local-only mode, watching local cache")
		return watcher.Watch(ctx, o.reloadLocal)
	}

	sub, err := o.remote.SubscribeDocEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to change feed: %w", err)
	}
	defer sub.Close()

	o.logger.Info("subscribed to change feed")
	o.Resync()

	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-sub.Events():
			if !ok {
				o.logger.Info("change feed closed")
				return nil
			}
			o.Receive(event.Key, event.Value)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			o.logger.Warn("change feed error", zap.Error(err))
		}
	}
}

// reloadLocal replaces the state tree with the local cache contents after
// another process rewrote it. Our own saves reload to an identical tree and
// change nothing.
func (o *Orchestrator) reloadLocal() {
	loaded, err := o.local.Load()
	if err != nil {
		o.logger.Warn("failed to reload local cache", zap.Error(err))
		return
	}
	o.dropStrangers(loaded)

	o.mu.Lock()
	if sameState(o.state, loaded) {
		o.mu.Unlock()
		return
	}
	previous := o.state
	o.state = loaded
	changed := changedKeys(previous, loaded)
	for _, key := range changed {
		o.infoLocked(key).gen++
	}
	o.mu.Unlock()

	o.notify(changed...)
}

func sameState(a, b *docstore.State) bool {
	return len(changedKeys(a, b)) == 0
}

// changedKeys lists the documents whose values differ between two trees.
func changedKeys(a, b *docstore.State) []docstore.Key {
	seen := make(map[docstore.Key]bool)
	var changed []docstore.Key
	for _, key := range append(a.Keys(), b.Keys()...) {
		if seen[key] {
			continue
		}
		seen[key] = true

		va, okA := a.Value(key)
		vb, okB := b.Value(key)
		if okA != okB || !sameValue(va, vb) {
			changed = append(changed, key)
		}
	}
	return changed
}
