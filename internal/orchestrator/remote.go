package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dyluth/roster/pkg/docstore"
	"go.uber.org/zap"
)

// Best-effort remote access
//
// Remote failures never reach callers. A failed read is indistinguishable
// from "never written"; a failed write leaves the optimistic local value in
// place with no retry. Both are logged.

// remoteGet reads key, returning ok=false when absent or on any error.
func (o *Orchestrator) remoteGet(key docstore.Key) (json.RawMessage, bool) {
	raw, err := o.remote.GetDoc(context.Background(), key)
	if err != nil {
		if !docstore.IsNotFound(err) {
			o.logger.Warn("remote read failed, treating as absent", zap.String("key", key.String()), zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

// remotePut writes key, reporting success.
func (o *Orchestrator) remotePut(key docstore.Key, raw json.RawMessage) bool {
	if err := o.remote.PutDoc(context.Background(), key, raw); err != nil {
		o.logger.Warn("remote write failed, keeping local value", zap.String("key", key.String()), zap.Error(err))
		return false
	}
	o.logger.Debug("remote write", zap.String("key", key.String()))
	return true
}

// fetchLocked issues a background read of key unless one is in flight.
// In local-only mode the local value is all there is, so the key is
// considered loaded immediately.
func (o *Orchestrator) fetchLocked(key docstore.Key, info *keyInfo) {
	if o.remote == nil {
		if info.state == Unloaded {
			info.state = Loaded
		}
		return
	}
	if info.fetching || o.closed {
		return
	}

	info.fetching = true
	gen := info.gen
	o.inflight.Add(1)

	go func() {
		defer o.inflight.Done()

		raw, found := o.remoteGet(key)
		if o.completeFetch(key, gen, raw, found) {
			o.notify(key)
		}
	}()
}

// completeFetch applies a read result unless the key was written locally or
// by the feed after the read was issued. Reports whether the value changed.
func (o *Orchestrator) completeFetch(key docstore.Key, gen uint64, raw json.RawMessage, found bool) bool {
	var v docstore.Value
	if found {
		decoded, err := docstore.DecodeValue(key, raw)
		if err == nil {
			err = o.checkMembers(key, decoded)
		}
		if err != nil {
			o.logger.Warn("ignoring malformed remote value", zap.String("key", key.String()), zap.Error(err))
			found = false
		}
		v = decoded
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	info := o.infoLocked(key)
	info.fetching = false
	if info.state == Unloaded {
		info.state = Loaded
	}

	if !found || info.gen != gen {
		return false
	}

	current, _ := o.state.Value(key)
	if sameValue(current, v) {
		return false
	}
	if err := o.state.Apply(key, v); err != nil {
		o.logger.Warn("ignoring malformed remote value", zap.String("key", key.String()), zap.Error(err))
		return false
	}
	o.saveLocked()
	return true
}

// pushLocked encodes the current value of key and writes it in the
// background. The value is captured now, so later edits do not leak into
// this write.
func (o *Orchestrator) pushLocked(key docstore.Key) {
	if o.remote == nil || o.closed {
		return
	}

	v, _ := o.state.Value(key)
	raw, err := docstore.EncodeValue(key, v)
	if err != nil {
		o.logger.Error("refusing to write value", zap.String("key", key.String()), zap.Error(err))
		return
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.remotePut(key, raw)
	}()
}

// scheduleLocked (re)starts the debounce window for key. Only the value
// current when the window closes is written.
func (o *Orchestrator) scheduleLocked(key docstore.Key) {
	if existing, ok := o.timers[key]; ok {
		existing.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(o.debounce, func() {
		o.mu.Lock()
		defer o.mu.Unlock()

		// A newer edit or Close replaced this timer.
		if o.timers[key] != timer {
			return
		}
		delete(o.timers, key)
		o.pushLocked(key)
	})
	o.timers[key] = timer
}
