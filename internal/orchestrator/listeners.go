package orchestrator

import (
	"strings"

	"github.com/dyluth/roster/pkg/docstore"
)

// Handle identifies a registered listener.
type Handle int

type listener struct {
	prefix string
	fn     func(docstore.Key)
}

// Subscribe registers fn to be called after any key starting with prefix
// changes in memory, whatever the cause: local edit, remote read, feed
// event or import. An empty prefix matches every key.
//
// fn runs on the goroutine that made the change, after the orchestrator
// lock is released, so it may call back into the orchestrator. It should
// return quickly.
func (o *Orchestrator) Subscribe(prefix string, fn func(docstore.Key)) Handle {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextHandle++
	o.listeners[o.nextHandle] = listener{prefix: prefix, fn: fn}
	return o.nextHandle
}

// Unsubscribe stops delivery to h. Safe to call more than once.
func (o *Orchestrator) Unsubscribe(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.listeners, h)
}

func (o *Orchestrator) notify(keys ...docstore.Key) {
	o.mu.Lock()
	var calls []func()
	for _, key := range keys {
		for _, l := range o.listeners {
			if strings.HasPrefix(string(key), l.prefix) {
				fn, k := l.fn, key
				calls = append(calls, func() { fn(k) })
			}
		}
	}
	o.mu.Unlock()

	for _, call := range calls {
		call()
	}
}
