// Package orchestrator keeps an in-memory roster state tree consistent with
// the remote document store, the team change feed and the local cache.
//
// Reads are served from memory immediately. Edits apply to memory and the
// local cache synchronously and are written to the remote store behind the
// caller's back. Change-feed events overwrite the in-memory value for their
// key: last writer wins, with no versioning.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/dyluth/roster/internal/week"
	"github.com/dyluth/roster/pkg/docstore"
	"go.uber.org/zap"
)

// DefaultDebounce is the inactivity window after which a burst of edits to a
// debounced document (notes, team name) is written to the remote store.
const DefaultDebounce = 400 * time.Millisecond

var (
	// ErrUnknownParticipant is returned for a participant not in the roster.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrUnknownScope is returned for a notes scope that is neither
	// "shared" nor a participant.
	ErrUnknownScope = errors.New("unknown notes scope")

	// ErrMalformedImport is returned when an import payload cannot be used.
	// State is left unchanged.
	ErrMalformedImport = errors.New("malformed import payload")
)

// Remote is the team-scoped remote document store and its change feed.
// *docstore.Client implements it.
type Remote interface {
	GetDoc(ctx context.Context, key docstore.Key) (json.RawMessage, error)
	PutDoc(ctx context.Context, key docstore.Key, value json.RawMessage) error
	SubscribeDocEvents(ctx context.Context) (*docstore.Subscription, error)
}

// LocalStore persists the whole state tree. *cache.Cache implements it.
type LocalStore interface {
	Load() (*docstore.State, error)
	Save(state *docstore.State) error
}

// localWatcher is implemented by local stores that can report changes made
// by other processes.
type localWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// KeyState tracks how fresh the in-memory value of one key is.
type KeyState int

const (
	// Unloaded means no remote read has completed; the value comes from the
	// local cache or defaults.
	Unloaded KeyState = iota

	// Loaded means a remote read completed (found or absent).
	Loaded

	// Live means at least one change-feed event was applied.
	Live
)

// String implements fmt.Stringer.
func (s KeyState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}

// Options configures an Orchestrator.
type Options struct {
	// Remote is the remote store. Nil selects local-only mode: no remote
	// calls are ever attempted.
	Remote Remote

	// Local is the local cache (required).
	Local LocalStore

	// Participants is the fixed roster membership.
	Participants []docstore.Participant

	// Debounce is the write window for notes and team name. Zero means
	// DefaultDebounce; negative disables debouncing.
	Debounce time.Duration

	// Logger receives swallowed failures. Nil disables logging.
	Logger *zap.Logger

	// Now picks the initial active week. Defaults to time.Now.
	Now func() time.Time
}

type keyInfo struct {
	state    KeyState
	fetching bool
	// gen increments on every local write or feed event so a slow remote
	// read never overwrites a value that is newer than its request.
	gen uint64
}

// Orchestrator owns the state tree. All methods are safe for concurrent use;
// every mutation is serialized by one lock, so orchestrator logic never runs
// in parallel with itself.
type Orchestrator struct {
	mu           sync.Mutex
	state        *docstore.State
	keys         map[docstore.Key]*keyInfo
	activeWeek   string
	timers       map[docstore.Key]*time.Timer
	listeners    map[Handle]listener
	nextHandle   Handle
	closed       bool
	inflight     sync.WaitGroup
	remote       Remote
	local        LocalStore
	participants []docstore.Participant
	debounce     time.Duration
	logger       *zap.Logger
}

// New loads the local cache and returns an orchestrator whose active week is
// the current one. A corrupt cache is logged and replaced by defaults.
func New(opts Options) (*Orchestrator, error) {
	if opts.Local == nil {
		return nil, fmt.Errorf("local store is required")
	}
	if len(opts.Participants) == 0 {
		return nil, fmt.Errorf("at least one participant is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	state, err := opts.Local.Load()
	if err != nil {
		logger.Warn("local cache unusable, starting from defaults", zap.Error(err))
	}
	if state == nil {
		state = docstore.NewState()
	}
	state.Normalize()

	o := &Orchestrator{
		state:        state,
		keys:         make(map[docstore.Key]*keyInfo),
		activeWeek:   week.ID(now()),
		timers:       make(map[docstore.Key]*time.Timer),
		listeners:    make(map[Handle]listener),
		remote:       opts.Remote,
		local:        opts.Local,
		participants: append([]docstore.Participant(nil), opts.Participants...),
		debounce:     debounce,
		logger:       logger,
	}
	o.dropStrangers(o.state)
	return o, nil
}

// LocalOnly reports whether the orchestrator runs without a remote store.
func (o *Orchestrator) LocalOnly() bool {
	return o.remote == nil
}

// Participants returns the roster membership.
func (o *Orchestrator) Participants() []docstore.Participant {
	return append([]docstore.Participant(nil), o.participants...)
}

// Get returns the current in-memory value of key without blocking. The
// first interest in a key issues a remote read in the background; listeners
// are notified if it resolves to a different value.
func (o *Orchestrator) Get(key docstore.Key) (docstore.Value, error) {
	if _, _, err := docstore.ParseKey(string(key)); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	info := o.infoLocked(key)
	if info.state == Unloaded {
		o.fetchLocked(key, info)
	}

	v, _ := o.state.Value(key)
	return cloneValue(v), nil
}

// Put validates v against key's family, applies it to memory and the local
// cache, then writes it to the remote store without waiting. Notes and the
// team name are debounced.
func (o *Orchestrator) Put(key docstore.Key, v docstore.Value) error {
	if err := docstore.CheckShape(key, v); err != nil {
		return err
	}
	if err := o.checkMembers(key, v); err != nil {
		return err
	}

	o.mu.Lock()
	o.applyLocalLocked(key, cloneValue(v))
	o.mu.Unlock()

	o.notify(key)
	return nil
}

// KeyState reports the freshness of key.
func (o *Orchestrator) KeyState(key docstore.Key) KeyState {
	o.mu.Lock()
	defer o.mu.Unlock()

	if info, ok := o.keys[key]; ok {
		return info.state
	}
	return Unloaded
}

// ActiveWeek returns the week identifier currently of interest.
func (o *Orchestrator) ActiveWeek() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeWeek
}

// SetActiveWeek switches which schedule document is of interest. Weeks
// loaded earlier stay in memory; the new week is fetched if not loaded yet.
func (o *Orchestrator) SetActiveWeek(weekID string) error {
	if err := week.Validate(weekID); err != nil {
		return err
	}

	o.mu.Lock()
	o.activeWeek = weekID
	o.mu.Unlock()

	_, err := o.Get(docstore.ScheduleKey(weekID))
	return err
}

// Resync re-reads every key of interest from the remote store, regardless of
// its state. Used after (re)subscribing to the change feed, since events
// published while unsubscribed are lost.
func (o *Orchestrator) Resync() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, key := range o.keysOfInterestLocked() {
		o.fetchLocked(key, o.infoLocked(key))
	}
}

// Wait blocks until every remote call issued so far has completed.
// Debounced writes that have not fired yet are not waited for.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close fires pending debounced writes immediately and waits for all remote
// calls to finish. Later edits still apply locally but are not sent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	for key, timer := range o.timers {
		timer.Stop()
		delete(o.timers, key)
		o.pushLocked(key)
	}
	o.closed = true
	o.mu.Unlock()

	o.inflight.Wait()
}

// Receive applies one change-feed event. Events for keys of interest
// overwrite the in-memory value unconditionally. An event for a schedule
// that is not the active week only marks that week stale so it is fetched
// again when revisited. Undecodable payloads are logged and dropped.
func (o *Orchestrator) Receive(key docstore.Key, raw json.RawMessage) {
	v, err := docstore.DecodeValue(key, raw)
	if err == nil {
		err = o.checkMembers(key, v)
	}
	if err != nil {
		o.logger.Warn("dropping change-feed event", zap.String("key", key.String()), zap.Error(err))
		return
	}

	o.mu.Lock()
	info := o.infoLocked(key)
	if !o.interestedLocked(key) {
		info.state = Unloaded
		o.mu.Unlock()
		return
	}

	if err := o.state.Apply(key, v); err != nil {
		o.mu.Unlock()
		o.logger.Warn("dropping change-feed event", zap.String("key", key.String()), zap.Error(err))
		return
	}
	info.gen++
	info.state = Live
	o.saveLocked()
	o.mu.Unlock()

	o.notify(key)
}

func (o *Orchestrator) infoLocked(key docstore.Key) *keyInfo {
	info, ok := o.keys[key]
	if !ok {
		info = &keyInfo{}
		o.keys[key] = info
	}
	return info
}

func (o *Orchestrator) interestedLocked(key docstore.Key) bool {
	if key.Family() == docstore.FamilySchedule {
		return key.Arg() == o.activeWeek
	}
	return true
}

func (o *Orchestrator) keysOfInterestLocked() []docstore.Key {
	keys := []docstore.Key{
		docstore.ScheduleKey(o.activeWeek),
		docstore.NotesKey(docstore.SharedScope),
	}
	for _, p := range o.participants {
		keys = append(keys, docstore.NotesKey(string(p)))
	}
	return append(keys, docstore.TeamNameKey, docstore.ResourcesKey)
}

// applyLocalLocked is the optimistic write path: memory, then local cache,
// then a remote write that nobody waits for.
func (o *Orchestrator) applyLocalLocked(key docstore.Key, v docstore.Value) {
	info := o.infoLocked(key)
	info.gen++
	o.state.Apply(key, v)
	o.saveLocked()

	if o.remote == nil || o.closed {
		return
	}

	switch key.Family() {
	case docstore.FamilyNotes, docstore.FamilyTeamName:
		if o.debounce > 0 {
			o.scheduleLocked(key)
			return
		}
	}
	o.pushLocked(key)
}

func (o *Orchestrator) saveLocked() {
	if err := o.local.Save(o.state); err != nil {
		o.logger.Warn("failed to persist local cache", zap.Error(err))
	}
}

func (o *Orchestrator) checkParticipant(p docstore.Participant) error {
	for _, known := range o.participants {
		if known == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownParticipant, p)
}

// checkMembers rejects a document naming a participant or notes scope
// outside the roster. Every path into the state tree applies it, so
// whatever Export produces Import accepts.
func (o *Orchestrator) checkMembers(key docstore.Key, v docstore.Value) error {
	switch key.Family() {
	case docstore.FamilySchedule:
		w, _ := v.(docstore.WeekAvailability)
		for p := range w {
			if err := o.checkParticipant(p); err != nil {
				return err
			}
		}
	case docstore.FamilyNotes:
		return o.checkScope(key.Arg())
	}
	return nil
}

// dropStrangers removes availability and notes of anyone no longer in the
// roster from a tree loaded from the local cache.
func (o *Orchestrator) dropStrangers(state *docstore.State) {
	for weekID, w := range state.Weeks {
		for p := range w {
			if o.checkParticipant(p) != nil {
				o.logger.Info("dropping availability of unknown participant",
					zap.String("week", weekID), zap.String("participant", string(p)))
				delete(w, p)
			}
		}
	}
	for scope := range state.Notes {
		if o.checkScope(scope) != nil {
			o.logger.Info("dropping note of unknown scope", zap.String("scope", scope))
			delete(state.Notes, scope)
		}
	}
}

func (o *Orchestrator) checkScope(scope string) error {
	if scope == docstore.SharedScope {
		return nil
	}
	if o.checkParticipant(docstore.Participant(scope)) != nil {
		return fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	return nil
}

// cloneValue copies composite documents so callers never share maps or
// slices with the state tree.
func cloneValue(v docstore.Value) docstore.Value {
	switch doc := v.(type) {
	case docstore.WeekAvailability:
		if doc == nil {
			return docstore.WeekAvailability{}
		}
		return doc.Clone()
	case docstore.ResourceList:
		if doc == nil {
			return docstore.ResourceList{}
		}
		return doc.Clone()
	}
	return v
}

func sameValue(a, b docstore.Value) bool {
	return reflect.DeepEqual(a, b)
}
