package orchestrator

import (
	"fmt"
	"time"

	"github.com/dyluth/roster/internal/week"
	"github.com/dyluth/roster/pkg/docstore"
)

// Typed reads and edits used by views. Composite documents are
// read-modify-written whole: the current in-memory document is copied, one
// field changes, and the entire document is written back. Two clients
// editing different fields of the same week concurrently therefore race,
// and the write applied last by the store wins in full.

// Week returns the availability document of weekID.
func (o *Orchestrator) Week(weekID string) docstore.WeekAvailability {
	v, err := o.Get(docstore.ScheduleKey(weekID))
	if err != nil {
		return docstore.WeekAvailability{}
	}
	return v.(docstore.WeekAvailability)
}

// Note returns the note for scope ("shared" or a participant).
func (o *Orchestrator) Note(scope string) string {
	v, err := o.Get(docstore.NotesKey(scope))
	if err != nil {
		return ""
	}
	return string(v.(docstore.Note))
}

// TeamName returns the team's display name.
func (o *Orchestrator) TeamName() string {
	v, _ := o.Get(docstore.TeamNameKey)
	return string(v.(docstore.TeamName))
}

// Resources returns the link list, newest first.
func (o *Orchestrator) Resources() docstore.ResourceList {
	v, _ := o.Get(docstore.ResourcesKey)
	return v.(docstore.ResourceList)
}

// SetDayStatus records a participant's explicit status for one date.
func (o *Orchestrator) SetDayStatus(p docstore.Participant, date string, status docstore.DayStatus) error {
	if err := o.checkParticipant(p); err != nil {
		return err
	}
	if err := status.Validate(); err != nil {
		return err
	}
	weekID, err := weekOf(date)
	if err != nil {
		return err
	}

	key := docstore.ScheduleKey(weekID)
	o.mu.Lock()
	current := o.state.Weeks[weekID]
	o.applyLocalLocked(key, current.With(p, date, status))
	o.mu.Unlock()

	o.notify(key)
	return nil
}

// ClearDayStatus removes a participant's entry for one date, returning it
// to "unknown".
func (o *Orchestrator) ClearDayStatus(p docstore.Participant, date string) error {
	if err := o.checkParticipant(p); err != nil {
		return err
	}
	weekID, err := weekOf(date)
	if err != nil {
		return err
	}

	key := docstore.ScheduleKey(weekID)
	o.mu.Lock()
	current := o.state.Weeks[weekID]
	o.applyLocalLocked(key, current.Without(p, date))
	o.mu.Unlock()

	o.notify(key)
	return nil
}

// SetNote replaces the note for scope. The remote write is debounced.
func (o *Orchestrator) SetNote(scope, text string) error {
	return o.Put(docstore.NotesKey(scope), docstore.Note(text))
}

// SetTeamName replaces the team name. The remote write is debounced.
func (o *Orchestrator) SetTeamName(name string) error {
	return o.Put(docstore.TeamNameKey, docstore.TeamName(name))
}

// AddResource validates r and prepends it to the link list. An empty id is
// filled in; a caller-supplied id is kept even if another entry has it.
func (o *Orchestrator) AddResource(r docstore.Resource) (docstore.Resource, error) {
	if r.ID == "" {
		r.ID = docstore.NewResourceID()
	}
	if err := r.Validate(); err != nil {
		return docstore.Resource{}, err
	}

	o.mu.Lock()
	o.applyLocalLocked(docstore.ResourcesKey, o.state.Resources.Prepend(r))
	o.mu.Unlock()

	o.notify(docstore.ResourcesKey)
	return r, nil
}

// RemoveResource writes the link list without every entry carrying id.
// Reports whether anything was removed; nothing is written otherwise.
func (o *Orchestrator) RemoveResource(id string) bool {
	o.mu.Lock()
	remaining := o.state.Resources.WithoutID(id)
	if len(remaining) == len(o.state.Resources) {
		o.mu.Unlock()
		return false
	}
	o.applyLocalLocked(docstore.ResourcesKey, remaining)
	o.mu.Unlock()

	o.notify(docstore.ResourcesKey)
	return true
}

// Readiness is the per-day count of participants marked YES in one week.
type Readiness struct {
	WeekID string
	Days   []string
	Counts map[string]int
	Total  int
}

// Readiness projects the active week's availability into per-day YES
// counts. It is computed from memory on every call and never cached.
func (o *Orchestrator) Readiness() Readiness {
	o.mu.Lock()
	defer o.mu.Unlock()

	days, _ := week.Days(o.activeWeek)
	return Readiness{
		WeekID: o.activeWeek,
		Days:   days,
		Counts: docstore.Readiness(o.state.Weeks[o.activeWeek], days),
		Total:  len(o.participants),
	}
}

func weekOf(date string) (string, error) {
	d, err := time.Parse(docstore.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return week.ID(d), nil
}
