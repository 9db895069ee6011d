package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dyluth/roster/internal/week"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/tidwall/jsonc"
)

// Export returns the whole in-memory state tree as one JSON document.
func (o *Orchestrator) Export() ([]byte, error) {
	o.mu.Lock()
	snapshot := o.state.Clone()
	o.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// importPayload mirrors docstore.State with pointers so that a field left
// out of the payload can be told apart from one set to its zero value.
type importPayload struct {
	TeamName  *string                              `json:"team_name"`
	Notes     map[string]string                    `json:"notes"`
	Weeks     map[string]docstore.WeekAvailability `json:"weeks"`
	Resources *docstore.ResourceList               `json:"resources"`
}

// Import replaces the state tree wholesale with an exported payload and
// writes every document present in it to the remote store: one write per
// week, per notes scope, and one each for resources and team name when
// those fields are present. Comments and trailing commas are tolerated.
//
// A payload that does not decode or validate returns ErrMalformedImport and
// leaves state untouched.
func (o *Orchestrator) Import(data []byte) error {
	payload, err := o.decodeImport(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	next := docstore.NewState()
	var present []docstore.Key

	weekIDs := make([]string, 0, len(payload.Weeks))
	for weekID := range payload.Weeks {
		weekIDs = append(weekIDs, weekID)
	}
	sort.Strings(weekIDs)
	for _, weekID := range weekIDs {
		w := payload.Weeks[weekID]
		if w == nil {
			w = docstore.WeekAvailability{}
		}
		next.Weeks[weekID] = w
		present = append(present, docstore.ScheduleKey(weekID))
	}

	scopes := make([]string, 0, len(payload.Notes))
	for scope := range payload.Notes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		next.Notes[scope] = payload.Notes[scope]
		present = append(present, docstore.NotesKey(scope))
	}

	if payload.Resources != nil {
		next.Resources = payload.Resources.Clone()
		if next.Resources == nil {
			next.Resources = docstore.ResourceList{}
		}
		present = append(present, docstore.ResourcesKey)
	}
	if payload.TeamName != nil {
		next.TeamName = *payload.TeamName
		present = append(present, docstore.TeamNameKey)
	}

	o.mu.Lock()
	previous := o.state
	o.state = next

	// Pending debounced writes belong to the replaced tree.
	for key, timer := range o.timers {
		timer.Stop()
		delete(o.timers, key)
	}

	changed := changedKeys(previous, next)
	for _, key := range append(changed, present...) {
		o.infoLocked(key).gen++
	}
	o.saveLocked()
	for _, key := range present {
		o.pushLocked(key)
	}
	o.mu.Unlock()

	o.notify(changed...)
	return nil
}

func (o *Orchestrator) decodeImport(data []byte) (*importPayload, error) {
	clean := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(clean) == 0 || clean[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var payload importPayload
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}

	for weekID, w := range payload.Weeks {
		if err := week.Validate(weekID); err != nil {
			return nil, err
		}
		if err := w.Validate(weekID); err != nil {
			return nil, fmt.Errorf("week %s: %w", weekID, err)
		}
		if err := o.checkMembers(docstore.ScheduleKey(weekID), w); err != nil {
			return nil, fmt.Errorf("week %s: %w", weekID, err)
		}
	}

	for scope := range payload.Notes {
		if err := o.checkMembers(docstore.NotesKey(scope), docstore.Note(payload.Notes[scope])); err != nil {
			return nil, err
		}
	}

	if payload.Resources != nil {
		for i := range *payload.Resources {
			r := (*payload.Resources)[i]
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("resource %d: %w", i, err)
			}
		}
	}

	return &payload, nil
}
