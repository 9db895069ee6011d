package docstore

import (
	"sort"
)

// State is the full application state tree: every document of one team.
// It is the shape of the local cache blob and of export/import payloads.
type State struct {
	TeamName  string                      `json:"team_name"`
	Notes     map[string]string           `json:"notes"`
	Weeks     map[string]WeekAvailability `json:"weeks"`
	Resources ResourceList                `json:"resources"`
}

// NewState returns an empty state with all containers allocated.
func NewState() *State {
	return &State{
		Notes:     make(map[string]string),
		Weeks:     make(map[string]WeekAvailability),
		Resources: ResourceList{},
	}
}

// Normalize replaces nil containers (e.g. after decoding an older blob).
func (s *State) Normalize() {
	if s.Notes == nil {
		s.Notes = make(map[string]string)
	}
	if s.Weeks == nil {
		s.Weeks = make(map[string]WeekAvailability)
	}
	if s.Resources == nil {
		s.Resources = ResourceList{}
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := &State{
		TeamName:  s.TeamName,
		Notes:     make(map[string]string, len(s.Notes)),
		Weeks:     make(map[string]WeekAvailability, len(s.Weeks)),
		Resources: s.Resources.Clone(),
	}
	for scope, text := range s.Notes {
		out.Notes[scope] = text
	}
	for weekID, w := range s.Weeks {
		out.Weeks[weekID] = w.Clone()
	}
	if out.Resources == nil {
		out.Resources = ResourceList{}
	}
	return out
}

// Value returns the document stored under key. ok is false when the state
// holds nothing for a schedule or notes key; single-key families always
// have a (possibly default) value.
func (s *State) Value(key Key) (v Value, ok bool) {
	family, arg, err := ParseKey(string(key))
	if err != nil {
		return nil, false
	}

	switch family {
	case FamilySchedule:
		w, found := s.Weeks[arg]
		if !found {
			return WeekAvailability{}, false
		}
		return w, true
	case FamilyNotes:
		text, found := s.Notes[arg]
		return Note(text), found
	case FamilyTeamName:
		return TeamName(s.TeamName), true
	case FamilyResources:
		return s.Resources, true
	}
	return nil, false
}

// Apply stores v under key after checking its shape. The state keeps v
// as-is; callers hand over ownership.
func (s *State) Apply(key Key, v Value) error {
	if err := CheckShape(key, v); err != nil {
		return err
	}
	s.Normalize()

	switch doc := v.(type) {
	case WeekAvailability:
		if doc == nil {
			doc = WeekAvailability{}
		}
		s.Weeks[key.Arg()] = doc
	case Note:
		s.Notes[key.Arg()] = string(doc)
	case TeamName:
		s.TeamName = string(doc)
	case ResourceList:
		if doc == nil {
			doc = ResourceList{}
		}
		s.Resources = doc
	}
	return nil
}

// Keys lists every document present in the state in a stable order:
// weeks, notes, resources, team name.
func (s *State) Keys() []Key {
	keys := make([]Key, 0, len(s.Weeks)+len(s.Notes)+2)

	weekIDs := make([]string, 0, len(s.Weeks))
	for weekID := range s.Weeks {
		weekIDs = append(weekIDs, weekID)
	}
	sort.Strings(weekIDs)
	for _, weekID := range weekIDs {
		keys = append(keys, ScheduleKey(weekID))
	}

	scopes := make([]string, 0, len(s.Notes))
	for scope := range s.Notes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		keys = append(keys, NotesKey(scope))
	}

	return append(keys, ResourcesKey, TeamNameKey)
}

// Readiness counts, for each date, the participants whose status is YES.
// Every requested date is present in the result, zero when nobody is ready.
func Readiness(w WeekAvailability, dates []string) map[string]int {
	counts := make(map[string]int, len(dates))
	for _, date := range dates {
		counts[date] = 0
	}
	for _, days := range w {
		for _, date := range dates {
			if days[date] == StatusYes {
				counts[date]++
			}
		}
	}
	return counts
}
