package docstore

import (
	"fmt"
	"strings"
	"time"
)

// Family is the closed set of document kinds. A key's family determines the
// shape of the value stored under it.
type Family int

const (
	// FamilySchedule keys are schedule:<weekId> and hold a WeekAvailability
	FamilySchedule Family = iota + 1

	// FamilyNotes keys are notes:<scope> and hold a Note
	FamilyNotes

	// FamilyTeamName is the single key team:name holding a TeamName
	FamilyTeamName

	// FamilyResources is the single key resources holding a ResourceList
	FamilyResources
)

// String returns the key prefix of the family.
func (f Family) String() string {
	switch f {
	case FamilySchedule:
		return "schedule"
	case FamilyNotes:
		return "notes"
	case FamilyTeamName:
		return "team"
	case FamilyResources:
		return "resources"
	default:
		return "unknown"
	}
}

// Key identifies one document inside a team scope.
type Key string

const (
	// TeamNameKey is the only key of FamilyTeamName.
	TeamNameKey Key = "team:name"

	// ResourcesKey is the only key of FamilyResources.
	ResourcesKey Key = "resources"
)

// ScheduleKey returns the key of the availability document for a week.
func ScheduleKey(weekID string) Key {
	return Key("schedule:" + weekID)
}

// NotesKey returns the key of the note for a scope (SharedScope or a participant).
func NotesKey(scope string) Key {
	return Key("notes:" + scope)
}

// Family returns the key's family, or 0 when the key is not well formed.
func (k Key) Family() Family {
	f, _, err := ParseKey(string(k))
	if err != nil {
		return 0
	}
	return f
}

// Arg returns the part after the family prefix (week id or notes scope).
// Empty for single-key families.
func (k Key) Arg() string {
	_, arg, err := ParseKey(string(k))
	if err != nil {
		return ""
	}
	return arg
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// ParseKey splits a raw key into family and argument.
// Schedule keys must carry a Monday ISO date; notes keys a non-empty scope.
func ParseKey(raw string) (Family, string, error) {
	switch Key(raw) {
	case TeamNameKey:
		return FamilyTeamName, "", nil
	case ResourcesKey:
		return FamilyResources, "", nil
	}

	prefix, arg, found := strings.Cut(raw, ":")
	if !found {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownKey, raw)
	}

	switch prefix {
	case "schedule":
		monday, err := time.Parse(DateLayout, arg)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %q: week id is not an ISO date", ErrUnknownKey, raw)
		}
		if monday.Weekday() != time.Monday {
			return 0, "", fmt.Errorf("%w: %q: week id is not a Monday", ErrUnknownKey, raw)
		}
		return FamilySchedule, arg, nil
	case "notes":
		if arg == "" || strings.Contains(arg, ":") {
			return 0, "", fmt.Errorf("%w: %q: invalid notes scope", ErrUnknownKey, raw)
		}
		return FamilyNotes, arg, nil
	default:
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownKey, raw)
	}
}
