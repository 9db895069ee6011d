package docstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by validation and the serialization boundary.
var (
	ErrUnknownKey      = errors.New("unknown document key")
	ErrShapeMismatch   = errors.New("value shape does not match key family")
	ErrInvalidStatus   = errors.New("invalid day status")
	ErrDateOutsideWeek = errors.New("date outside week")
	ErrInvalidResource = errors.New("invalid resource")
)

// Participant names one member of the team. Membership is configuration
// (roster.yml), never data the store mutates.
type Participant string

// SharedScope is the notes scope that belongs to the whole team rather than
// a single participant.
const SharedScope = "shared"

// DayStatus is a participant's explicit availability choice for one day.
// A missing entry is "unknown" and is never represented by a DayStatus.
type DayStatus string

const (
	// StatusYes means the participant is available
	StatusYes DayStatus = "YES"

	// StatusTBD means the participant explicitly has not decided yet
	StatusTBD DayStatus = "TBD"

	// StatusNo means the participant is unavailable
	StatusNo DayStatus = "NO"
)

// Validate checks if the DayStatus is a valid enum value.
func (s DayStatus) Validate() error {
	switch s {
	case StatusYes, StatusTBD, StatusNo:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// ParseDayStatus accepts the canonical upper-case tags case-insensitively.
func ParseDayStatus(s string) (DayStatus, error) {
	status := DayStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// WeekAvailability maps participant → ISO date → status for one week.
type WeekAvailability map[Participant]map[string]DayStatus

// Status returns the explicit status for a participant/date pair.
// ok is false when the pair was never set.
func (w WeekAvailability) Status(p Participant, date string) (status DayStatus, ok bool) {
	days, found := w[p]
	if !found {
		return "", false
	}
	status, ok = days[date]
	return status, ok
}

// Clone returns a deep copy. Documents held by the orchestrator are never
// mutated in place, so edits always go through a copy.
func (w WeekAvailability) Clone() WeekAvailability {
	if w == nil {
		return nil
	}
	out := make(WeekAvailability, len(w))
	for p, days := range w {
		copied := make(map[string]DayStatus, len(days))
		for date, status := range days {
			copied[date] = status
		}
		out[p] = copied
	}
	return out
}

// With returns a copy of w with one participant/date pair set.
func (w WeekAvailability) With(p Participant, date string, status DayStatus) WeekAvailability {
	out := w.Clone()
	if out == nil {
		out = make(WeekAvailability)
	}
	if out[p] == nil {
		out[p] = make(map[string]DayStatus)
	}
	out[p][date] = status
	return out
}

// Without returns a copy of w with one participant/date pair removed,
// returning it to "unknown". Empty participant maps are dropped.
func (w WeekAvailability) Without(p Participant, date string) WeekAvailability {
	out := w.Clone()
	if out == nil {
		return make(WeekAvailability)
	}
	delete(out[p], date)
	if len(out[p]) == 0 {
		delete(out, p)
	}
	return out
}

// Validate checks statuses and that every date lies in the week starting on
// the Monday weekID.
func (w WeekAvailability) Validate(weekID string) error {
	monday, err := time.Parse(DateLayout, weekID)
	if err != nil {
		return fmt.Errorf("invalid week id %q: %w", weekID, err)
	}
	if monday.Weekday() != time.Monday {
		return fmt.Errorf("invalid week id %q: not a Monday", weekID)
	}

	for p, days := range w {
		if p == "" {
			return fmt.Errorf("participant name cannot be empty")
		}
		for date, status := range days {
			day, err := time.Parse(DateLayout, date)
			if err != nil {
				return fmt.Errorf("participant %s: invalid date %q: %w", p, date, err)
			}
			offset := day.Sub(monday)
			if offset < 0 || offset >= 7*24*time.Hour {
				return fmt.Errorf("%w: %s is not in week %s", ErrDateOutsideWeek, date, weekID)
			}
			if err := status.Validate(); err != nil {
				return fmt.Errorf("participant %s on %s: %w", p, date, err)
			}
		}
	}

	return nil
}

// DateLayout is the ISO calendar date format used for week ids and day keys.
const DateLayout = "2006-01-02"

// ResourceType tags what kind of link a resource is.
type ResourceType string

const (
	// ResourceTypeLink is a generic web page
	ResourceTypeLink ResourceType = "link"

	// ResourceTypeVideo is a video or VOD
	ResourceTypeVideo ResourceType = "video"

	// ResourceTypeGuide is a written guide or article
	ResourceTypeGuide ResourceType = "guide"

	// ResourceTypeTool is an external tool or site
	ResourceTypeTool ResourceType = "tool"
)

// Validate checks if the ResourceType is a valid enum value.
func (rt ResourceType) Validate() error {
	switch rt {
	case ResourceTypeLink, ResourceTypeVideo, ResourceTypeGuide, ResourceTypeTool:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidResource, rt)
	}
}

// Resource is one entry of the team's link list.
type Resource struct {
	ID    string       `json:"id"`             // Caller-generated, not de-duplicated by the store
	Title string       `json:"title"`          // Display title (required)
	URL   string       `json:"url"`            // Absolute, scheme-qualified URL (required)
	Type  ResourceType `json:"type"`           // Enum tag
	Desc  string       `json:"desc,omitempty"` // Optional description
}

// NewResourceID returns a fresh opaque resource id.
func NewResourceID() string {
	return uuid.New().String()
}

// Validate checks a resource at the point of entry. No partial record is
// ever created from an invalid one.
func (r *Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidResource)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidResource)
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidResource)
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: unparsable url: %v", ErrInvalidResource, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: url must be absolute (e.g. https://example.com)", ErrInvalidResource)
	}

	return r.Type.Validate()
}

// ResourceList is ordered newest first.
type ResourceList []Resource

// Prepend returns a new list with r in front.
func (l ResourceList) Prepend(r Resource) ResourceList {
	out := make(ResourceList, 0, len(l)+1)
	out = append(out, r)
	return append(out, l...)
}

// WithoutID returns a new list omitting every entry with the given id.
func (l ResourceList) WithoutID(id string) ResourceList {
	out := make(ResourceList, 0, len(l))
	for _, r := range l {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with l.
func (l ResourceList) Clone() ResourceList {
	if l == nil {
		return nil
	}
	out := make(ResourceList, len(l))
	copy(out, l)
	return out
}
