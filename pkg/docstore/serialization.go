package docstore

import (
	"encoding/json"
	"fmt"
)

// Serialization boundary
//
// Documents cross the wire and the local cache as JSON. The key family
// decides which Go type a payload decodes into, so a value of the wrong
// shape is rejected here instead of leaking into the state tree.

// Value is a document value. The concrete type is one of WeekAvailability,
// Note, TeamName or ResourceList.
type Value interface {
	Family() Family
}

// Note is a free-text note.
type Note string

// TeamName is the team's display name.
type TeamName string

// Family implements Value.
func (WeekAvailability) Family() Family { return FamilySchedule }

// Family implements Value.
func (Note) Family() Family { return FamilyNotes }

// Family implements Value.
func (TeamName) Family() Family { return FamilyTeamName }

// Family implements Value.
func (ResourceList) Family() Family { return FamilyResources }

// CheckShape returns ErrShapeMismatch unless v belongs to key's family.
func CheckShape(key Key, v Value) error {
	family, arg, err := ParseKey(string(key))
	if err != nil {
		return err
	}
	if v == nil || v.Family() != family {
		return fmt.Errorf("%w: key %s expects %s value", ErrShapeMismatch, key, family)
	}
	if w, ok := v.(WeekAvailability); ok {
		if err := w.Validate(arg); err != nil {
			return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
		}
	}
	return nil
}

// EncodeValue validates v against key and marshals it.
// Nil composite documents encode as empty JSON containers, never null.
func EncodeValue(key Key, v Value) (json.RawMessage, error) {
	if err := CheckShape(key, v); err != nil {
		return nil, err
	}

	var payload any = v
	switch doc := v.(type) {
	case WeekAvailability:
		if doc == nil {
			payload = WeekAvailability{}
		}
	case ResourceList:
		if doc == nil {
			payload = ResourceList{}
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return data, nil
}

// DecodeValue unmarshals raw into the Value variant for key's family.
func DecodeValue(key Key, raw []byte) (Value, error) {
	family, arg, err := ParseKey(string(key))
	if err != nil {
		return nil, err
	}

	switch family {
	case FamilySchedule:
		var w WeekAvailability
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShapeMismatch, key, err)
		}
		if w == nil {
			w = WeekAvailability{}
		}
		if err := w.Validate(arg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
		}
		return w, nil

	case FamilyNotes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShapeMismatch, key, err)
		}
		return Note(s), nil

	case FamilyTeamName:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShapeMismatch, key, err)
		}
		return TeamName(s), nil

	case FamilyResources:
		var l ResourceList
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShapeMismatch, key, err)
		}
		if l == nil {
			l = ResourceList{}
		}
		return l, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}
