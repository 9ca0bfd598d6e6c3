package answer

import (
	"encoding/json"
	"sort"
)

// Set maps step ids to recorded answers.
type Set struct {
	values map[string]Value
}

// NewSet returns an empty answer set.
func NewSet() Set {
	return Set{values: map[string]Value{}}
}

// FromMap builds a set from a plain map.
func FromMap(values map[string]Value) Set {
	set := NewSet()
	for id, value := range values {
		set.values[id] = value.clone()
	}
	return set
}

// Put records value under stepID. Sets are only grown by the conversation
// engine; callers holding a snapshot never see the change.
func (s *Set) Put(stepID string, value Value) {
	if s.values == nil {
		s.values = map[string]Value{}
	}
	s.values[stepID] = value.clone()
}

// Get returns the value for stepID.
func (s Set) Get(stepID string) (Value, bool) {
	value, ok := s.values[stepID]
	return value, ok
}

// Has reports whether stepID has an answer.
func (s Set) Has(stepID string) bool {
	_, ok := s.values[stepID]
	return ok
}

// Text returns the single-token answer for stepID, or "" when absent.
func (s Set) Text(stepID string) string {
	value, ok := s.values[stepID]
	if !ok {
		return ""
	}
	return value.Text()
}

// Tokens returns the token set for stepID, or an empty slice when absent.
func (s Set) Tokens(stepID string) []string {
	value, ok := s.values[stepID]
	if !ok {
		return []string{}
	}
	return value.Tokens()
}

// Len returns the number of answered steps.
func (s Set) Len() int {
	return len(s.values)
}

// Keys returns the answered step ids in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for id := range s.values {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	return FromMap(s.values)
}

// Equal reports whether both sets hold the same answers.
func (s Set) Equal(other Set) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for id, value := range s.values {
		otherValue, ok := other.values[id]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an object keyed by step id.
func (s Set) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

// UnmarshalJSON decodes an object keyed by step id.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values map[string]Value
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = FromMap(values)
	return nil
}

// UnmarshalYAML decodes a mapping keyed by step id.
func (s *Set) UnmarshalYAML(unmarshal func(any) error) error {
	var values map[string]Value
	if err := unmarshal(&values); err != nil {
		return err
	}
	*s = FromMap(values)
	return nil
}
