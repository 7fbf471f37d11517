package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// StringSet is the canonical container for multi-valued categorical fields
// (customer concerns, product target profiles/concerns). Membership is what
// matters; order never does. It marshals to a sorted JSON array and stores as
// a JSON array column, so all representation ambiguity is resolved at the
// load boundary and nothing downstream needs to re-normalize.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, ignoring empty strings.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Contains reports whether v is a member.
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether s and other share at least one member.
func (s StringSet) Intersects(other StringSet) bool {
	a, b := s, other
	if len(a) > len(b) {
		a, b = b, a
	}
	for v := range a {
		if _, ok := b[v]; ok {
			return true
		}
	}
	return false
}

// Union returns a new set with the members of both s and other.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Values returns the members sorted ascending. Sorting keeps every serialized
// or iterated form deterministic (cache keys, JSON output, test fixtures).
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted JSON array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON accepts either a JSON array of strings or a JSON string that
// itself encodes such an array (a shape some exporters emit for array
// columns). Anything else is an error; the loader converts it to a schema
// failure.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		var nested string
		if err2 := json.Unmarshal(data, &nested); err2 != nil {
			return err
		}
		if err2 := json.Unmarshal([]byte(nested), &values); err2 != nil {
			return err2
		}
	}
	*s = NewStringSet(values...)
	return nil
}

// Value implements driver.Valuer; the set is stored as a JSON array column.
func (s StringSet) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for TEXT/BLOB columns holding a JSON array.
func (s *StringSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringSet{}
		return nil
	case string:
		return s.UnmarshalJSON([]byte(v))
	case []byte:
		return s.UnmarshalJSON(v)
	default:
		return fmt.Errorf("stringset: cannot scan %T", src)
	}
}
