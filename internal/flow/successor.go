package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Successor is the outgoing edge of a step: none, a direct edge, or a
// branch table keyed by answer value.
type Successor struct {
	direct string
	branch map[string]string
}

// Direct returns an unconditional edge to id.
func Direct(id string) Successor {
	return Successor{direct: id}
}

// Branch returns an edge chosen by answer value.
func Branch(table map[string]string) Successor {
	copied := make(map[string]string, len(table))
	for value, id := range table {
		copied[value] = id
	}
	return Successor{branch: copied}
}

// IsNone reports whether the successor has no edge.
func (s Successor) IsNone() bool {
	return s.direct == "" && s.branch == nil
}

// IsBranch reports whether the successor is a branch table.
func (s Successor) IsBranch() bool {
	return s.branch != nil
}

// Resolve returns the next step id for the given answer value.
func (s Successor) Resolve(value string) (string, bool) {
	if s.branch != nil {
		id, ok := s.branch[value]
		return id, ok && id != ""
	}
	if s.direct == "" {
		return "", false
	}
	return s.direct, true
}

// Targets returns every step id the successor can lead to, sorted.
func (s Successor) Targets() []string {
	if s.branch == nil {
		if s.direct == "" {
			return nil
		}
		return []string{s.direct}
	}
	seen := map[string]struct{}{}
	targets := make([]string, 0, len(s.branch))
	for _, id := range s.branch {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	sort.Strings(targets)
	return targets
}

// BranchValues returns the answer values of a branch table, sorted.
func (s Successor) BranchValues() []string {
	values := make([]string, 0, len(s.branch))
	for value := range s.branch {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

func (s Successor) clone() Successor {
	if s.branch == nil {
		return s
	}
	return Branch(s.branch)
}

// MarshalJSON renders a direct edge as a string, a branch as an object, and
// none as null.
func (s Successor) MarshalJSON() ([]byte, error) {
	switch {
	case s.branch != nil:
		return json.Marshal(s.branch)
	case s.direct != "":
		return json.Marshal(s.direct)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the forms MarshalJSON produces: a string, an object,
// or null.
func (s *Successor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*s = Successor{}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*s = Direct(id)
		return nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		var table map[string]string
		if err := json.Unmarshal(trimmed, &table); err != nil {
			return err
		}
		*s = Branch(table)
		return nil
	default:
		return fmt.Errorf("successor must be a string, an object, or null")
	}
}
