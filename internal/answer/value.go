package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a recorded answer: a single token or an ordered token set.
type Value struct {
	text   string
	tokens []string
	multi  bool
}

// Single returns a single-token value.
func Single(text string) Value {
	return Value{text: text}
}

// Multi returns an ordered token set. Duplicates keep their first position.
func Multi(tokens ...string) Value {
	seen := make(map[string]struct{}, len(tokens))
	ordered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		ordered = append(ordered, token)
	}
	return Value{tokens: ordered, multi: true}
}

// IsMulti reports whether the value holds a token set.
func (v Value) IsMulti() bool {
	return v.multi
}

// Text returns the single token, or the tokens joined by ", " for sets.
func (v Value) Text() string {
	if v.multi {
		return strings.Join(v.tokens, ", ")
	}
	return v.text
}

// Tokens returns a copy of the token set. A single value yields one token
// unless it is empty.
func (v Value) Tokens() []string {
	if !v.multi {
		if v.text == "" {
			return []string{}
		}
		return []string{v.text}
	}
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Equal reports whether two values hold the same tokens in the same order.
func (v Value) Equal(other Value) bool {
	if v.multi != other.multi {
		return false
	}
	if !v.multi {
		return v.text == other.text
	}
	if len(v.tokens) != len(other.tokens) {
		return false
	}
	for i := range v.tokens {
		if v.tokens[i] != other.tokens[i] {
			return false
		}
	}
	return true
}

// clone returns a value that shares no backing storage with v.
func (v Value) clone() Value {
	if !v.multi {
		return v
	}
	return Value{tokens: v.Tokens(), multi: true}
}

// MarshalJSON encodes single values as strings and sets as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.Tokens())
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = Single(text)
		return nil
	}
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("answer value must be a string or a list of strings: %w", err)
	}
	*v = Multi(tokens...)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var tokens []string
	if err := unmarshal(&tokens); err == nil {
		*v = Multi(tokens...)
		return nil
	}
	var text string
	if err := unmarshal(&text); err != nil {
		return fmt.Errorf("answer value must be a scalar or a list of scalars: %w", err)
	}
	*v = Single(text)
	return nil
}
