package answer

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestMultiDeduplicatesInOrder verifies token sets keep first occurrences.
func TestMultiDeduplicatesInOrder(t *testing.T) {
	value := Multi("b", "a", "b", "c", "a")
	got := value.Tokens()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// TestSetTypedDefaults verifies absent keys read as empty values.
func TestSetTypedDefaults(t *testing.T) {
	set := NewSet()
	if tokens := set.Tokens("symptoms"); tokens == nil || len(tokens) != 0 {
		t.Fatalf("expected empty non-nil tokens, got %#v", tokens)
	}
	if text := set.Text("lab_tsh"); text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
	var zero Set
	if zero.Has("anything") || zero.Len() != 0 {
		t.Fatalf("expected zero set to be empty")
	}
}

// TestCloneIsSnapshot verifies later writes do not leak into a clone.
func TestCloneIsSnapshot(t *testing.T) {
	set := NewSet()
	set.Put("symptoms", Multi("sweating", "tremor"))
	snapshot := set.Clone()

	set.Put("symptoms", Multi("fatigue"))
	set.Put("lab_tsh", Single("0.1"))

	if snapshot.Len() != 1 {
		t.Fatalf("expected snapshot to keep 1 answer, got %d", snapshot.Len())
	}
	tokens := snapshot.Tokens("symptoms")
	if len(tokens) != 2 || tokens[0] != "sweating" {
		t.Fatalf("unexpected snapshot tokens: %v", tokens)
	}
	tokens[0] = "mutated"
	if snapshot.Tokens("symptoms")[0] != "sweating" {
		t.Fatalf("expected Tokens to return a copy")
	}
}

// TestSetJSONShape verifies sets encode singles as strings and sets as arrays.
func TestSetJSONShape(t *testing.T) {
	set := NewSet()
	set.Put("general_age", Single("41"))
	set.Put("symptoms", Multi("tremor"))
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"general_age":"41","symptoms":["tremor"]}` {
		t.Fatalf("unexpected json: %s", data)
	}

	var decoded Set
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(set) {
		t.Fatalf("expected decoded set to equal original")
	}
}

// TestSetYAMLDecoding verifies answer files may mix scalars and lists.
func TestSetYAMLDecoding(t *testing.T) {
	payload := "lab_available: \"yes\"\nsymptoms: [tremor, sweating]\nlab_tsh: 0.1\n"
	var set Set
	if err := yaml.Unmarshal([]byte(payload), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if set.Text("lab_available") != "yes" {
		t.Fatalf("unexpected lab_available: %q", set.Text("lab_available"))
	}
	if set.Text("lab_tsh") != "0.1" {
		t.Fatalf("unexpected lab_tsh: %q", set.Text("lab_tsh"))
	}
	value, _ := set.Get("symptoms")
	if !value.IsMulti() || len(value.Tokens()) != 2 {
		t.Fatalf("unexpected symptoms: %+v", value.Tokens())
	}
}
