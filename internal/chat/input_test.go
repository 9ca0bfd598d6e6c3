package chat

import (
	"testing"

	"thyrocheck/internal/flow"
)

func TestMultiAnswerKeepsOptionOrder(t *testing.T) {
	step, _ := flow.Default().Lookup(flow.StepSymptoms)
	value, text := MultiAnswer(step, []string{"warm_hands", "weight_loss"})
	tokens := value.Tokens()
	if len(tokens) != 2 || tokens[0] != "weight_loss" || tokens[1] != "warm_hands" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
	if text != "Selected: Unexplained weight loss, Warm hands" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestMultiAnswerKeepsUnknownValues(t *testing.T) {
	step, _ := flow.Default().Lookup(flow.StepSymptoms)
	value, _ := MultiAnswer(step, []string{"tremor", "itching"})
	if _, ok := normalizeValue(step, value); ok {
		t.Fatalf("expected unknown symptom to be rejected")
	}
}

func TestChoiceAnswerUsesLabel(t *testing.T) {
	step, _ := flow.Default().Lookup(flow.StepFamilyHistory)
	value, text := ChoiceAnswer(step, "unknown")
	if value.Text() != "unknown" || text != "I don't know" {
		t.Fatalf("unexpected answer %q / %q", value.Text(), text)
	}
}

func TestAnswerTrimsInput(t *testing.T) {
	step, _ := flow.Default().Lookup(flow.StepAge)
	value, text := Answer(step, "  41 ")
	if value.Text() != "41" || text != "41" {
		t.Fatalf("unexpected answer %q / %q", value.Text(), text)
	}
}
