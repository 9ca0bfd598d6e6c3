package chat

import (
	"strings"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
)

// NoneSelectedText is shown when a multi-choice answer selects nothing.
const NoneSelectedText = "None selected"

// normalizeValue checks value against the step's input kind.
func normalizeValue(step flow.Step, value answer.Value) (answer.Value, bool) {
	switch step.Kind {
	case flow.KindInput:
		if value.IsMulti() {
			return answer.Value{}, false
		}
		text := strings.TrimSpace(value.Text())
		if text == "" {
			return answer.Value{}, false
		}
		return answer.Single(text), true
	case flow.KindChoice:
		if value.IsMulti() {
			return answer.Value{}, false
		}
		if _, ok := step.Option(value.Text()); !ok {
			return answer.Value{}, false
		}
		return value, true
	case flow.KindMultiChoice:
		tokens := value.Tokens()
		for _, token := range tokens {
			if _, ok := step.Option(token); !ok {
				return answer.Value{}, false
			}
		}
		return answer.Multi(tokens...), true
	default:
		return answer.Value{}, false
	}
}

// ChoiceAnswer returns the value and transcript text for picking one option.
func ChoiceAnswer(step flow.Step, value string) (answer.Value, string) {
	return answer.Single(value), step.Label(value)
}

// MultiAnswer returns the value and transcript text for a multi-choice
// selection. Values are kept in option order.
func MultiAnswer(step flow.Step, values []string) (answer.Value, string) {
	selected := make(map[string]struct{}, len(values))
	for _, value := range values {
		selected[value] = struct{}{}
	}
	tokens := make([]string, 0, len(values))
	labels := make([]string, 0, len(values))
	for _, option := range step.Options {
		if _, ok := selected[option.Value]; ok {
			tokens = append(tokens, option.Value)
			labels = append(labels, option.Label)
		}
	}
	// Unknown values are kept so the engine can reject them.
	for _, value := range values {
		if _, ok := step.Option(value); !ok {
			tokens = append(tokens, value)
			labels = append(labels, value)
		}
	}
	if len(labels) == 0 {
		return answer.Multi(), NoneSelectedText
	}
	return answer.Multi(tokens...), "Selected: " + strings.Join(labels, ", ")
}

// TextAnswer returns the value and transcript text for free text.
func TextAnswer(text string) (answer.Value, string) {
	trimmed := strings.TrimSpace(text)
	return answer.Single(trimmed), trimmed
}

// Answer builds the value and transcript text for step from raw user input:
// one option value for choice steps, option values for multi-choice steps,
// and the text itself for input steps.
func Answer(step flow.Step, values ...string) (answer.Value, string) {
	switch step.Kind {
	case flow.KindChoice:
		if len(values) == 0 {
			return answer.Single(""), ""
		}
		return ChoiceAnswer(step, values[0])
	case flow.KindMultiChoice:
		return MultiAnswer(step, values)
	default:
		return TextAnswer(strings.Join(values, " "))
	}
}
