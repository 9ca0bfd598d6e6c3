package risk

import (
	"fmt"

	"thyrocheck/internal/flow"
)

// Fields names the steps the evaluator reads from an answer set.
type Fields struct {
	Symptoms       string
	LabPresence    string
	LabAffirmative string
	TSH            string
	T3             string
	T4             string
	FT3            string
	FT4            string
}

// DefaultFields matches the built-in questionnaire.
func DefaultFields() Fields {
	return Fields{
		Symptoms:       flow.StepSymptoms,
		LabPresence:    flow.StepLabAvailable,
		LabAffirmative: "yes",
		TSH:            flow.StepLabTSH,
		T3:             flow.StepLabT3,
		T4:             flow.StepLabT4,
		FT3:            flow.StepLabFT3,
		FT4:            flow.StepLabFT4,
	}
}

func (f Fields) labStep(code string) string {
	switch code {
	case CodeTSH:
		return f.TSH
	case CodeT3:
		return f.T3
	case CodeT4:
		return f.T4
	case CodeFT3:
		return f.FT3
	case CodeFT4:
		return f.FT4
	default:
		return ""
	}
}

// Check reports steps the evaluator depends on that are missing from graph
// or have the wrong kind.
func (f Fields) Check(graph flow.Graph) error {
	var issues []flow.Issue
	add := func(field, message string) {
		issues = append(issues, flow.Issue{Field: field, Message: message})
	}
	expect := func(field, id string, kind flow.Kind) (flow.Step, bool) {
		step, ok := graph.Lookup(id)
		if !ok {
			add(field, fmt.Sprintf("step %q not found", id))
			return flow.Step{}, false
		}
		if step.Kind != kind {
			add(field, fmt.Sprintf("step %q must be %s, got %s", id, kind, step.Kind))
			return step, false
		}
		return step, true
	}

	expect("symptoms", f.Symptoms, flow.KindMultiChoice)
	if step, ok := expect("lab_presence", f.LabPresence, flow.KindChoice); ok {
		if _, found := step.Option(f.LabAffirmative); !found {
			add("lab_presence", fmt.Sprintf("step %q has no option %q", f.LabPresence, f.LabAffirmative))
		}
	}
	for _, rule := range labRules {
		expect("labs."+rule.code, f.labStep(rule.code), flow.KindInput)
	}

	if len(issues) == 0 {
		return nil
	}
	return &flow.ValidationError{Issues: issues}
}
