package risk

import (
	"time"

	"thyrocheck/internal/answer"
)

// Verdict is the final classification of a completed questionnaire.
// Treat it as immutable: Evaluate copies everything it stores.
type Verdict struct {
	Level     Level             `json:"level"`
	Symptoms  SymptomAssessment `json:"symptoms"`
	Labs      *LabAssessment    `json:"labs,omitempty"`
	Answers   answer.Set        `json:"answers"`
	CreatedAt time.Time         `json:"created_at"`
	Narrative string            `json:"narrative"`
}

// Evaluator scores answer sets.
type Evaluator struct {
	Fields Fields
}

// NewEvaluator returns an evaluator reading the default fields.
func NewEvaluator() Evaluator {
	return Evaluator{Fields: DefaultFields()}
}

// Evaluate scores answers with the default fields.
func Evaluate(answers answer.Set, at time.Time) Verdict {
	return NewEvaluator().Evaluate(answers, at)
}

// Evaluate scores answers. The result depends only on answers, except for
// CreatedAt which is set to at.
func (e Evaluator) Evaluate(answers answer.Set, at time.Time) Verdict {
	snapshot := answers.Clone()
	symptoms := AssessSymptoms(snapshot.Tokens(e.Fields.Symptoms))

	var labs *LabAssessment
	if snapshot.Text(e.Fields.LabPresence) == e.Fields.LabAffirmative {
		assessment := AssessLabs(snapshot, e.Fields)
		labs = &assessment
	}

	verdict := Verdict{
		Level:     Combine(symptoms, labs),
		Symptoms:  symptoms,
		Labs:      labs,
		Answers:   snapshot,
		CreatedAt: at,
	}
	verdict.Narrative = RenderNarrative(verdict)
	return verdict
}

// Combine merges sub-assessment levels; a nil lab assessment does not
// participate.
func Combine(symptoms SymptomAssessment, labs *LabAssessment) Level {
	if labs == nil {
		return symptoms.Level
	}
	return Max(symptoms.Level, labs.Level)
}

// Clone returns a verdict that shares no maps or slices with v.
func (v Verdict) Clone() Verdict {
	out := v
	out.Answers = v.Answers.Clone()
	if v.Labs != nil {
		labs := *v.Labs
		labs.Notes = append([]string{}, v.Labs.Notes...)
		labs.Observations = append([]LabObservation{}, v.Labs.Observations...)
		out.Labs = &labs
	}
	return out
}
