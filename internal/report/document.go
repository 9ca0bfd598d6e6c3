package report

import (
	"time"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
)

// Title heads every export.
const Title = "Thyroid risk report"

// Field is one labelled answer in the general data section.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GeneralStep names a step shown under general data.
type GeneralStep struct {
	StepID string
	Label  string
}

// DefaultGeneral lists the general data steps of the built-in flow.
var DefaultGeneral = []GeneralStep{
	{StepID: flow.StepGender, Label: "Gender"},
	{StepID: flow.StepAge, Label: "Age"},
	{StepID: flow.StepFamilyHistory, Label: "Family history of thyroid disease"},
}

// LabRow is one lab value with its reference band.
type LabRow struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Unit   string  `json:"unit"`
	Status string  `json:"status"`
}

// LabSection is present only when lab values were assessed.
type LabSection struct {
	Level     risk.Level `json:"level"`
	Narrative string     `json:"narrative"`
	Notes     []string   `json:"notes"`
	Rows      []LabRow   `json:"rows"`
}

// SymptomSection summarises the symptom checklist.
type SymptomSection struct {
	Count     int        `json:"count"`
	Level     risk.Level `json:"level"`
	Narrative string     `json:"narrative"`
	Selected  []string   `json:"selected"`
}

// Document is the export-ready view of a verdict.
type Document struct {
	Title       string         `json:"title"`
	GeneratedAt time.Time      `json:"generated_at"`
	General     []Field        `json:"general"`
	Level       risk.Level     `json:"level"`
	LevelLabel  string         `json:"level_label"`
	Percent     int            `json:"percent"`
	Symptoms    SymptomSection `json:"symptoms"`
	Labs        *LabSection    `json:"labs,omitempty"`
	Narrative   string         `json:"narrative"`
	Disclaimer  string         `json:"disclaimer"`
	Answers     answer.Set     `json:"answers"`
}

// BuildOptions controls Build.
type BuildOptions struct {
	General []GeneralStep
	Fields  risk.Fields
}

// Build turns a verdict into a document, using graph for option labels.
// GeneratedAt is the verdict timestamp.
func Build(verdict risk.Verdict, graph flow.Graph) Document {
	return BuildWith(verdict, graph, BuildOptions{General: DefaultGeneral, Fields: risk.DefaultFields()})
}

// BuildWith is Build with explicit options.
func BuildWith(verdict risk.Verdict, graph flow.Graph, opts BuildOptions) Document {
	verdict = verdict.Clone()
	doc := Document{
		Title:       Title,
		GeneratedAt: verdict.CreatedAt,
		General:     []Field{},
		Level:       verdict.Level,
		LevelLabel:  verdict.Level.Label(),
		Percent:     verdict.Level.Percent(),
		Symptoms: SymptomSection{
			Count:     verdict.Symptoms.Count,
			Level:     verdict.Symptoms.Level,
			Narrative: verdict.Symptoms.Narrative,
			Selected:  labelsFor(graph, opts.Fields.Symptoms, verdict.Answers.Tokens(opts.Fields.Symptoms)),
		},
		Narrative:  verdict.Narrative,
		Disclaimer: risk.Disclaimer,
		Answers:    verdict.Answers,
	}

	for _, general := range opts.General {
		if !verdict.Answers.Has(general.StepID) {
			continue
		}
		value := verdict.Answers.Text(general.StepID)
		if step, ok := graph.Lookup(general.StepID); ok && step.Kind.HasOptions() {
			value = step.Label(value)
		}
		doc.General = append(doc.General, Field{Label: general.Label, Value: value})
	}

	if verdict.Labs != nil {
		section := &LabSection{
			Level:     verdict.Labs.Level,
			Narrative: verdict.Labs.Narrative,
			Notes:     verdict.Labs.Notes,
			Rows:      make([]LabRow, 0, len(verdict.Labs.Observations)),
		}
		for _, obs := range verdict.Labs.Observations {
			section.Rows = append(section.Rows, LabRow{
				Code:   obs.Code,
				Label:  obs.Label,
				Value:  obs.Value,
				Min:    obs.Min,
				Max:    obs.Max,
				Unit:   obs.Unit,
				Status: obs.Status(),
			})
		}
		doc.Labs = section
	}
	return doc
}

func labelsFor(graph flow.Graph, stepID string, tokens []string) []string {
	labels := make([]string, 0, len(tokens))
	step, ok := graph.Lookup(stepID)
	for _, token := range tokens {
		if ok {
			labels = append(labels, step.Label(token))
			continue
		}
		labels = append(labels, token)
	}
	return labels
}
