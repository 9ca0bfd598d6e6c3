package risk

import (
	"strings"

	"thyrocheck/internal/answer"
)

// Lab codes in evaluation order.
const (
	CodeTSH = "TSH"
	CodeT3  = "T3"
	CodeT4  = "T4"
	CodeFT3 = "fT3"
	CodeFT4 = "fT4"
)

// Lab notes recorded for out-of-band values.
const (
	NoteTSHLow  = "TSH low: suggests hyperthyroidism"
	NoteTSHHigh = "TSH high: suggests hypothyroidism or other thyroid disturbance"
	NoteT3High  = "T3 total elevated"
	NoteT4High  = "T4 total elevated"
	NoteFT3High = "fT3 elevated"
	NoteFT4High = "fT4 elevated"
)

// WithinRangeNarrative is used when no lab value produced a note.
const WithinRangeNarrative = "The values you entered are within approximate reference ranges or show no marked alterations."

// Observation position relative to the reference band.
const (
	StatusBelow  = "below"
	StatusWithin = "within"
	StatusAbove  = "above"
)

// LabObservation is one parsed lab value with its reference band.
type LabObservation struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit"`
}

// Status reports where the value falls relative to the band.
func (o LabObservation) Status() string {
	switch {
	case o.Value < o.Min:
		return StatusBelow
	case o.Value > o.Max:
		return StatusAbove
	default:
		return StatusWithin
	}
}

// LabAssessment is the lab-value sub-score.
type LabAssessment struct {
	Level        Level            `json:"level"`
	Narrative    string           `json:"narrative"`
	Notes        []string         `json:"notes"`
	Observations []LabObservation `json:"observations"`
}

type finding struct {
	level Level
	note  string
}

type labRule struct {
	code  string
	label string
	unit  string
	min   float64
	max   float64
	below *finding
	above *finding
}

// labRules holds the approximate adult reference bands, in evaluation order.
var labRules = []labRule{
	{
		code: CodeTSH, label: "TSH", unit: "µU/mL", min: 0.2, max: 4.2,
		below: &finding{level: High, note: NoteTSHLow},
		above: &finding{level: Moderate, note: NoteTSHHigh},
	},
	{
		code: CodeT3, label: "T3 total", unit: "ng/mL", min: 0.8, max: 1.8,
		above: &finding{level: High, note: NoteT3High},
	},
	{
		code: CodeT4, label: "T4 total", unit: "ng/mL", min: 4, max: 11,
		above: &finding{level: High, note: NoteT4High},
	},
	{
		code: CodeFT3, label: "fT3", unit: "pg/mL", min: 2.6, max: 5.1,
		above: &finding{level: High, note: NoteFT3High},
	},
	{
		code: CodeFT4, label: "fT4", unit: "ng/dL", min: 0.93, max: 1.71,
		above: &finding{level: High, note: NoteFT4High},
	},
}

// AssessLabs evaluates the lab answers named by fields. Values that do not
// parse are skipped.
func AssessLabs(answers answer.Set, fields Fields) LabAssessment {
	level := Low
	notes := []string{}
	observations := []LabObservation{}
	for _, rule := range labRules {
		value, ok := ParseLabValue(answers.Text(fields.labStep(rule.code)))
		if !ok {
			continue
		}
		observations = append(observations, LabObservation{
			Code:  rule.code,
			Label: rule.label,
			Value: value,
			Min:   rule.min,
			Max:   rule.max,
			Unit:  rule.unit,
		})
		var hit *finding
		switch {
		case value < rule.min:
			hit = rule.below
		case value > rule.max:
			hit = rule.above
		}
		if hit == nil {
			continue
		}
		level = Max(level, hit.level)
		notes = append(notes, hit.note)
	}

	if len(notes) == 0 {
		return LabAssessment{
			Level:        Low,
			Narrative:    WithinRangeNarrative,
			Notes:        notes,
			Observations: observations,
		}
	}
	return LabAssessment{
		Level:        level,
		Narrative:    strings.Join(notes, "\n"),
		Notes:        notes,
		Observations: observations,
	}
}

// References returns the reference band for every lab code, in order.
func References() []LabObservation {
	refs := make([]LabObservation, 0, len(labRules))
	for _, rule := range labRules {
		refs = append(refs, LabObservation{
			Code:  rule.code,
			Label: rule.label,
			Min:   rule.min,
			Max:   rule.max,
			Unit:  rule.unit,
		})
	}
	return refs
}
