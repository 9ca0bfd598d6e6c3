package flow

import (
	_ "embed"
	"fmt"
)

//go:embed default_flow.yml
var defaultFlowYAML []byte

// Step ids of the built-in questionnaire.
const (
	StepStart         = "start"
	StepGender        = "general_gender"
	StepAge           = "general_age"
	StepFamilyHistory = "general_family_history"
	StepSymptoms      = "symptoms"
	StepLabAvailable  = "lab_available"
	StepLabTSH        = "lab_tsh"
	StepLabT3         = "lab_t3"
	StepLabT4         = "lab_t4"
	StepLabFT3        = "lab_ft3"
	StepLabFT4        = "lab_ft4"
	StepFinal         = "final"
)

// DefaultYAML returns the embedded flow definition.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultFlowYAML...)
}

// Default returns the built-in questionnaire.
func Default() Graph {
	graph, err := Parse(defaultFlowYAML, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded flow is invalid: %v", err))
	}
	return graph
}
