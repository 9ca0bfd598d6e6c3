package risk

// Symptom band narratives.
const (
	NoSymptomsNarrative       = "No symptoms reported at this time."
	FewSymptomsNarrative      = "You report few symptoms. It is still advisable to keep an eye on how they evolve."
	SeveralSymptomsNarrative  = "You have several symptoms that may be consistent with hyperthyroidism. Consulting a health professional is recommended."
	NumerousSymptomsNarrative = "You present numerous symptoms consistent with a thyroid disturbance. It would be important to seek a medical evaluation soon."
)

// SymptomAssessment is the symptom-count sub-score.
type SymptomAssessment struct {
	Count     int    `json:"count"`
	Level     Level  `json:"level"`
	Narrative string `json:"narrative"`
}

// AssessSymptoms classifies the number of selected symptoms.
func AssessSymptoms(tokens []string) SymptomAssessment {
	count := len(tokens)
	switch {
	case count == 0:
		return SymptomAssessment{Count: 0, Level: Low, Narrative: NoSymptomsNarrative}
	case count <= 2:
		return SymptomAssessment{Count: count, Level: Low, Narrative: FewSymptomsNarrative}
	case count <= 5:
		return SymptomAssessment{Count: count, Level: Moderate, Narrative: SeveralSymptomsNarrative}
	default:
		return SymptomAssessment{Count: count, Level: High, Narrative: NumerousSymptomsNarrative}
	}
}
