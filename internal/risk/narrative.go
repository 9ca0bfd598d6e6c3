package risk

import (
	"fmt"
	"strings"
)

const (
	narrativePreamble = "Thank you for sharing your information."
	// Disclaimer closes every rendered verdict.
	Disclaimer = "*This result is NOT a medical diagnosis.*\n\n" +
		"Recommendations:\n" +
		"• See a general practitioner or an endocrinologist.\n" +
		"• Do not self-medicate.\n" +
		"• If your symptoms increase or affect you, seek professional care.\n\n" +
		"Your wellbeing matters."
)

// RenderNarrative builds the chat message shown at the terminal step.
// The text uses light markdown (bold and italics).
func RenderNarrative(verdict Verdict) string {
	var b strings.Builder
	b.WriteString(narrativePreamble)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "**Symptom assessment** (%s)\n%s\n\n", pluralSymptoms(verdict.Symptoms.Count), verdict.Symptoms.Narrative)
	if verdict.Labs != nil {
		fmt.Fprintf(&b, "**Lab interpretation**\n%s\n\n", verdict.Labs.Narrative)
	}
	fmt.Fprintf(&b, "**Estimated risk level:** %s\n\n", verdict.Level)
	b.WriteString(Disclaimer)
	return b.String()
}

func pluralSymptoms(count int) string {
	if count == 1 {
		return "1 symptom"
	}
	return fmt.Sprintf("%d symptoms", count)
}
