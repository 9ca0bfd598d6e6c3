package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
)

var generatedAt = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func labVerdict() risk.Verdict {
	answers := answer.NewSet()
	answers.Put(flow.StepStart, answer.Single("yes"))
	answers.Put(flow.StepGender, answer.Single("female"))
	answers.Put(flow.StepAge, answer.Single("52"))
	answers.Put(flow.StepFamilyHistory, answer.Single("yes"))
	answers.Put(flow.StepSymptoms, answer.Multi("tremor", "sweating"))
	answers.Put(flow.StepLabAvailable, answer.Single("yes"))
	answers.Put(flow.StepLabTSH, answer.Single("0.1"))
	answers.Put(flow.StepLabT3, answer.Single("1.2"))
	return risk.Evaluate(answers, generatedAt)
}

// TestBuildUsesOptionLabels verifies general data and symptom labels.
func TestBuildUsesOptionLabels(t *testing.T) {
	doc := Build(labVerdict(), flow.Default())

	assert.Equal(t, []Field{
		{Label: "Gender", Value: "Female"},
		{Label: "Age", Value: "52"},
		{Label: "Family history of thyroid disease", Value: "Yes"},
	}, doc.General)
	assert.Equal(t, []string{"Hand tremor", "Excessive sweating"}, doc.Symptoms.Selected)
	assert.Equal(t, risk.High, doc.Level)
	assert.Equal(t, 100, doc.Percent)
	require.NotNil(t, doc.Labs)
	require.Len(t, doc.Labs.Rows, 2)
	assert.Equal(t, risk.StatusBelow, doc.Labs.Rows[0].Status)
	assert.Equal(t, risk.StatusWithin, doc.Labs.Rows[1].Status)
}

// TestBuildWithoutLabs verifies the lab section is omitted.
func TestBuildWithoutLabs(t *testing.T) {
	answers := answer.NewSet()
	answers.Put(flow.StepSymptoms, answer.Multi())
	answers.Put(flow.StepLabAvailable, answer.Single("no"))
	doc := Build(risk.Evaluate(answers, generatedAt), flow.Default())
	assert.Nil(t, doc.Labs)
	assert.Empty(t, doc.General)
	assert.Equal(t, "Low risk", doc.LevelLabel)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"labs"`)
}

// TestRenderText verifies the plain-text layout.
func TestRenderText(t *testing.T) {
	text := RenderText(Build(labVerdict(), flow.Default()))
	assert.Contains(t, text, "Overall: High risk (100%)")
	assert.Contains(t, text, "[####################]")
	assert.Contains(t, text, "Symptoms (2): Hand tremor, Excessive sweating")
	assert.Contains(t, text, risk.NoteTSHLow)
	assert.Contains(t, text, "This result is NOT a medical diagnosis.")
	assert.NotContains(t, text, "*")
}

// TestRenderJSON verifies the JSON document shape.
func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, Build(labVerdict(), flow.Default()), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "HIGH", decoded["level"])
	assert.Equal(t, float64(100), decoded["percent"])
	answers, ok := decoded["answers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"tremor", "sweating"}, answers[flow.StepSymptoms])
}

// TestRenderHTML verifies the templ page escapes input and renders markdown.
func TestRenderHTML(t *testing.T) {
	verdict := labVerdict()
	verdict.Answers.Put(flow.StepAge, answer.Single("<script>"))
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, Build(verdict, flow.Default()), FormatHTML))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<em>This result is NOT a medical diagnosis.</em>")
	assert.Contains(t, html, `class="badge level-HIGH"`)
	assert.Contains(t, html, "width: 100%")
}

// TestResultCardComponent verifies the card escapes its label and clamps the
// bar width.
func TestResultCardComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ResultCard("HIGH", "<High>", 150).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `<span class="badge level-HIGH">&lt;High&gt;</span>`)
	assert.Contains(t, html, `style="width: 100%"`)
	assert.NotContains(t, html, "<High>")
}

// TestReportPageOmitsLabsWithoutResults verifies the lab table only appears
// when lab values were entered.
func TestReportPageOmitsLabsWithoutResults(t *testing.T) {
	verdict := labVerdict()
	verdict.Labs = nil
	var buf bytes.Buffer
	require.NoError(t, ReportPage(Build(verdict, flow.Default())).Render(context.Background(), &buf))

	html := buf.String()
	assert.NotContains(t, html, "<h2>Lab results</h2>")
	assert.Contains(t, html, "<h2>Symptoms (2)</h2>")
	assert.Contains(t, html, "<li>")
}

// TestRenderUnknownFormat verifies the sentinel error.
func TestRenderUnknownFormat(t *testing.T) {
	err := Render(context.Background(), &bytes.Buffer{}, Document{}, Format("pdf"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = ParseFormat("pdf")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	format, err := ParseFormat("TXT")
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)
}

// TestExporterWritesTimestampedFile verifies file naming and the no-verdict
// case.
func TestExporterWritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	exporter := Exporter{Dir: dir, Format: FormatText, Graph: flow.Default()}

	_, err := exporter.Export(context.Background(), risk.Verdict{}, false)
	assert.True(t, errors.Is(err, ErrNoVerdict))
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))

	path, err := exporter.Export(context.Background(), labVerdict(), true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "thyroid-report-20260304-050607.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), Title)
}
