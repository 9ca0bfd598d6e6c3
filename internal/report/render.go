package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Render writes doc to w in format.
func Render(ctx context.Context, w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, RenderText(doc))
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case FormatHTML:
		return ReportPage(doc).Render(ctx, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderText returns the plain-text report.
func RenderText(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", doc.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", doc.GeneratedAt.UTC().Format(time.RFC1123))

	if len(doc.General) > 0 {
		b.WriteString("General data\n")
		for _, field := range doc.General {
			fmt.Fprintf(&b, "  %s: %s\n", field.Label, field.Value)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Overall: %s (%d%%)\n", doc.LevelLabel, doc.Percent)
	fmt.Fprintf(&b, "%s\n\n", bar(doc.Percent, 20))

	fmt.Fprintf(&b, "Symptoms (%d): %s\n", doc.Symptoms.Count, selectedText(doc.Symptoms.Selected))
	fmt.Fprintf(&b, "  %s\n\n", doc.Symptoms.Narrative)

	if doc.Labs != nil {
		b.WriteString("Lab results\n")
		for _, row := range doc.Labs.Rows {
			fmt.Fprintf(&b, "  %-9s %8s   ref %-22s %s\n", row.Label, formatValue(row.Value), formatBand(row), row.Status)
		}
		for _, line := range strings.Split(doc.Labs.Narrative, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	b.WriteString(plainText(doc.Disclaimer))
	b.WriteString("\n")
	return b.String()
}

func selectedText(selected []string) string {
	if len(selected) == 0 {
		return "none"
	}
	return strings.Join(selected, ", ")
}

// bar draws a fixed-width gauge filled to percent.
func bar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
