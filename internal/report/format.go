package report

import (
	"errors"
	"fmt"
	"strings"
)

// Format selects the export encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

var (
	// ErrUnknownFormat is returned for unsupported export formats.
	ErrUnknownFormat = errors.New("unknown report format")
	// ErrNoVerdict is returned when exporting before the verdict exists.
	ErrNoVerdict = errors.New("no verdict to export")
)

// ParseFormat accepts text, txt, json, and html.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// ContentType returns the HTTP content type.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// formatValue prints lab numbers without trailing zeros.
func formatValue(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

// formatBand renders a reference band as "min - max unit".
func formatBand(row LabRow) string {
	return fmt.Sprintf("%s - %s %s", formatValue(row.Min), formatValue(row.Max), row.Unit)
}

// plainText strips the emphasis markers used in chat narratives.
func plainText(markdown string) string {
	return strings.NewReplacer("**", "", "*", "").Replace(markdown)
}
