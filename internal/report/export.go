package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
)

// FileName returns thyroid-report-<timestamp>.<ext> for doc.
func FileName(doc Document, format Format) string {
	return fmt.Sprintf("thyroid-report-%s.%s", doc.GeneratedAt.UTC().Format("20060102-150405"), format.Extension())
}

// WriteFile renders doc into dir and returns the written path.
func WriteFile(ctx context.Context, dir string, doc Document, format Format) (string, error) {
	var buf bytes.Buffer
	if err := Render(ctx, &buf, doc, format); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(doc, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Exporter writes reports for completed sessions.
type Exporter struct {
	Dir    string
	Format Format
	Graph  flow.Graph
}

// Export writes the report for verdict. ok=false yields ErrNoVerdict and
// writes nothing.
func (e Exporter) Export(ctx context.Context, verdict risk.Verdict, ok bool) (string, error) {
	if !ok {
		return "", ErrNoVerdict
	}
	format := e.Format
	if format == "" {
		format = FormatHTML
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	return WriteFile(ctx, dir, Build(verdict, e.Graph), format)
}
