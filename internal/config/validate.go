package config

import (
	"fmt"
	"os"
	"strings"

	"thyrocheck/internal/logging"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

// add records a new validation issue.
func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// result returns a ValidationError when issues are present.
func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

var (
	uiModes       = []string{"auto", "live", "plain"}
	reportFormats = []string{"text", "json", "html"}
)

// Validate checks cfg. Relative paths are resolved against root.
func Validate(cfg *Config, root string) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if path := strings.TrimSpace(cfg.Flow.Path); path != "" {
		resolved := ResolvePath(root, path)
		info, err := os.Stat(resolved)
		switch {
		case err != nil:
			collector.add("flow.path", fmt.Sprintf("cannot read %q", resolved))
		case info.IsDir():
			collector.add("flow.path", fmt.Sprintf("%q is a directory", resolved))
		}
	}

	if cfg.Chat.ThinkingDelay < 0 {
		collector.add("chat.thinking_delay", "must not be negative")
	}
	if !oneOf(cfg.UI.Mode, uiModes) {
		collector.add("ui.mode", fmt.Sprintf("must be one of %s", strings.Join(uiModes, ", ")))
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		collector.add("server.addr", "is required")
	}
	if strings.TrimSpace(cfg.Report.OutputDir) == "" {
		collector.add("report.output_dir", "is required")
	}
	if !oneOf(cfg.Report.Format, reportFormats) {
		collector.add("report.format", fmt.Sprintf("must be one of %s", strings.Join(reportFormats, ", ")))
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		collector.add("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(cfg.Log.Format); err != nil {
		collector.add("log.format", err.Error())
	}

	return collector.result()
}

func oneOf(value string, allowed []string) bool {
	value = strings.TrimSpace(value)
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
