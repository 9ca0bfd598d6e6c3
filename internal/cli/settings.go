package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"thyrocheck/internal/config"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/logging"
	"thyrocheck/internal/risk"
)

// envLookup lets tests replace environment access during config resolution.
var envLookup config.LookupFunc

// loadSettings resolves the config file, or defaults when none is found.
func loadSettings(configPath string) (config.Loaded, error) {
	opts := config.ResolveOptions{Lookup: envLookup}
	if path := strings.TrimSpace(configPath); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return config.Loaded{}, fmt.Errorf("resolve config path: %w", err)
		}
		opts.Path = abs
	}
	return config.Resolve(opts)
}

// loadGraph loads the flow at path, or the built-in flow when path is
// empty, and checks that the evaluator can read it.
func loadGraph(path string) (flow.Graph, error) {
	graph := flow.Default()
	if path != "" {
		loaded, err := flow.Load(path)
		if err != nil {
			return flow.Graph{}, err
		}
		graph = loaded
	}
	if err := risk.DefaultFields().Check(graph); err != nil {
		return flow.Graph{}, err
	}
	return graph, nil
}

// flowPath prefers the --flow flag over the configured path.
func flowPath(loaded config.Loaded, override string) (string, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return loaded.FlowPath(), nil
	}
	abs, err := filepath.Abs(override)
	if err != nil {
		return "", fmt.Errorf("resolve flow path: %w", err)
	}
	return abs, nil
}

// openLogger builds the process logger. With a log file configured, logs go
// there; otherwise they go to fallback, and nil fallback discards them.
func openLogger(cfg config.LogConfig, root string, fallback io.Writer, verbose bool) (*slog.Logger, func(), error) {
	opts := logging.Options{Level: cfg.Level, Format: cfg.Format}
	if verbose {
		opts.Level = "debug"
	}
	closeFn := func() {}
	w := fallback
	if cfg.File != "" {
		path := config.ResolvePath(root, cfg.File)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}
	if w == nil {
		return logging.Discard(), closeFn, nil
	}
	logger, err := logging.New(w, opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}
