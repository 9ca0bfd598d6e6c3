package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/config"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/report"
	"thyrocheck/internal/risk"
)

// now stamps verdicts produced by evaluate.
var now = time.Now

// runEvaluate builds the handler for the evaluate command.
func runEvaluate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flowOverride := fs.String("flow", "", "Path to the flow the answers belong to (default: built-in questionnaire)")
		format := fs.String("format", "text", "Report format: text|json|html")
		outputDir := fs.String("output-dir", "", "Write the report into this directory instead of stdout")
		if code, ok := parseFlags(cmd, fs, args, 1, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() == 0 {
			fmt.Fprintln(stderr, "Missing <answers file>")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		reportFormat, err := report.ParseFormat(*format)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid report format: %v\n", err)
			return ExitUsage
		}

		path, err := flowPath(config.Loaded{}, *flowOverride)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load flow: %v\n", err)
			return ExitError
		}
		graph, err := loadGraph(path)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load flow:\n%v\n", err)
			return ExitError
		}
		answers, err := readAnswers(fs.Arg(0), graph)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read answers:\n%v\n", err)
			return ExitError
		}

		verdict := risk.Evaluate(answers, now().UTC())
		doc := report.Build(verdict, graph)
		ctx := context.Background()
		if *outputDir != "" {
			written, err := report.WriteFile(ctx, *outputDir, doc, reportFormat)
			if err != nil {
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Risk level: %s\n", verdict.Level)
			fmt.Fprintf(stdout, "Report: %s\n", written)
			return ExitOK
		}
		if err := report.Render(ctx, stdout, doc, reportFormat); err != nil {
			fmt.Fprintf(stderr, "Render failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

// readAnswers decodes an answer file keyed by step id. Values are strings
// for choice and input steps and lists for multi-choice steps.
func readAnswers(path string, graph flow.Graph) (answer.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return answer.Set{}, fmt.Errorf("read answers: %w", err)
	}
	var set answer.Set
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&set); err != nil {
			return answer.Set{}, fmt.Errorf("parse answers: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &set); err != nil {
			return answer.Set{}, fmt.Errorf("parse answers: %w", err)
		}
	}

	var unknown []string
	for _, id := range set.Keys() {
		if _, ok := graph.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return answer.Set{}, fmt.Errorf("unknown steps: %s", strings.Join(unknown, ", "))
	}
	return set, nil
}
