package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk flow schema.
type Document struct {
	Version int        `json:"version" yaml:"version"`
	Start   string     `json:"start" yaml:"start"`
	Steps   []StepSpec `json:"steps" yaml:"steps"`
}

// StepSpec is the on-disk form of a step. Next and Branch are exclusive.
type StepSpec struct {
	ID      string            `json:"id" yaml:"id"`
	Kind    Kind              `json:"kind" yaml:"kind"`
	Prompt  string            `json:"prompt" yaml:"prompt"`
	Options []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Next    string            `json:"next,omitempty" yaml:"next,omitempty"`
	Branch  map[string]string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Load reads, parses, and validates a flow file.
func Load(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read flow: %w", err)
	}
	return Parse(data, formatForPath(path))
}

// Parse decodes and validates a flow document. format is "json" or "yaml".
func Parse(data []byte, format string) (Graph, error) {
	var (
		doc Document
		err error
	)
	if format == "json" {
		doc, err = parseJSONDocument(data)
	} else {
		doc, err = parseYAMLDocument(data)
	}
	if err != nil {
		return Graph{}, err
	}
	return Compile(doc)
}

// Compile normalizes and validates a decoded document.
func Compile(doc Document) (Graph, error) {
	collector := &issueCollector{}
	if doc.Version == 0 {
		collector.add("version", "is required")
	} else if doc.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", doc.Version))
	}

	steps := make([]Step, 0, len(doc.Steps))
	for i, spec := range doc.Steps {
		prefix := fmt.Sprintf("steps[%d]", i)
		step := Step{
			ID:     strings.TrimSpace(spec.ID),
			Kind:   Kind(strings.TrimSpace(string(spec.Kind))),
			Prompt: strings.TrimSpace(spec.Prompt),
		}
		for _, option := range spec.Options {
			step.Options = append(step.Options, Option{
				Value: strings.TrimSpace(option.Value),
				Label: strings.TrimSpace(option.Label),
			})
		}
		next := strings.TrimSpace(spec.Next)
		switch {
		case next != "" && len(spec.Branch) > 0:
			collector.add(prefix, "next and branch are mutually exclusive")
		case len(spec.Branch) > 0:
			table := make(map[string]string, len(spec.Branch))
			for value, id := range spec.Branch {
				table[strings.TrimSpace(value)] = strings.TrimSpace(id)
			}
			step.Next = Branch(table)
		case next != "":
			step.Next = Direct(next)
		}
		steps = append(steps, step)
	}

	start := strings.TrimSpace(doc.Start)
	validateSteps(start, steps, collector)
	if err := collector.result(); err != nil {
		return Graph{}, err
	}
	return build(doc.Version, start, steps), nil
}

func formatForPath(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return "json"
	}
	return "yaml"
}

func parseJSONDocument(data []byte) (Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse json: %w", err)
	}
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return Document{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Document{}, fmt.Errorf("parse json: %w", err)
	}
	return doc, nil
}

func parseYAMLDocument(data []byte) (Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return Document{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}
