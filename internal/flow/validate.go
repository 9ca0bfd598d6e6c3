package flow

import (
	"fmt"
	"strings"
)

// Issue captures a validation problem in a flow definition.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("flow validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Validate re-checks a graph. Graphs returned by New and Load are already
// valid; this is for callers that want the check before first use.
func Validate(graph Graph) error {
	collector := &issueCollector{}
	validateSteps(graph.start, graph.Steps(), collector)
	return collector.result()
}

// validateSteps checks ids, kinds, options, successors, the terminal step,
// reachability, and acyclicity.
func validateSteps(start string, steps []Step, collector *issueCollector) {
	if len(steps) == 0 {
		collector.add("steps", "must include at least one entry")
		return
	}

	index := map[string]int{}
	for i, step := range steps {
		prefix := fmt.Sprintf("steps[%d]", i)
		if step.ID == "" {
			collector.add(prefix+".id", "is required")
		} else if _, exists := index[step.ID]; exists {
			collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", step.ID))
		} else {
			index[step.ID] = i
		}
	}

	start = strings.TrimSpace(start)
	if start == "" {
		collector.add("start", "is required")
	} else if _, ok := index[start]; !ok {
		collector.add("start", fmt.Sprintf("unknown step %q", start))
	}

	terminals := 0
	for i, step := range steps {
		prefix := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(step.Prompt) == "" {
			collector.add(prefix+".prompt", "is required")
		}
		if !step.Kind.Valid() {
			collector.add(prefix+".kind", fmt.Sprintf("unsupported kind %q", step.Kind))
			continue
		}
		validateOptions(prefix, step, collector)

		if step.IsTerminal() {
			terminals++
			if !step.Next.IsNone() {
				collector.add(prefix+".next", "terminal step must not have a successor")
			}
			continue
		}
		if step.Next.IsNone() {
			collector.add(prefix+".next", "non-terminal step requires next or branch")
			continue
		}
		if step.Next.IsBranch() {
			if step.Kind != KindChoice {
				collector.add(prefix+".branch", "only choice steps may branch")
			}
			for _, value := range step.Next.BranchValues() {
				if _, ok := step.Option(value); !ok {
					collector.add(prefix+".branch", fmt.Sprintf("value %q is not an option", value))
				}
			}
		}
		for _, target := range step.Next.Targets() {
			if _, ok := index[target]; !ok {
				collector.add(prefix+".next", fmt.Sprintf("unknown step %q", target))
			}
		}
	}
	if terminals != 1 {
		collector.add("steps", fmt.Sprintf("expected exactly one terminal step, found %d", terminals))
	}

	if len(collector.issues) > 0 {
		return
	}
	validateShape(start, steps, index, collector)
}

func validateOptions(prefix string, step Step, collector *issueCollector) {
	if !step.Kind.HasOptions() {
		if len(step.Options) > 0 {
			collector.add(prefix+".options", fmt.Sprintf("%s steps must not have options", step.Kind))
		}
		return
	}
	if len(step.Options) == 0 {
		collector.add(prefix+".options", "must include at least one entry")
		return
	}
	seen := map[string]struct{}{}
	for i, option := range step.Options {
		field := fmt.Sprintf("%s.options[%d]", prefix, i)
		if option.Value == "" {
			collector.add(field+".value", "is required")
		} else if _, exists := seen[option.Value]; exists {
			collector.add(field+".value", fmt.Sprintf("duplicate value %q", option.Value))
		} else {
			seen[option.Value] = struct{}{}
		}
		if strings.TrimSpace(option.Label) == "" {
			collector.add(field+".label", "is required")
		}
	}
}

// validateShape walks the graph from start, reporting cycles and
// unreachable steps.
func validateShape(start string, steps []Step, index map[string]int, collector *issueCollector) {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(steps))
	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case active:
			collector.add(fmt.Sprintf("steps[%d].next", index[id]), fmt.Sprintf("cycle through step %q", id))
			return false
		case done:
			return true
		}
		state[id] = active
		for _, target := range steps[index[id]].Next.Targets() {
			if !visit(target) {
				return false
			}
		}
		state[id] = done
		return true
	}
	if !visit(start) {
		return
	}
	for i, step := range steps {
		if state[step.ID] != done {
			collector.add(fmt.Sprintf("steps[%d]", i), fmt.Sprintf("step %q is unreachable from %q", step.ID, start))
		}
	}
}
