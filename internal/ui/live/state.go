package live

import "thyrocheck/internal/chat"

// State captures what the UI shows for the latest engine snapshot plus the
// local selection for the current step.
type State struct {
	Snapshot chat.Snapshot
	Seen     bool
	Cursor   int
	Selected map[string]bool
	// Status is a one-line notice, such as the export result.
	Status string
}

// Reduce applies snapshot to state. Snapshots older than the one already
// shown are ignored. Cursor and selection reset when the step changes.
func Reduce(state State, snapshot chat.Snapshot) State {
	if state.Seen && snapshot.Revision <= state.Snapshot.Revision {
		return state
	}
	stepChanged := !state.Seen ||
		snapshot.Epoch != state.Snapshot.Epoch ||
		snapshot.Step.ID != state.Snapshot.Step.ID
	if snapshot.Epoch != state.Snapshot.Epoch {
		state.Status = ""
	}
	state.Snapshot = snapshot
	state.Seen = true
	if stepChanged {
		state.Cursor = 0
		state.Selected = map[string]bool{}
	}
	return state
}

// MoveCursor moves the option cursor by delta, wrapping at the ends.
func MoveCursor(state State, delta int) State {
	count := len(state.Snapshot.Step.Options)
	if count == 0 {
		return state
	}
	state.Cursor = ((state.Cursor+delta)%count + count) % count
	return state
}

// Toggle flips the option under the cursor on a multi-choice step.
func Toggle(state State) State {
	options := state.Snapshot.Step.Options
	if len(options) == 0 || state.Cursor >= len(options) {
		return state
	}
	value := options[state.Cursor].Value
	selected := make(map[string]bool, len(state.Selected)+1)
	for k, v := range state.Selected {
		selected[k] = v
	}
	selected[value] = !selected[value]
	state.Selected = selected
	return state
}

// SelectedValues returns the toggled option values in option order.
func SelectedValues(state State) []string {
	values := []string{}
	for _, option := range state.Snapshot.Step.Options {
		if state.Selected[option.Value] {
			values = append(values, option.Value)
		}
	}
	return values
}
