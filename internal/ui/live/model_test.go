package live

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
	"thyrocheck/internal/testutil"
)

type fixture struct {
	engine    *chat.Engine
	scheduler *testutil.ManualScheduler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	scheduler := testutil.NewManualScheduler()
	engine := chat.New(flow.Default(),
		chat.WithScheduler(scheduler),
		chat.WithClock(testutil.NewFakeClock(time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC))),
		chat.WithIDGenerator(testutil.Sequence("m")),
	)
	engine.Start()
	return fixture{engine: engine, scheduler: scheduler}
}

// settle fires the pending transition and hands the new snapshot to m.
func (f fixture) settle(t *testing.T, m Model) Model {
	t.Helper()
	f.scheduler.FireAll()
	return update(t, m, EventMsg{Event: Event{Kind: EventSnapshot, Snapshot: f.engine.Snapshot()}})
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		model, ok := next.(Model)
		if !ok {
			t.Fatalf("unexpected model type %T", next)
		}
		m = model
	}
	return m
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func typed(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// TestChoiceCursorSubmitsOption verifies arrow and enter handling.
func TestChoiceCursorSubmitsOption(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.engine, nil, Options{NoColor: true})

	m = update(t, m, enter)
	if !f.engine.Snapshot().Computing {
		t.Fatalf("expected start answer to be submitted")
	}
	if !strings.Contains(m.View(), thinkingText) {
		t.Fatalf("expected thinking indicator, got %q", m.View())
	}
	m = f.settle(t, m)

	m = update(t, m, down, enter)
	f.scheduler.FireAll()
	if got := f.engine.Snapshot().Answers.Text(flow.StepGender); got != "female" {
		t.Fatalf("expected female, got %q", got)
	}
}

// TestInputIgnoredWhileComputing verifies keys do nothing during the delay.
func TestInputIgnoredWhileComputing(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.engine, nil, Options{NoColor: true})
	m = update(t, m, enter, down, enter)
	messages := f.engine.Snapshot().Messages
	if len(messages) != 2 {
		t.Fatalf("expected a single submission, got %d messages", len(messages))
	}
}

// TestTextInputSubmitsTypedValue verifies typed text reaches the engine.
func TestTextInputSubmitsTypedValue(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.engine, nil, Options{NoColor: true})
	m = update(t, m, enter)
	m = f.settle(t, m)
	m = update(t, m, enter)
	m = f.settle(t, m)

	m = update(t, m, enter)
	if f.engine.Snapshot().Computing {
		t.Fatalf("expected empty input to be rejected")
	}
	if m.State().Status == "" {
		t.Fatalf("expected a prompt to enter an answer")
	}
	m = update(t, m, typed("41"), enter)
	m = f.settle(t, m)
	if got := f.engine.Snapshot().Answers.Text(flow.StepAge); got != "41" {
		t.Fatalf("expected age 41, got %q", got)
	}
	if m.State().Snapshot.Step.ID != flow.StepFamilyHistory {
		t.Fatalf("expected family history step, got %s", m.State().Snapshot.Step.ID)
	}
}

// TestMultiChoiceToggles verifies space toggles and enter submits the set.
func TestMultiChoiceToggles(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.engine, nil, Options{NoColor: true})
	m = update(t, m, enter)
	m = f.settle(t, m)
	m = update(t, m, enter)
	m = f.settle(t, m)
	m = update(t, m, typed("30"), enter)
	m = f.settle(t, m)
	m = update(t, m, enter)
	m = f.settle(t, m)

	m = update(t, m, space, down, down, space, down, space, space)
	if !strings.Contains(m.View(), "[x] Unexplained weight loss") {
		t.Fatalf("expected first symptom checked, got %q", m.View())
	}
	m = update(t, m, enter)
	tokens := f.engine.Snapshot().Answers.Tokens(flow.StepSymptoms)
	if len(tokens) != 2 || tokens[0] != "weight_loss" || tokens[1] != "nervousness" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

// TestReduceIgnoresStaleRevisions verifies older snapshots are dropped.
func TestReduceIgnoresStaleRevisions(t *testing.T) {
	state := Reduce(State{}, chat.Snapshot{Revision: 5, Step: flow.Step{ID: "b"}})
	state = Reduce(state, chat.Snapshot{Revision: 4, Step: flow.Step{ID: "a"}})
	if state.Snapshot.Step.ID != "b" {
		t.Fatalf("expected stale snapshot to be ignored")
	}
	state.Cursor = 2
	state = Reduce(state, chat.Snapshot{Revision: 6, Step: flow.Step{ID: "b"}})
	if state.Cursor != 2 {
		t.Fatalf("expected cursor to survive same-step updates")
	}
	state = Reduce(state, chat.Snapshot{Revision: 7, Step: flow.Step{ID: "c"}})
	if state.Cursor != 0 {
		t.Fatalf("expected cursor reset on step change")
	}
}

// TestMoveCursorWraps verifies cursor wrap-around.
func TestMoveCursorWraps(t *testing.T) {
	step, _ := flow.Default().Lookup(flow.StepStart)
	state := Reduce(State{}, chat.Snapshot{Revision: 1, Step: step})
	state = MoveCursor(state, -1)
	if state.Cursor != len(step.Options)-1 {
		t.Fatalf("expected wrap to last option, got %d", state.Cursor)
	}
	state = MoveCursor(state, 1)
	if state.Cursor != 0 {
		t.Fatalf("expected wrap to first option, got %d", state.Cursor)
	}
}

// TestRestartKey verifies ctrl+r resets the session.
func TestRestartKey(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.engine, nil, Options{NoColor: true})
	m = update(t, m, enter)
	m = f.settle(t, m)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := len(m.State().Snapshot.Messages); got != 1 {
		t.Fatalf("expected fresh transcript, got %d messages", got)
	}
	if m.State().Snapshot.Step.ID != flow.StepStart {
		t.Fatalf("expected start step")
	}
}

// TestExportAtTerminal verifies ctrl+e exports and reports the path.
func TestExportAtTerminal(t *testing.T) {
	f := newFixture(t)
	var exported risk.Verdict
	export := func(_ context.Context, verdict risk.Verdict, ok bool) (string, error) {
		if !ok {
			t.Fatalf("expected a verdict")
		}
		exported = verdict
		return "/tmp/thyroid-report.html", nil
	}
	m := NewModel(f.engine, nil, Options{NoColor: true, Export: export})

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE}); cmd != nil {
		t.Fatalf("expected export to be unavailable before the verdict")
	}

	for _, values := range [][]string{{"yes"}, {"male"}, {"60"}, {"no"}, {"tremor", "fatigue", "sweating"}, {"no"}} {
		step := f.engine.Snapshot().Step
		value, text := chat.Answer(step, values...)
		f.engine.Submit(step.ID, value, text)
		f.scheduler.FireAll()
	}
	m = update(t, m, EventMsg{Event: Event{Kind: EventSnapshot, Snapshot: f.engine.Snapshot()}})
	if !strings.Contains(m.View(), "Moderate risk") {
		t.Fatalf("expected result card, got %q", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if cmd == nil {
		t.Fatalf("expected export command")
	}
	m = update(t, m, cmd())
	if exported.Level != risk.Moderate {
		t.Fatalf("unexpected exported verdict %s", exported.Level)
	}
	if m.State().Status != "Report saved to /tmp/thyroid-report.html" {
		t.Fatalf("unexpected status %q", m.State().Status)
	}
}

// TestControllerDropsAfterClose verifies late snapshots after Close are safe.
func TestControllerDropsAfterClose(t *testing.T) {
	controller := &Controller{events: make(chan Event, 1), done: make(chan struct{})}
	controller.OnSnapshot(chat.Snapshot{Revision: 1})
	controller.OnSnapshot(chat.Snapshot{Revision: 2})
	controller.Close()
	controller.Close()
	controller.OnSnapshot(chat.Snapshot{Revision: 3})
	event, ok := <-controller.events
	if !ok || event.Snapshot.Revision != 1 {
		t.Fatalf("expected first buffered snapshot, got %+v", event)
	}
}
