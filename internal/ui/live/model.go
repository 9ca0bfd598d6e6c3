package live

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/report"
)

// Model renders the questionnaire as a chat in the terminal.
type Model struct {
	session  Session
	export   ExportFunc
	state    State
	events   <-chan Event
	keys     keyMap
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	width    int
	noColor  bool
}

// Options configures the live UI model.
type Options struct {
	NoColor bool
	Export  ExportFunc
}

// NewModel constructs a model over session. events may be nil when the
// caller feeds EventMsg values directly.
func NewModel(session Session, events <-chan Event, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Type your answer"
	input.CharLimit = 64
	input.Prompt = "> "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		session:  session,
		export:   opts.Export,
		events:   events,
		keys:     defaultKeys(),
		viewport: viewport.New(80, 16),
		input:    input,
		spinner:  spin,
		width:    80,
		noColor:  opts.NoColor,
	}
	m = m.apply(session.Snapshot())
	return m
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// Init starts the spinner and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.spinner.Tick, textinput.Blink)
}

// Update consumes keys, engine snapshots, and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.viewport.Width = typed.Width
		m.viewport.Height = max(typed.Height-footerHeight, 3)
		m.input.Width = max(typed.Width-4, 10)
		m.refreshTranscript()
		return m, nil
	case EventMsg:
		m = m.applyEvent(typed.Event)
		return m, waitForEvent(m.events)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.session.Restart()
		m = m.apply(m.session.Snapshot())
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	}

	snapshot := m.state.Snapshot
	if !snapshot.AcceptsInput() {
		return m, nil
	}
	step := snapshot.Step

	switch step.Kind {
	case flow.KindInput:
		if key.Matches(msg, m.keys.Submit) {
			return m.submit(chat.TextAnswer(m.input.Value()))
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case flow.KindChoice:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.state = MoveCursor(m.state, -1)
		case key.Matches(msg, m.keys.Down):
			m.state = MoveCursor(m.state, 1)
		case key.Matches(msg, m.keys.Submit):
			if m.state.Cursor < len(step.Options) {
				return m.submit(chat.ChoiceAnswer(step, step.Options[m.state.Cursor].Value))
			}
		}
	case flow.KindMultiChoice:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.state = MoveCursor(m.state, -1)
		case key.Matches(msg, m.keys.Down):
			m.state = MoveCursor(m.state, 1)
		case key.Matches(msg, m.keys.Toggle):
			m.state = Toggle(m.state)
		case key.Matches(msg, m.keys.Submit):
			return m.submit(chat.MultiAnswer(step, SelectedValues(m.state)))
		}
	}
	return m, nil
}

func (m Model) submit(value answer.Value, text string) (tea.Model, tea.Cmd) {
	result := m.session.Submit(m.state.Snapshot.Step.ID, value, text)
	if !result.Accepted {
		if result.Reason == chat.ReasonEmptyText || result.Reason == chat.ReasonInvalidValue {
			m.state.Status = "Please enter an answer."
		}
		return m, nil
	}
	m.input.SetValue("")
	m.state.Status = ""
	m = m.apply(m.session.Snapshot())
	return m, m.spinner.Tick
}

func (m Model) exportCmd() tea.Cmd {
	if m.export == nil || !m.state.Snapshot.Terminal() {
		return nil
	}
	session := m.session
	export := m.export
	return func() tea.Msg {
		verdict, ok := session.Verdict()
		path, err := export(context.Background(), verdict, ok)
		return EventMsg{Event: Event{Kind: EventExported, Path: path, Err: err}}
	}
}

func (m Model) applyEvent(event Event) Model {
	switch event.Kind {
	case EventSnapshot:
		return m.apply(event.Snapshot)
	case EventExported:
		switch {
		case errors.Is(event.Err, report.ErrNoVerdict):
			m.state.Status = "Nothing to export yet."
		case event.Err != nil:
			m.state.Status = "Export failed: " + event.Err.Error()
		default:
			m.state.Status = "Report saved to " + event.Path
		}
	}
	return m
}

// apply reduces snapshot into the model and refreshes derived widgets.
func (m Model) apply(snapshot chat.Snapshot) Model {
	before := m.state.Snapshot.Step.ID
	m.state = Reduce(m.state, snapshot)
	if m.state.Snapshot.Step.ID != before {
		m.input.SetValue("")
	}
	if m.state.Snapshot.Step.Kind == flow.KindInput && m.state.Snapshot.AcceptsInput() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.refreshTranscript()
	return m
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(renderTranscript(m.state.Snapshot.Messages, m.width, m.noColor))
	m.viewport.GotoBottom()
}

// View renders the transcript followed by the input area.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.noColor),
		m.viewport.View(),
		m.renderInput(),
		renderStatus(m.state.Status, m.noColor),
		renderHelp(m.state.Snapshot, m.noColor),
	)
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}
