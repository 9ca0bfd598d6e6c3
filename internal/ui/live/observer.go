package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"thyrocheck/internal/chat"
)

// Controller runs the live UI and implements chat.Observer.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
	err     error
}

// ProgramOptions selects the terminal streams.
type ProgramOptions struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Start launches a live UI controller for session.
func Start(session Session, opts Options, program ProgramOptions) *Controller {
	if program.Output == nil {
		program.Output = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(session, events, opts)
	teaOpts := []tea.ProgramOption{tea.WithOutput(program.Output)}
	if program.Input != nil {
		teaOpts = append(teaOpts, tea.WithInput(program.Input))
	}
	if program.AltScreen {
		teaOpts = append(teaOpts, tea.WithAltScreen())
	}
	controller := &Controller{
		events:  events,
		program: tea.NewProgram(model, teaOpts...),
		done:    make(chan struct{}),
	}
	go func() {
		_, controller.err = controller.program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Wait blocks until the UI has exited and returns the program error.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// OnSnapshot forwards engine state to the UI.
func (c *Controller) OnSnapshot(snapshot chat.Snapshot) {
	c.send(Event{Kind: EventSnapshot, Snapshot: snapshot})
}

// send enqueues an event without blocking the caller. A dropped snapshot is
// superseded by the next one.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
