package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/logging"
	"thyrocheck/internal/risk"
)

// Engine drives one conversation over a flow graph. Start, Submit, and
// Restart are its only mutating operations.
type Engine struct {
	graph     flow.Graph
	evaluator risk.Evaluator
	scheduler Scheduler
	clock     Clock
	delay     time.Duration
	logger    *slog.Logger
	newID     func() string

	mu         sync.Mutex
	observers  []subscription
	nextSub    int
	sessionID  string
	epoch      uint64
	revision   uint64
	transition uint64
	current    string
	answers    answer.Set
	messages   []Message
	verdict    *risk.Verdict
	computing  bool
	stalled    bool
	cancel     func() bool
	idle       chan struct{}
}

// New returns an engine for graph. Call Start before submitting answers.
func New(graph flow.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:     graph,
		evaluator: risk.NewEvaluator(),
		scheduler: timerScheduler{},
		clock:     systemClock{},
		delay:     DefaultDelay,
		logger:    logging.Discard(),
		newID:     uuid.NewString,
		answers:   answer.NewSet(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "chat.engine")
	return e
}

// Graph returns the flow the engine walks.
func (e *Engine) Graph() flow.Graph {
	return e.graph
}

type subscription struct {
	id       int
	observer Observer
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run on the goroutine that changed the state and must not block.
func (e *Engine) Subscribe(observer Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subscribeLocked(observer)
}

func (e *Engine) subscribeLocked(observer Observer) func() {
	e.nextSub++
	id := e.nextSub
	e.observers = append(e.observers, subscription{id: id, observer: observer})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.observers {
			if sub.id == id {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// Start discards any previous session and emits the start prompt. A pending
// transition from the previous session is cancelled and, if its timer has
// already fired, ignored.
func (e *Engine) Start() {
	e.mu.Lock()
	e.epoch++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.finishComputing()
	e.sessionID = e.newID()
	e.answers = answer.NewSet()
	e.messages = nil
	e.verdict = nil
	e.stalled = false
	e.current = e.graph.Start()

	if step, ok := e.graph.Lookup(e.current); ok {
		e.appendMessage(OriginSystem, step.Prompt, step.ID)
	} else {
		e.stalled = true
		e.logger.Warn("start step not found", "session_id", e.sessionID, "step_id", e.current)
	}
	e.logger.Info("session started", "session_id", e.sessionID, "epoch", e.epoch)
	e.publishLocked()
}

// Restart is an alias for Start.
func (e *Engine) Restart() {
	e.Start()
}

// Submit records an answer for stepID. displayText is what the transcript
// shows for the user's message. Submissions that do not target the current
// step, arrive while the next prompt is pending, or fail input validation
// change nothing.
func (e *Engine) Submit(stepID string, value answer.Value, displayText string) Result {
	e.mu.Lock()
	result, next := e.submitLocked(stepID, value, displayText)
	if !result.Accepted {
		e.logger.Debug("answer ignored", "session_id", e.sessionID, "step_id", stepID, "reason", string(result.Reason))
		e.mu.Unlock()
		return result
	}
	e.publishLocked()
	if next != nil {
		e.schedule(*next)
	}
	return result
}

// pendingTransition is a scheduled move to the next step.
type pendingTransition struct {
	epoch   uint64
	seq     uint64
	nextID  string
	answers answer.Set
}

// schedule hands t to the scheduler without holding e.mu, so a scheduler
// may run the transition synchronously.
func (e *Engine) schedule(t pendingTransition) {
	cancel := e.scheduler.AfterFunc(e.delay, func() {
		e.advance(t.epoch, t.seq, t.nextID, t.answers)
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if t.epoch == e.epoch && t.seq == e.transition && e.computing {
		e.cancel = cancel
		return
	}
	if t.epoch != e.epoch {
		cancel()
	}
}

func (e *Engine) submitLocked(stepID string, value answer.Value, displayText string) (Result, *pendingTransition) {
	switch {
	case e.stalled:
		return rejected(ReasonStalled), nil
	case e.computing:
		return rejected(ReasonComputing), nil
	case stepID != e.current:
		return rejected(ReasonStaleStep), nil
	}
	step, ok := e.graph.Lookup(stepID)
	if !ok {
		return rejected(ReasonUnknownStep), nil
	}
	if step.IsTerminal() {
		return rejected(ReasonTerminal), nil
	}
	text := strings.TrimSpace(displayText)
	if text == "" {
		return rejected(ReasonEmptyText), nil
	}
	normalized, ok := normalizeValue(step, value)
	if !ok {
		return rejected(ReasonInvalidValue), nil
	}

	e.appendMessage(OriginUser, text, step.ID)
	e.answers.Put(step.ID, normalized)

	nextID, ok := step.Next.Resolve(normalized.Text())
	if !ok {
		e.stalled = true
		e.logger.Warn("no successor for answer", "session_id", e.sessionID, "step_id", step.ID, "value", normalized.Text())
		return Result{Accepted: true, Reason: ReasonAccepted}, nil
	}

	e.computing = true
	e.idle = make(chan struct{})
	e.transition++
	return Result{Accepted: true, Reason: ReasonAccepted}, &pendingTransition{
		epoch:   e.epoch,
		seq:     e.transition,
		nextID:  nextID,
		answers: e.answers.Clone(),
	}
}

// advance applies a pending transition unless the session was reset since
// it was scheduled.
func (e *Engine) advance(epoch, seq uint64, nextID string, answers answer.Set) {
	e.mu.Lock()
	if epoch != e.epoch || seq != e.transition || !e.computing {
		e.logger.Debug("discarding stale transition", "epoch", epoch, "current_epoch", e.epoch)
		e.mu.Unlock()
		return
	}
	e.cancel = nil
	e.finishComputing()

	step, ok := e.graph.Lookup(nextID)
	if !ok {
		e.stalled = true
		e.logger.Warn("successor step not found", "session_id", e.sessionID, "step_id", nextID)
		e.publishLocked()
		return
	}

	text := step.Prompt
	if step.IsTerminal() {
		verdict := e.evaluator.Evaluate(answers, e.clock.Now())
		e.verdict = &verdict
		text = verdict.Narrative
		e.logger.Info("verdict computed",
			"session_id", e.sessionID,
			"level", verdict.Level.String(),
			"symptoms", verdict.Symptoms.Count,
			"labs", verdict.Labs != nil,
		)
	}
	e.current = step.ID
	e.appendMessage(OriginSystem, text, step.ID)
	e.publishLocked()
}

// Snapshot returns a copy of the current session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Verdict returns the stored verdict once the terminal step was reached.
func (e *Engine) Verdict() (risk.Verdict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.verdict == nil {
		return risk.Verdict{}, false
	}
	return e.verdict.Clone(), true
}

// WaitIdle blocks until no transition is pending and returns the state at
// that moment.
func (e *Engine) WaitIdle(ctx context.Context) (Snapshot, error) {
	for {
		e.mu.Lock()
		if !e.computing {
			snapshot := e.snapshotLocked()
			e.mu.Unlock()
			return snapshot, nil
		}
		idle := e.idle
		e.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

func (e *Engine) finishComputing() {
	e.computing = false
	if e.idle != nil {
		close(e.idle)
		e.idle = nil
	}
}

func (e *Engine) appendMessage(origin Origin, text, stepID string) {
	e.messages = append(e.messages, Message{
		ID:     e.newID(),
		Origin: origin,
		Text:   text,
		StepID: stepID,
		At:     e.clock.Now(),
	})
}

func (e *Engine) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		SessionID: e.sessionID,
		Epoch:     e.epoch,
		Revision:  e.revision,
		Messages:  append([]Message(nil), e.messages...),
		Answers:   e.answers.Clone(),
		Computing: e.computing,
		Stalled:   e.stalled,
	}
	if step, ok := e.graph.Lookup(e.current); ok {
		snapshot.Step = step
	}
	if e.verdict != nil {
		verdict := e.verdict.Clone()
		snapshot.Verdict = &verdict
	}
	return snapshot
}

// publishLocked bumps the revision, releases the lock, and notifies
// observers outside of it.
func (e *Engine) publishLocked() {
	e.revision++
	snapshot := e.snapshotLocked()
	observers := append([]subscription(nil), e.observers...)
	e.mu.Unlock()
	for _, sub := range observers {
		sub.observer.OnSnapshot(snapshot)
	}
}
