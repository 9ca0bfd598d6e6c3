package chat

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
	"thyrocheck/internal/testutil"
)

type harness struct {
	engine    *Engine
	scheduler *testutil.ManualScheduler
	clock     *testutil.FakeClock
}

func newHarness(t *testing.T, graph flow.Graph, opts ...Option) harness {
	t.Helper()
	scheduler := testutil.NewManualScheduler()
	clock := testutil.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	base := []Option{
		WithScheduler(scheduler),
		WithClock(clock),
		WithIDGenerator(testutil.Sequence("id")),
	}
	engine := New(graph, append(base, opts...)...)
	engine.Start()
	return harness{engine: engine, scheduler: scheduler, clock: clock}
}

// answerCurrent submits values for the current step and fires the delay.
func (h harness) answerCurrent(t *testing.T, values ...string) {
	t.Helper()
	snapshot := h.engine.Snapshot()
	value, text := Answer(snapshot.Step, values...)
	result := h.engine.Submit(snapshot.Step.ID, value, text)
	if !result.Accepted {
		t.Fatalf("answer for %s rejected: %s", snapshot.Step.ID, result.Reason)
	}
	h.scheduler.FireAll()
}

func (h harness) walkToLabs(t *testing.T, symptoms ...string) {
	t.Helper()
	h.answerCurrent(t, "yes")
	h.answerCurrent(t, "female")
	h.answerCurrent(t, "34")
	h.answerCurrent(t, "unknown")
	h.answerCurrent(t, symptoms...)
}

// TestStartEmitsSinglePrompt verifies a fresh session holds only the start
// prompt.
func TestStartEmitsSinglePrompt(t *testing.T) {
	h := newHarness(t, flow.Default())
	snapshot := h.engine.Snapshot()
	if len(snapshot.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(snapshot.Messages))
	}
	start, _ := flow.Default().Lookup(flow.StepStart)
	message := snapshot.Messages[0]
	if message.Origin != OriginSystem || message.Text != start.Prompt || message.StepID != flow.StepStart {
		t.Fatalf("unexpected start message: %+v", message)
	}
	if snapshot.Answers.Len() != 0 {
		t.Fatalf("expected empty answers")
	}
	if snapshot.Step.ID != flow.StepStart || !snapshot.AcceptsInput() {
		t.Fatalf("expected to await the start step, got %+v", snapshot.Step)
	}
}

// TestRestartResetsState verifies restart yields one message and no answers
// regardless of progress.
func TestRestartResetsState(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t, "tremor")
	h.answerCurrent(t, "no")
	if _, ok := h.engine.Verdict(); !ok {
		t.Fatalf("expected verdict before restart")
	}
	firstSession := h.engine.Snapshot().SessionID

	h.engine.Restart()
	snapshot := h.engine.Snapshot()
	if len(snapshot.Messages) != 1 || snapshot.Answers.Len() != 0 {
		t.Fatalf("expected clean session, got %d messages and %d answers", len(snapshot.Messages), snapshot.Answers.Len())
	}
	if snapshot.Verdict != nil {
		t.Fatalf("expected verdict to be discarded")
	}
	if _, ok := h.engine.Verdict(); ok {
		t.Fatalf("expected no verdict after restart")
	}
	if snapshot.SessionID == firstSession {
		t.Fatalf("expected a new session id")
	}
}

// TestSubmitStaleStepIsNoop verifies answers for other steps are ignored.
func TestSubmitStaleStepIsNoop(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.answerCurrent(t, "yes")
	before := h.engine.Snapshot()

	result := h.engine.Submit(flow.StepStart, answer.Single("yes"), "Yes")
	if result.Accepted || result.Reason != ReasonStaleStep {
		t.Fatalf("expected stale rejection, got %+v", result)
	}
	after := h.engine.Snapshot()
	if len(after.Messages) != len(before.Messages) || !after.Answers.Equal(before.Answers) {
		t.Fatalf("expected no state change")
	}
	if after.Revision != before.Revision {
		t.Fatalf("expected no new revision")
	}
}

// TestSubmitRejectsInvalidInput verifies blank text and unknown options.
func TestSubmitRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, flow.Default())
	cases := []struct {
		value  answer.Value
		text   string
		reason Reason
	}{
		{answer.Single("yes"), "   ", ReasonEmptyText},
		{answer.Single("perhaps"), "Perhaps", ReasonInvalidValue},
		{answer.Multi("yes"), "Yes", ReasonInvalidValue},
	}
	for _, tc := range cases {
		result := h.engine.Submit(flow.StepStart, tc.value, tc.text)
		if result.Accepted || result.Reason != tc.reason {
			t.Fatalf("expected %s, got %+v", tc.reason, result)
		}
	}
	h.answerCurrent(t, "yes")
	h.answerCurrent(t, "male")
	result := h.engine.Submit(flow.StepAge, answer.Single("  "), "age")
	if result.Reason != ReasonInvalidValue {
		t.Fatalf("expected blank input to be rejected, got %+v", result)
	}
	if got := len(h.engine.Snapshot().Messages); got != 5 {
		t.Fatalf("expected 5 messages, got %d", got)
	}
}

// TestSubmitWhileComputingIsRejected verifies a pending transition blocks a
// second answer.
func TestSubmitWhileComputingIsRejected(t *testing.T) {
	h := newHarness(t, flow.Default())
	if result := h.engine.Submit(flow.StepStart, answer.Single("yes"), "Yes"); !result.Accepted {
		t.Fatalf("expected first answer to be accepted")
	}
	snapshot := h.engine.Snapshot()
	if !snapshot.Computing || snapshot.AcceptsInput() {
		t.Fatalf("expected computing state")
	}
	if result := h.engine.Submit(flow.StepStart, answer.Single("no"), "No"); result.Reason != ReasonComputing {
		t.Fatalf("expected computing rejection, got %+v", result)
	}
	if got := len(h.engine.Snapshot().Messages); got != 2 {
		t.Fatalf("expected prompt and one user message, got %d", got)
	}
	if h.scheduler.LastDelay() != DefaultDelay {
		t.Fatalf("expected default delay, got %s", h.scheduler.LastDelay())
	}
}

// TestMessagesAlternateUserThenSystem verifies transcript ordering.
func TestMessagesAlternateUserThenSystem(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t, "tremor", "sweating")
	messages := h.engine.Snapshot().Messages
	if len(messages) != 11 {
		t.Fatalf("expected 11 messages, got %d", len(messages))
	}
	for i, message := range messages {
		want := OriginSystem
		if i%2 == 1 {
			want = OriginUser
		}
		if message.Origin != want {
			t.Fatalf("message %d: expected %s, got %s", i, want, message.Origin)
		}
	}
	if messages[10].StepID != flow.StepLabAvailable {
		t.Fatalf("expected lab question last, got %s", messages[10].StepID)
	}
	if messages[9].Text != "Selected: Excessive sweating, Hand tremor" {
		t.Fatalf("unexpected symptom summary: %q", messages[9].Text)
	}
}

// TestNoLabsPathProducesModerateVerdict covers three symptoms without labs.
func TestNoLabsPathProducesModerateVerdict(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t, "tremor", "sweating", "fatigue")
	h.answerCurrent(t, "no")

	snapshot := h.engine.Snapshot()
	if !snapshot.Terminal() {
		t.Fatalf("expected terminal step, got %s", snapshot.Step.ID)
	}
	verdict, ok := h.engine.Verdict()
	if !ok {
		t.Fatalf("expected verdict")
	}
	if verdict.Level != risk.Moderate || verdict.Labs != nil {
		t.Fatalf("unexpected verdict: level=%s labs=%v", verdict.Level, verdict.Labs)
	}
	last := snapshot.Messages[len(snapshot.Messages)-1]
	if last.Origin != OriginSystem || last.Text != verdict.Narrative || last.StepID != flow.StepFinal {
		t.Fatalf("expected verdict narrative as final message, got %+v", last)
	}
	if !verdict.Answers.Equal(snapshot.Answers) {
		t.Fatalf("expected verdict answers to match the answer set")
	}
	if !verdict.CreatedAt.Equal(h.clock.Now()) {
		t.Fatalf("expected verdict timestamp from clock")
	}
}

// TestLabPathProducesHighVerdict covers a suppressed TSH.
func TestLabPathProducesHighVerdict(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t)
	h.answerCurrent(t, "yes")
	for _, value := range []string{"0.1", "n/a", "n/a", "n/a", "n/a"} {
		h.answerCurrent(t, value)
	}
	verdict, ok := h.engine.Verdict()
	if !ok {
		t.Fatalf("expected verdict")
	}
	if verdict.Level != risk.High || verdict.Labs == nil || verdict.Labs.Level != risk.High {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
	if verdict.Symptoms.Count != 0 || verdict.Symptoms.Level != risk.Low {
		t.Fatalf("unexpected symptom assessment: %+v", verdict.Symptoms)
	}
	if len(verdict.Labs.Observations) != 1 {
		t.Fatalf("expected only TSH to be observed, got %d", len(verdict.Labs.Observations))
	}
}

// TestVerdictIsSnapshot verifies callers cannot alter the stored verdict.
func TestVerdictIsSnapshot(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t, "tremor")
	h.answerCurrent(t, "no")

	verdict, _ := h.engine.Verdict()
	verdict.Answers.Put(flow.StepSymptoms, answer.Multi("a", "b", "c"))
	again, _ := h.engine.Verdict()
	if got := again.Answers.Tokens(flow.StepSymptoms); len(got) != 1 {
		t.Fatalf("expected stored verdict to be unchanged, got %v", got)
	}
}

// TestTerminalIgnoresAnswers verifies nothing is accepted after the verdict.
func TestTerminalIgnoresAnswers(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.walkToLabs(t)
	h.answerCurrent(t, "no")
	before := h.engine.Snapshot()
	result := h.engine.Submit(flow.StepFinal, answer.Single("again"), "again")
	if result.Reason != ReasonTerminal {
		t.Fatalf("expected terminal rejection, got %+v", result)
	}
	if len(h.engine.Snapshot().Messages) != len(before.Messages) {
		t.Fatalf("expected no new messages")
	}
}

// TestRestartDiscardsPendingTransition verifies a timer firing after restart
// has no effect.
func TestRestartDiscardsPendingTransition(t *testing.T) {
	h := newHarness(t, flow.Default())
	if result := h.engine.Submit(flow.StepStart, answer.Single("yes"), "Yes"); !result.Accepted {
		t.Fatalf("expected answer to be accepted")
	}
	h.engine.Restart()
	if h.scheduler.Pending() != 0 {
		t.Fatalf("expected pending transition to be cancelled")
	}
	if fired := h.scheduler.FireIgnoringCancel(); fired != 1 {
		t.Fatalf("expected one queued call, got %d", fired)
	}
	snapshot := h.engine.Snapshot()
	if len(snapshot.Messages) != 1 || snapshot.Step.ID != flow.StepStart || snapshot.Computing {
		t.Fatalf("expected stale transition to be ignored, got %d messages at %s", len(snapshot.Messages), snapshot.Step.ID)
	}
}

// TestBranchWithoutMappingStalls verifies an unmapped branch value stops the
// conversation silently.
func TestBranchWithoutMappingStalls(t *testing.T) {
	graph, err := flow.New("ask", []flow.Step{
		{
			ID: "ask", Kind: flow.KindChoice, Prompt: "Labs?",
			Options: []flow.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}, {Value: "later", Label: "Later"}},
			Next:    flow.Branch(map[string]string{"yes": "end", "no": "end"}),
		},
		{ID: "end", Kind: flow.KindTerminal, Prompt: "Done"},
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	h := newHarness(t, graph)
	h.answerCurrent(t, "later")
	snapshot := h.engine.Snapshot()
	if !snapshot.Stalled || snapshot.Computing {
		t.Fatalf("expected stalled session")
	}
	if len(snapshot.Messages) != 2 || snapshot.Messages[1].Origin != OriginUser {
		t.Fatalf("expected only the user message to be appended")
	}
	if h.scheduler.Pending() != 0 {
		t.Fatalf("expected no scheduled transition")
	}
	if result := h.engine.Submit("ask", answer.Single("yes"), "Yes"); result.Reason != ReasonStalled {
		t.Fatalf("expected stalled rejection, got %+v", result)
	}
	h.engine.Restart()
	if h.engine.Snapshot().Stalled {
		t.Fatalf("expected restart to clear the stall")
	}
}

// TestUnknownGraphDegrades verifies an empty graph never panics.
func TestUnknownGraphDegrades(t *testing.T) {
	h := newHarness(t, flow.Graph{})
	snapshot := h.engine.Snapshot()
	if len(snapshot.Messages) != 0 || !snapshot.Stalled {
		t.Fatalf("expected stalled empty session")
	}
	if result := h.engine.Submit("", answer.Single("x"), "x"); result.Accepted {
		t.Fatalf("expected submission to be ignored")
	}
}

// TestObserversReceiveRevisions verifies every change is published in order.
func TestObserversReceiveRevisions(t *testing.T) {
	var (
		mu        sync.Mutex
		revisions []uint64
	)
	h := newHarness(t, flow.Default(), WithObserver(ObserverFunc(func(snapshot Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		revisions = append(revisions, snapshot.Revision)
	})))
	h.answerCurrent(t, "yes")

	mu.Lock()
	defer mu.Unlock()
	if len(revisions) != 3 {
		t.Fatalf("expected start, submit, and advance snapshots, got %v", revisions)
	}
	for i := 1; i < len(revisions); i++ {
		if revisions[i] <= revisions[i-1] {
			t.Fatalf("expected increasing revisions, got %v", revisions)
		}
	}
}

// TestSubscribeCanBeUndone verifies unsubscribed observers stop receiving.
func TestSubscribeCanBeUndone(t *testing.T) {
	h := newHarness(t, flow.Default())
	calls := 0
	unsubscribe := h.engine.Subscribe(ObserverFunc(func(Snapshot) { calls++ }))
	h.engine.Restart()
	unsubscribe()
	h.engine.Restart()
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

// TestWaitIdleWithTimer verifies the real timer path completes.
func TestWaitIdleWithTimer(t *testing.T) {
	engine := New(flow.Default(), WithDelay(5*time.Millisecond))
	engine.Start()
	value, text := Answer(engine.Snapshot().Step, "yes")
	if result := engine.Submit(flow.StepStart, value, text); !result.Accepted {
		t.Fatalf("expected answer to be accepted")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snapshot, err := engine.WaitIdle(ctx)
	if err != nil {
		t.Fatalf("wait idle: %v", err)
	}
	if snapshot.Step.ID != flow.StepGender || len(snapshot.Messages) != 3 {
		t.Fatalf("expected gender prompt, got %s with %d messages", snapshot.Step.ID, len(snapshot.Messages))
	}
}

// TestWaitIdleHonoursContext verifies WaitIdle returns when ctx is done.
func TestWaitIdleHonoursContext(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.engine.Submit(flow.StepStart, answer.Single("yes"), "Yes")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.engine.WaitIdle(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

// TestMultiAnswerEmptySelection verifies an empty selection is allowed.
func TestMultiAnswerEmptySelection(t *testing.T) {
	h := newHarness(t, flow.Default())
	h.answerCurrent(t, "yes")
	h.answerCurrent(t, "male")
	h.answerCurrent(t, "50")
	h.answerCurrent(t, "no")
	h.answerCurrent(t)
	snapshot := h.engine.Snapshot()
	if snapshot.Step.ID != flow.StepLabAvailable {
		t.Fatalf("expected lab question, got %s", snapshot.Step.ID)
	}
	if tokens := snapshot.Answers.Tokens(flow.StepSymptoms); len(tokens) != 0 {
		t.Fatalf("expected empty selection, got %v", tokens)
	}
	if text := snapshot.Messages[len(snapshot.Messages)-2].Text; text != NoneSelectedText {
		t.Fatalf("unexpected summary %q", text)
	}
}

// syncScheduler runs every call immediately on the caller's goroutine.
type syncScheduler struct{}

func (syncScheduler) AfterFunc(_ time.Duration, fn func()) func() bool {
	fn()
	return func() bool { return false }
}

// TestSubmitWithSynchronousScheduler verifies a scheduler may run the
// transition before AfterFunc returns.
func TestSubmitWithSynchronousScheduler(t *testing.T) {
	engine := New(flow.Default(), WithScheduler(syncScheduler{}), WithIDGenerator(testutil.Sequence("id")))
	engine.Start()

	done := make(chan Result, 1)
	go func() {
		value, text := Answer(engine.Snapshot().Step, "yes")
		done <- engine.Submit(flow.StepStart, value, text)
	}()
	select {
	case result := <-done:
		if !result.Accepted {
			t.Fatalf("expected answer to be accepted, got %s", result.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submit did not return")
	}

	snapshot := engine.Snapshot()
	if snapshot.Computing || snapshot.Step.ID != flow.StepGender || len(snapshot.Messages) != 3 {
		t.Fatalf("expected gender prompt, got %s with %d messages", snapshot.Step.ID, len(snapshot.Messages))
	}
	value, text := Answer(snapshot.Step, "female")
	if result := engine.Submit(flow.StepGender, value, text); !result.Accepted {
		t.Fatalf("expected second answer to be accepted, got %s", result.Reason)
	}
	if step := engine.Snapshot().Step.ID; step != flow.StepAge {
		t.Fatalf("expected age step, got %s", step)
	}
}

// TestNewLogsNothingByDefault verifies an engine without WithLogger does not
// write to the process-wide logger.
func TestNewLogsNothingByDefault(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	engine := New(flow.Default(), WithScheduler(testutil.NewManualScheduler()))
	engine.Start()
	engine.Submit("nowhere", answer.Single("yes"), "Yes")
	if buf.Len() != 0 {
		t.Fatalf("expected no default log output, got %q", buf.String())
	}
}
