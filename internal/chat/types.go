package chat

import (
	"time"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
)

// Origin identifies who sent a message.
type Origin string

const (
	// OriginUser marks messages typed or chosen by the user.
	OriginUser Origin = "user"
	// OriginSystem marks prompts and results emitted by the engine.
	OriginSystem Origin = "system"
)

// Message is one transcript entry.
type Message struct {
	ID     string    `json:"id"`
	Origin Origin    `json:"origin"`
	Text   string    `json:"text"`
	StepID string    `json:"step_id"`
	At     time.Time `json:"at"`
}

// Reason explains why a submission was or was not applied.
type Reason string

const (
	ReasonAccepted     Reason = "accepted"
	ReasonStaleStep    Reason = "stale_step"
	ReasonComputing    Reason = "computing"
	ReasonTerminal     Reason = "terminal"
	ReasonStalled      Reason = "stalled"
	ReasonEmptyText    Reason = "empty_text"
	ReasonInvalidValue Reason = "invalid_value"
	ReasonUnknownStep  Reason = "unknown_step"
)

// Result reports the outcome of Submit.
type Result struct {
	Accepted bool
	Reason   Reason
}

func rejected(reason Reason) Result {
	return Result{Reason: reason}
}

// Snapshot is a copy of the session state handed to render sinks.
//
// Revision increases with every change; snapshots may reach observers out of
// order, so observers keep the highest revision they have seen.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	Epoch     uint64        `json:"epoch"`
	Revision  uint64        `json:"revision"`
	Step      flow.Step     `json:"step"`
	Messages  []Message     `json:"messages"`
	Answers   answer.Set    `json:"answers"`
	Computing bool          `json:"computing"`
	Stalled   bool          `json:"stalled"`
	Verdict   *risk.Verdict `json:"verdict,omitempty"`
}

// Terminal reports whether the session reached the terminal step.
func (s Snapshot) Terminal() bool {
	return s.Step.IsTerminal()
}

// AcceptsInput reports whether a render sink should enable submission.
func (s Snapshot) AcceptsInput() bool {
	return s.Step.ID != "" && !s.Computing && !s.Stalled && !s.Terminal()
}

// Observer receives snapshots after every state change.
type Observer interface {
	OnSnapshot(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

// OnSnapshot calls f.
func (f ObserverFunc) OnSnapshot(snapshot Snapshot) {
	f(snapshot)
}
