package live

import (
	"context"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/chat"
	"thyrocheck/internal/risk"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventSnapshot delivers a new engine state.
	EventSnapshot EventKind = iota
	// EventExported reports the outcome of a report export.
	EventExported
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	Snapshot chat.Snapshot
	Path     string
	Err      error
}

// Session is the part of the engine the UI drives.
type Session interface {
	Snapshot() chat.Snapshot
	Submit(stepID string, value answer.Value, displayText string) chat.Result
	Restart()
	Verdict() (risk.Verdict, bool)
}

// ExportFunc writes the report for a verdict and returns its path.
type ExportFunc func(ctx context.Context, verdict risk.Verdict, ok bool) (string, error)
