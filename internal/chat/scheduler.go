package chat

import "time"

// DefaultDelay is the pause before the next prompt appears.
const DefaultDelay = 500 * time.Millisecond

// Scheduler runs fn after d. The returned function cancels the call and
// reports whether it was still pending. The engine never holds its lock while
// calling AfterFunc, so fn may run before AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func() bool)
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	timer := time.AfterFunc(d, fn)
	return timer.Stop
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
