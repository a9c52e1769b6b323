package service

import "context"

// SessionLimiter bounds the number of grading sessions that may hold a
// sandbox at the same time. Admission control lives here, above the
// executor, so the sandbox itself stays free of shared state.
type SessionLimiter struct {
	slots chan struct{}
}

// NewSessionLimiter creates a limiter with the given capacity. A capacity
// of zero or less means unlimited.
func NewSessionLimiter(capacity int) *SessionLimiter {
	if capacity <= 0 {
		return &SessionLimiter{}
	}
	return &SessionLimiter{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or the context is cancelled.
func (l *SessionLimiter) Acquire(ctx context.Context) error {
	if l == nil || l.slots == nil {
		return nil
	}
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot acquired earlier.
func (l *SessionLimiter) Release() {
	if l == nil || l.slots == nil {
		return
	}
	<-l.slots
}
