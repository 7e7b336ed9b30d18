// Package session implements the single-form state machine:
// idle --submit--> pending --resolve--> idle (with result or error).
package session

import (
	"context"
	"errors"
	"sync"

	"symptom-checker-go/internal/model"
)

// ErrBusy is returned when a submission arrives while one is pending.
var ErrBusy = errors.New("session: a check is already in progress")

// BusyMessage is shown to the user for ErrBusy.
const BusyMessage = "A check is already in progress."

// Status is the form's submission status.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
)

// Session holds one form instance. At most one submission is in flight.
type Session struct {
	ID string

	mu     sync.Mutex
	status Status
	state  model.FormState
}

// New returns an idle session with the initial form state.
func New(id string) *Session {
	return &Session{ID: id, status: StatusIdle, state: model.InitialFormState()}
}

// begin moves idle to pending. It fails with ErrBusy when already pending.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusPending {
		return ErrBusy
	}
	s.status = StatusPending
	return nil
}

// complete stores the resolved state, returns to idle and calls resolved
// while still holding the lock.
func (s *Session) complete(state model.FormState, resolved func(model.FormState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.status = StatusIdle
	if resolved != nil {
		resolved(state)
	}
}

// Snapshot returns the current status and last resolved state.
func (s *Session) Snapshot() (Status, model.FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.state
}

// Submit moves the session to pending and runs fn in a new goroutine. It
// returns ErrBusy without running fn when a submission is already pending.
// fn does not see ctx cancellation; a started check runs to completion.
//
// When fn returns, the state is stored, the session goes back to idle and
// resolved is called, all under the session lock. A Submit racing
// with it therefore observes the effects of resolved. resolved must not call
// back into the session. The returned channel is closed after resolved.
func (s *Session) Submit(ctx context.Context, fn func(ctx context.Context) model.FormState, resolved func(model.FormState)) (<-chan struct{}, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		s.complete(fn(runCtx), resolved)
	}()
	return done, nil
}
