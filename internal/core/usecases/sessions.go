package usecases

import (
	"context"
	"sync"
)

// SessionRegistry tracks the in-flight analysis of each map session. Every
// Begin hands out a new generation token and cancels the previous run, so
// only the latest drawing of a session can complete.
type SessionRegistry struct {
	mu       sync.Mutex
	next     uint64
	sessions map[string]sessionState
}

type sessionState struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]sessionState)}
}

// Begin starts a new run for sessionID. The returned context is cancelled
// when the run is superseded, cleared, or ended. An empty sessionID is not
// tracked and always reports current.
func (r *SessionRegistry) Begin(ctx context.Context, sessionID string) (context.Context, uint64) {
	if sessionID == "" {
		return ctx, 0
	}
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[sessionID]; ok {
		prev.cancel()
	}
	r.next++
	r.sessions[sessionID] = sessionState{gen: r.next, cancel: cancel}
	return runCtx, r.next
}

// IsCurrent reports whether gen is still the live run of sessionID.
func (r *SessionRegistry) IsCurrent(sessionID string, gen uint64) bool {
	if sessionID == "" {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[sessionID]
	return ok && st.gen == gen
}

// End releases the run gen of sessionID if it is still current.
func (r *SessionRegistry) End(sessionID string, gen uint64) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.sessions[sessionID]; ok && st.gen == gen {
		st.cancel()
		delete(r.sessions, sessionID)
	}
}

// Clear cancels and invalidates whatever run sessionID has in flight.
// It reports whether a run was cancelled.
func (r *SessionRegistry) Clear(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	st.cancel()
	delete(r.sessions, sessionID)
	return true
}

// Active returns the number of sessions with a run in flight.
func (r *SessionRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
