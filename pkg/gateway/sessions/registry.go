// Package sessions tracks live interview sessions so shutdown can drain
// them and duplicate ids are rejected.
package sessions

import (
	"context"
	"errors"
	"sync"
)

// ErrDuplicateSession is returned when a session id is already registered.
var ErrDuplicateSession = errors.New("session id already registered")

// Handle exposes the controls the registry needs over a live session.
type Handle struct {
	Cancel func()
}

// Registry tracks active sessions by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registered
	wg       sync.WaitGroup
}

type registered struct {
	handle Handle
	once   sync.Once
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*registered),
	}
}

// Register tracks a session. It fails with ErrDuplicateSession when the id
// is already live; the caller picks a different id. The returned func
// unregisters the session and is safe to call more than once.
func (r *Registry) Register(sessionID string, h Handle) (unregister func(), err error) {
	if r == nil {
		return func() {}, nil
	}

	entry := &registered{handle: h}

	r.mu.Lock()
	if _, exists := r.sessions[sessionID]; exists {
		r.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	r.sessions[sessionID] = entry
	r.wg.Add(1)
	r.mu.Unlock()

	return func() { r.unregister(sessionID, entry) }, nil
}

func (r *Registry) unregister(sessionID string, entry *registered) {
	entry.once.Do(func() {
		r.mu.Lock()
		if r.sessions[sessionID] == entry {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()
		r.wg.Done()
	})
}

// Lookup reports whether a session id is currently live.
func (r *Registry) Lookup(sessionID string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CancelAll cancels every live session and returns how many were canceled.
func (r *Registry) CancelAll() (canceled int) {
	if r == nil {
		return 0
	}

	var cancels []func()
	r.mu.Lock()
	for _, entry := range r.sessions {
		if entry.handle.Cancel == nil {
			continue
		}
		cancels = append(cancels, entry.handle.Cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Wait blocks until every session has unregistered or the context ends.
// It returns true when the registry fully drained.
func (r *Registry) Wait(ctx context.Context) bool {
	if r == nil {
		return true
	}
	if ctx == nil {
		r.wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
