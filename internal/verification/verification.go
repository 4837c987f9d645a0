// Package verification tracks pending user verification requests.
package verification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request is a live handle for an in-progress verification with a user.
// Handles are runtime state: they are never persisted, only re-looked-up.
type Request struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Accepted  bool
}

// Listener observes tracker changes.
type Listener func()

// Registration is a cancellable handle for a registered listener.
type Registration struct {
	id      int64
	tracker *Tracker
}

// Cancel removes the listener from the tracker. Safe to call more than once.
func (r *Registration) Cancel() {
	if r == nil || r.tracker == nil {
		return
	}
	r.tracker.unregister(r.id)
	r.tracker = nil
}

// Tracker holds pending verification requests, at most one per user.
type Tracker struct {
	mu        sync.RWMutex
	pending   map[string]*Request
	listeners []listenerReg
	nextID    int64
}

type listenerReg struct {
	id int64
	fn Listener
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[string]*Request),
	}
}

// Begin starts a verification with a user and returns the pending request.
// A second Begin for the same user returns the existing request.
func (t *Tracker) Begin(userID string) *Request {
	t.mu.Lock()
	if req, ok := t.pending[userID]; ok {
		t.mu.Unlock()
		return req
	}

	req := &Request{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	t.pending[userID] = req
	t.mu.Unlock()

	t.notify()
	return req
}

// PendingFor returns the pending request for a user, or nil.
func (t *Tracker) PendingFor(userID string) *Request {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending[userID]
}

// Resolve completes the request with the given id and removes it.
// Returns false if no pending request has that id.
func (t *Tracker) Resolve(id string) bool {
	t.mu.Lock()
	var resolved *Request
	for userID, req := range t.pending {
		if req.ID == id {
			req.Accepted = true
			resolved = req
			delete(t.pending, userID)
			break
		}
	}
	t.mu.Unlock()

	if resolved == nil {
		return false
	}
	t.notify()
	return true
}

// PendingCount returns the number of pending requests.
func (t *Tracker) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}

// OnChange registers a listener called after every tracker change.
func (t *Tracker) OnChange(fn Listener) *Registration {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	t.listeners = append(t.listeners, listenerReg{id: t.nextID, fn: fn})
	return &Registration{id: t.nextID, tracker: t}
}

func (t *Tracker) unregister(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, reg := range t.listeners {
		if reg.id == id {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

func (t *Tracker) notify() {
	t.mu.RLock()
	listeners := make([]Listener, len(t.listeners))
	for i, reg := range t.listeners {
		listeners[i] = reg.fn
	}
	t.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
