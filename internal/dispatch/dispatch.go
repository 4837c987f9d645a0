// Package dispatch provides the app-level action dispatcher.
package dispatch

import (
	"sync"
)

// Action identifies the kind of payload being dispatched.
type Action string

const (
	// ActionViewRoom navigates the client to a room.
	ActionViewRoom Action = "view_room"
	// ActionViewGroup navigates the client to a legacy community.
	ActionViewGroup Action = "view_group"
	// ActionRoomLoaded fires after a room's timeline has been loaded.
	ActionRoomLoaded Action = "room_loaded"
)

// Payload is a tagged dispatch payload.
type Payload struct {
	Action  Action
	RoomID  string
	EventID string
}

// Handler is a function that handles dispatched payloads.
type Handler func(Payload)

// Registration is a cancellable handle for a registered handler.
type Registration struct {
	id         int64
	dispatcher *Dispatcher
}

// Cancel removes the handler from the dispatcher. Safe to call more than once.
func (r *Registration) Cancel() {
	if r == nil || r.dispatcher == nil {
		return
	}
	r.dispatcher.unregister(r.id)
	r.dispatcher = nil
}

// Dispatcher delivers payloads synchronously to registered handlers.
// Handlers run to completion, in registration order, within Fire.
type Dispatcher struct {
	mu       sync.Mutex
	handlers []registration
	nextID   int64
}

type registration struct {
	id      int64
	handler Handler
}

// New creates a new dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a handler and returns its cancellable registration.
func (d *Dispatcher) Register(fn Handler) *Registration {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.handlers = append(d.handlers, registration{id: d.nextID, handler: fn})
	return &Registration{id: d.nextID, dispatcher: d}
}

func (d *Dispatcher) unregister(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, reg := range d.handlers {
		if reg.id == id {
			d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
			return
		}
	}
}

// Fire delivers a payload to every registered handler, in registration order.
func (d *Dispatcher) Fire(p Payload) {
	d.mu.Lock()
	handlers := make([]Handler, len(d.handlers))
	for i, reg := range d.handlers {
		handlers[i] = reg.handler
	}
	d.mu.Unlock()

	// Deliver outside the lock so handlers may register or fire themselves.
	for _, fn := range handlers {
		fn(p)
	}
}

// HandlerCount returns the number of registered handlers.
func (d *Dispatcher) HandlerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}
