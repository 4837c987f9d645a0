package panel

import (
	"github.com/parley-im/parley/internal/verification"
)

// State is the phase-specific payload attached to a history entry. Each
// phase that needs a payload has its own variant carrying exactly the
// fields that phase's view reads. A nil State means no payload.
type State interface {
	isPanelState()
}

// MemberState selects a member for the member info view.
type MemberState struct {
	UserID string
}

// ThreePIDMemberState selects an invited third-party identity.
type ThreePIDMemberState struct {
	Address string
}

// VerificationState carries a live verification request handle alongside
// the member it belongs to. The handle is runtime-only and is dropped when
// the entry is persisted.
type VerificationState struct {
	Request *verification.Request
	UserID  string
}

// WidgetState selects a widget for the widget view.
type WidgetState struct {
	WidgetID string
}

// ThreadState selects a thread by its root message.
type ThreadState struct {
	RootID         string
	InitialEventID string
}

// GroupMemberState selects a community member (legacy group mode).
type GroupMemberState struct {
	UserID string
}

// GroupRoomState selects a room within a community (legacy group mode).
type GroupRoomState struct {
	RoomID string
}

func (MemberState) isPanelState()         {}
func (ThreePIDMemberState) isPanelState() {}
func (VerificationState) isPanelState()   {}
func (WidgetState) isPanelState()         {}
func (ThreadState) isPanelState()         {}
func (GroupMemberState) isPanelState()    {}
func (GroupRoomState) isPanelState()      {}

// Entry is one element of a room's panel history. The zero Entry is the
// empty sentinel returned when no record exists.
type Entry struct {
	Phase Phase
	State State
}

// Record holds one room's panel history and open flag. IsOpen and History
// are independent: a closed panel keeps its history so reopening resumes
// the last view.
type Record struct {
	History []Entry
	IsOpen  bool
}

// Current returns the top history entry, or the empty sentinel.
func (r *Record) Current() Entry {
	if r == nil || len(r.History) == 0 {
		return Entry{}
	}
	return r.History[len(r.History)-1]
}

// Previous returns the second-to-last history entry, or the empty sentinel.
func (r *Record) Previous() Entry {
	if r == nil || len(r.History) < 2 {
		return Entry{}
	}
	return r.History[len(r.History)-2]
}
