package panel

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parley-im/parley/internal/constants"
	"github.com/parley-im/parley/internal/dispatch"
	"github.com/parley-im/parley/internal/verification"
)

// ErrNoActivePanel is returned by PopPanel and TogglePanel when the target
// room has no panel record yet.
var ErrNoActivePanel = errors.New("no active panel for this room")

// Settings is the key-value persistence collaborator. An empty roomID
// addresses the device-scoped key; a non-empty roomID addresses the
// room-device-scoped key.
type Settings interface {
	GetValue(key, roomID string) (string, error)
	SetValue(key, roomID, value string) error
}

// VerificationLookup answers whether a user has a pending verification
// request and reports tracker changes.
type VerificationLookup interface {
	PendingFor(userID string) *verification.Request
	OnChange(fn verification.Listener) *verification.Registration
}

// Subscription is a cancellable handle for an update subscriber.
type Subscription struct {
	id    int64
	store *Store
}

// Cancel removes the subscriber. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.store == nil {
		return
	}
	s.store.unsubscribe(s.id)
	s.store = nil
}

// Store tracks, per room, which panel view is shown and the navigable
// history of previously shown views. Consumers read state through the
// accessors after every update notification; mutation happens only through
// the documented mutators.
type Store struct {
	mu sync.RWMutex

	dispatcher *dispatch.Dispatcher
	settings   Settings
	verifier   VerificationLookup

	activeRoomID string
	mode         Mode
	byRoom       map[string]*Record
	global       *Record

	ready       bool
	dispatchReg *dispatch.Registration
	verifyReg   *verification.Registration

	subscribers []subscriber
	nextSubID   int64
}

type subscriber struct {
	id int64
	fn func()
}

// NewStore creates a panel navigation store. The store is inert until
// Start is called.
func NewStore(d *dispatch.Dispatcher, settings Settings, verifier VerificationLookup) *Store {
	return &Store{
		dispatcher: d,
		settings:   settings,
		verifier:   verifier,
		mode:       ModeRoom,
		byRoom:     make(map[string]*Record),
	}
}

// Start loads cached records from settings, registers with the dispatcher
// and the verification tracker, and emits one update. Calling Start on a
// started store is a no-op.
func (s *Store) Start() {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return
	}
	s.ready = true

	value, err := s.settings.GetValue(constants.SettingsKeyPanelGlobal, "")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load global panel record")
	} else if s.global == nil {
		rec, err := decodeRecord(value, s.verifier)
		if err != nil {
			log.Warn().Err(err).Msg("Discarding corrupt global panel record")
		} else {
			s.global = rec
		}
	}
	s.loadRoomLocked(s.activeRoomID)

	s.dispatchReg = s.dispatcher.Register(s.handleDispatch)
	s.verifyReg = s.verifier.OnChange(s.notify)
	s.mu.Unlock()

	s.persistAndEmit()
}

// Stop unregisters from the dispatcher and releases the verification
// subscription. The in-memory records survive for a later Start.
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return
	}
	s.ready = false
	dReg, vReg := s.dispatchReg, s.verifyReg
	s.dispatchReg, s.verifyReg = nil, nil
	s.mu.Unlock()

	dReg.Cancel()
	vReg.Cancel()
}

// Subscribe registers fn to be called, without payload, after every store
// update. Subscribers re-read state through the accessors.
func (s *Store) Subscribe(fn func()) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: s.nextSubID, fn: fn})
	return &Subscription{id: s.nextSubID, store: s}
}

func (s *Store) unsubscribe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// CurrentEntry returns the top entry of the active room's history, or the
// empty sentinel if no record exists.
func (s *Store) CurrentEntry() Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEntryLocked()
}

// CurrentEntryFor returns the top entry for an arbitrary room, falling
// back to CurrentEntry when that room has no record.
func (s *Store) CurrentEntryFor(roomID string) Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEntryForLocked(s.resolveTargetLocked(roomID))
}

// PreviousEntry returns the second-to-last entry of the active room's
// history, or the empty sentinel.
func (s *Store) PreviousEntry() Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordLocked(s.activeRoomID).Previous()
}

// IsOpen reports whether the active room's panel is open.
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.recordLocked(s.activeRoomID)
	return rec != nil && rec.IsOpen
}

// HistoryLen returns the history depth for a room (empty roomID: active).
func (s *Store) HistoryLen(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.recordLocked(s.resolveTargetLocked(roomID))
	if rec == nil {
		return 0
	}
	return len(rec.History)
}

// Mode returns the store's current navigation mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ActiveRoomID returns the room the store currently tracks.
func (s *Store) ActiveRoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeRoomID
}

// SetPanel replaces, updates, or toggles the panel for a room. With the
// current phase requested again and no state, it toggles (when allowClose
// permits). With the current phase and fresh state, it updates the top
// entry in place. With a different phase, it erases the room's history and
// starts over at the requested view. Requesting the current phase with no
// state and allowClose false is deliberately a no-op, not a reset: the
// caller is re-asserting the view that is already showing, and resetting
// would wipe the history behind it. Empty roomID targets the active room.
func (s *Store) SetPanel(phase Phase, state State, allowClose bool, roomID string) {
	phase, state = s.applyRedirect(phase, state)
	if !s.checkValid(phase) {
		return
	}

	s.mu.Lock()
	target := s.resolveTargetLocked(roomID)
	cur := s.currentEntryLocked()
	curFor := s.currentEntryForLocked(target)

	switch {
	case phase == cur.Phase && allowClose && state == nil:
		if err := s.toggleLocked(target); err != nil {
			s.mu.Unlock()
			log.Warn().Str("room", target).Msg("Toggle requested for room with no panel record")
			return
		}

	case phase == curFor.Phase && state != nil:
		if rec := s.recordLocked(target); rec != nil && len(rec.History) > 0 {
			rec.History[len(rec.History)-1].State = state
		} else {
			// Matched through the active-room fallback; the target room
			// gets its own record now.
			s.resetRecordLocked(target, phase, state)
		}

	case phase != cur.Phase || s.recordLocked(target) == nil:
		s.resetRecordLocked(target, phase, state)

	default:
		// Same phase, no state, allowClose false: nothing to do.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.persistAndEmit()
}

// PushPanel appends a new entry to a room's history, creating the record
// if needed. A record created by a silent push (allowClose true) starts
// closed; pushing with allowClose false forces the panel open.
func (s *Store) PushPanel(phase Phase, state State, allowClose bool, roomID string) {
	phase, state = s.applyRedirect(phase, state)
	if !s.checkValid(phase) {
		return
	}

	s.mu.Lock()
	target := s.resolveTargetLocked(roomID)
	rec := s.recordLocked(target)
	if rec == nil {
		rec = &Record{IsOpen: !allowClose}
		s.setRecordLocked(target, rec)
	} else if !allowClose {
		rec.IsOpen = true
	}
	rec.History = append(rec.History, Entry{Phase: phase, State: state})
	s.mu.Unlock()

	s.persistAndEmit()
}

// PopPanel removes and returns the top entry of a room's history. The open
// flag is untouched. Returns ErrNoActivePanel if the room has no record.
func (s *Store) PopPanel(roomID string) (Entry, error) {
	s.mu.Lock()
	target := s.resolveTargetLocked(roomID)
	rec := s.recordLocked(target)
	if rec == nil {
		s.mu.Unlock()
		return Entry{}, ErrNoActivePanel
	}

	var popped Entry
	if n := len(rec.History); n > 0 {
		popped = rec.History[n-1]
		rec.History = rec.History[:n-1]
	}
	s.mu.Unlock()

	s.persistAndEmit()
	return popped, nil
}

// TogglePanel flips the open flag on a room's record. Returns
// ErrNoActivePanel if the room has no record.
func (s *Store) TogglePanel(roomID string) error {
	s.mu.Lock()
	target := s.resolveTargetLocked(roomID)
	if err := s.toggleLocked(target); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.persistAndEmit()
	return nil
}

// applyRedirect substitutes the encryption panel for member info when the
// member has a pending verification request, so a caller asking for member
// info transparently lands on the in-progress verification flow.
func (s *Store) applyRedirect(phase Phase, state State) (Phase, State) {
	if phase != PhaseRoomMemberInfo {
		return phase, state
	}
	member, ok := state.(MemberState)
	if !ok {
		return phase, state
	}
	req := s.verifier.PendingFor(member.UserID)
	if req == nil {
		return phase, state
	}
	return PhaseEncryptionPanel, VerificationState{Request: req, UserID: member.UserID}
}

// checkValid rejects unknown phases and phases belonging to the family
// opposite the store's current mode. Rejections are logged, never thrown.
func (s *Store) checkValid(phase Phase) bool {
	if !phase.Valid() {
		log.Warn().Str("phase", string(phase)).Msg("Rejected navigation to unknown panel phase")
		return false
	}

	s.mu.RLock()
	mode := s.mode
	s.mu.RUnlock()

	if phase.Family() != mode {
		log.Warn().
			Str("phase", string(phase)).
			Str("mode", string(mode)).
			Msg("Rejected panel phase outside the current navigation mode")
		return false
	}
	return true
}

// handleDispatch reacts to view-room and view-group navigation. Switching
// to a room already active is a no-op; switching across the room/group
// boundary first coerces a lingering member-info view on the outgoing
// record to the matching member list.
func (s *Store) handleDispatch(p dispatch.Payload) {
	if p.Action != dispatch.ActionViewRoom && p.Action != dispatch.ActionViewGroup {
		return
	}

	s.mu.Lock()
	if p.RoomID == s.activeRoomID {
		s.mu.Unlock()
		return
	}

	targetMode := ModeRoom
	if p.Action == dispatch.ActionViewGroup {
		targetMode = ModeGroup
	}

	if targetMode != s.mode {
		// A member-info view must not linger across the mode boundary:
		// coerce it to the member list of its own family before the
		// switch commits.
		cur := s.currentEntryLocked()
		coerced := false
		switch {
		case cur.Phase.IsMemberInfo():
			s.resetRecordLocked(s.activeRoomID, PhaseRoomMemberList, nil)
			coerced = true
		case cur.Phase == PhaseGroupMemberInfo:
			s.resetRecordLocked(s.activeRoomID, PhaseGroupMemberList, nil)
			coerced = true
		}
		if coerced && s.activeRoomID != "" {
			// Write the outgoing room's record while it is still active;
			// the post-switch persist only covers the incoming room.
			value, err := encodeRecord(s.recordLocked(s.activeRoomID))
			if err == nil {
				err = s.settings.SetValue(constants.SettingsKeyPanelRoom, s.activeRoomID, value)
			}
			if err != nil {
				log.Warn().Err(err).Str("room", s.activeRoomID).Msg("Failed to persist coerced panel record")
			}
		}
	}

	s.activeRoomID = p.RoomID
	s.mode = targetMode
	ready := s.ready
	if ready {
		s.loadRoomLocked(p.RoomID)
	}
	s.mu.Unlock()

	if ready {
		s.persistAndEmit()
	}
}

// loadRoomLocked seeds a room's record from settings if the in-memory map
// does not have one yet.
func (s *Store) loadRoomLocked(roomID string) {
	if roomID == "" || s.byRoom[roomID] != nil {
		return
	}

	value, err := s.settings.GetValue(constants.SettingsKeyPanelRoom, roomID)
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("Failed to load room panel record")
		return
	}
	rec, err := decodeRecord(value, s.verifier)
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("Discarding corrupt room panel record")
		return
	}
	if rec != nil {
		s.byRoom[roomID] = rec
	}
}

// persistAndEmit is the single exit path of every mutation: serialize the
// global record and the active room's record to settings, then notify
// subscribers exactly once. Settings writes are best effort.
func (s *Store) persistAndEmit() {
	s.mu.RLock()
	globalValue, gErr := encodeRecord(s.global)
	roomID := s.activeRoomID
	var roomValue string
	var rErr error
	if roomID != "" {
		roomValue, rErr = encodeRecord(s.byRoom[roomID])
	}
	s.mu.RUnlock()

	if gErr != nil {
		log.Warn().Err(gErr).Msg("Failed to serialize global panel record")
	} else if err := s.settings.SetValue(constants.SettingsKeyPanelGlobal, "", globalValue); err != nil {
		log.Warn().Err(err).Msg("Failed to persist global panel record")
	}

	if roomID != "" {
		if rErr != nil {
			log.Warn().Err(rErr).Str("room", roomID).Msg("Failed to serialize room panel record")
		} else if err := s.settings.SetValue(constants.SettingsKeyPanelRoom, roomID, roomValue); err != nil {
			log.Warn().Err(err).Str("room", roomID).Msg("Failed to persist room panel record")
		}
	}

	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subscribers))
	for i, sub := range s.subscribers {
		subs[i] = sub.fn
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// resolveTargetLocked maps an explicit room id (or "" for the active room)
// to the record key. The empty key addresses the global record.
func (s *Store) resolveTargetLocked(roomID string) string {
	if roomID != "" {
		return roomID
	}
	return s.activeRoomID
}

func (s *Store) recordLocked(target string) *Record {
	if target == "" {
		return s.global
	}
	return s.byRoom[target]
}

func (s *Store) setRecordLocked(target string, rec *Record) {
	if target == "" {
		s.global = rec
	} else {
		s.byRoom[target] = rec
	}
}

func (s *Store) resetRecordLocked(target string, phase Phase, state State) {
	s.setRecordLocked(target, &Record{
		History: []Entry{{Phase: phase, State: state}},
		IsOpen:  true,
	})
}

func (s *Store) currentEntryLocked() Entry {
	return s.recordLocked(s.activeRoomID).Current()
}

func (s *Store) currentEntryForLocked(target string) Entry {
	rec := s.recordLocked(target)
	if rec == nil {
		return s.currentEntryLocked()
	}
	return rec.Current()
}

func (s *Store) toggleLocked(target string) error {
	rec := s.recordLocked(target)
	if rec == nil {
		return ErrNoActivePanel
	}
	rec.IsOpen = !rec.IsOpen
	return nil
}
