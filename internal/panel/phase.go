// Package panel implements the right panel navigation store: per-room
// history stacks of (phase, state) entries, the open/closed flag, and the
// rules deciding which panel views are reachable when.
package panel

// Mode selects which phase family the client is navigating in. Rooms and
// legacy communities ("groups") are mutually exclusive namespaces.
type Mode string

const (
	ModeRoom  Mode = "room"
	ModeGroup Mode = "group"
)

// Phase identifies which view the right panel shows.
type Phase string

// Room-family phases.
const (
	PhaseRoomSummary        Phase = "room_summary"
	PhaseRoomMemberList     Phase = "room_member_list"
	PhaseRoomMemberInfo     Phase = "room_member_info"
	PhaseRoom3pidMemberInfo Phase = "room_3pid_member_info"
	PhaseEncryptionPanel    Phase = "encryption_panel"
	PhasePinnedMessages     Phase = "pinned_messages"
	PhaseNotificationPanel  Phase = "notification_panel"
	PhaseFilePanel          Phase = "file_panel"
	PhaseTimeline           Phase = "timeline"
	PhaseWidget             Phase = "widget"
	PhaseThreadView         Phase = "thread_view"
	PhaseThreadPanel        Phase = "thread_panel"
)

// Group-family phases (legacy communities).
const (
	PhaseGroupMemberList Phase = "group_member_list"
	PhaseGroupMemberInfo Phase = "group_member_info"
	PhaseGroupRoomList   Phase = "group_room_list"
	PhaseGroupRoomInfo   Phase = "group_room_info"
)

var phaseFamilies = map[Phase]Mode{
	PhaseRoomSummary:        ModeRoom,
	PhaseRoomMemberList:     ModeRoom,
	PhaseRoomMemberInfo:     ModeRoom,
	PhaseRoom3pidMemberInfo: ModeRoom,
	PhaseEncryptionPanel:    ModeRoom,
	PhasePinnedMessages:     ModeRoom,
	PhaseNotificationPanel:  ModeRoom,
	PhaseFilePanel:          ModeRoom,
	PhaseTimeline:           ModeRoom,
	PhaseWidget:             ModeRoom,
	PhaseThreadView:         ModeRoom,
	PhaseThreadPanel:        ModeRoom,
	PhaseGroupMemberList:    ModeGroup,
	PhaseGroupMemberInfo:    ModeGroup,
	PhaseGroupRoomList:      ModeGroup,
	PhaseGroupRoomInfo:      ModeGroup,
}

// Valid reports whether p is a recognized phase.
func (p Phase) Valid() bool {
	_, ok := phaseFamilies[p]
	return ok
}

// Family returns the mode a phase belongs to. Unrecognized phases return
// the empty mode.
func (p Phase) Family() Mode {
	return phaseFamilies[p]
}

// IsMemberInfo reports whether p is one of the member-info-family room
// phases that must not survive a switch across the room/group boundary.
func (p Phase) IsMemberInfo() bool {
	switch p {
	case PhaseRoomMemberInfo, PhaseRoom3pidMemberInfo, PhaseEncryptionPanel:
		return true
	}
	return false
}
