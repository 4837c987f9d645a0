package tui

import (
	"github.com/parley-im/parley/internal/panel"
	"github.com/parley-im/parley/internal/store"
)

// panelData carries everything the side panel views can render. The model
// assembles it from the store before each frame so the views stay pure.
type panelData struct {
	entry    panel.Entry
	roomID   string
	roomName string
	topic    string
	selfID   string
	members      []*store.Member
	messages     []*store.Message
	pinned       []*store.Message
	roomList     []*store.Room
	filter       string
	messageCount int
}

// RenderPanel renders the right side panel for the current view.
func RenderPanel(d panelData, width, height int) string {
	switch d.entry.Phase {
	case panel.PhaseRoomSummary:
		return renderRoomSummary(d, width, height)
	case panel.PhaseRoomMemberList, panel.PhaseGroupMemberList:
		return renderMemberList(d, width, height)
	case panel.PhaseRoomMemberInfo, panel.PhaseRoom3pidMemberInfo, panel.PhaseGroupMemberInfo:
		return renderMemberInfo(d, width, height)
	case panel.PhaseEncryptionPanel:
		return renderEncryption(d, width, height)
	case panel.PhasePinnedMessages:
		return renderPinned(d, width, height)
	case panel.PhaseNotificationPanel:
		return renderNotifications(d, width, height)
	case panel.PhaseFilePanel:
		return renderFiles(d, width, height)
	case panel.PhaseTimeline:
		return renderTimelinePanel(d, width, height)
	case panel.PhaseWidget:
		return renderWidget(d, width, height)
	case panel.PhaseThreadView, panel.PhaseThreadPanel:
		return renderThreads(d, width, height)
	case panel.PhaseGroupRoomList:
		return renderGroupRoomList(d, width, height)
	case panel.PhaseGroupRoomInfo:
		return renderGroupRoomInfo(d, width, height)
	default:
		return renderEmptyPanel(width, height)
	}
}

// closePanel backs out of the active view: pop when there is somewhere to
// go back to, close the panel when only one view remains.
func closePanel(panels *panel.Store) error {
	if panels.HistoryLen("") > 1 {
		_, err := panels.PopPanel("")
		return err
	}
	return panels.TogglePanel("")
}
