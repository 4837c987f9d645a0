package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/parley-im/parley/internal/panel"
	"github.com/parley-im/parley/internal/store"
)

func renderEmptyPanel(width, height int) string {
	content := dimmedStyle.Render("No view selected")
	return framePanel("PANEL", content, width, height)
}

func renderRoomSummary(d panelData, width, height int) string {
	var lines []string
	lines = append(lines, valueStyle.Render(d.roomName))
	if d.topic != "" {
		lines = append(lines, labelStyle.Render(truncateWithEllipsis(d.topic, width-4)))
	}
	lines = append(lines, "")
	lines = append(lines, labelStyle.Render("Members:  ")+valueStyle.Render(fmt.Sprintf("%d", len(d.members))))
	lines = append(lines, labelStyle.Render("Messages: ")+valueStyle.Render(fmt.Sprintf("%d", d.messageCount)))
	lines = append(lines, labelStyle.Render("Pinned:   ")+valueStyle.Render(fmt.Sprintf("%d", len(d.pinned))))
	return framePanel("ROOM INFO", strings.Join(lines, "\n"), width, height)
}

func renderMemberList(d panelData, width, height int) string {
	members := FilterMembers(d.members, d.filter)

	var lines []string
	if d.filter != "" {
		lines = append(lines, labelStyle.Render("filter: ")+valueStyle.Render(d.filter))
		lines = append(lines, "")
	}
	if len(members) == 0 {
		lines = append(lines, dimmedStyle.Render("No members"))
	}
	for _, m := range members {
		label := formatSenderLabel(m.UserID, m.DisplayName)
		line := SenderStyle(m.UserID, d.selfID).Render(label)
		if m.PowerLevel >= 100 {
			line += " " + warningStyle.Render("admin")
		} else if m.PowerLevel >= 50 {
			line += " " + dimmedStyle.Render("mod")
		}
		lines = append(lines, line)
	}

	title := "MEMBERS"
	if d.entry.Phase == panel.PhaseGroupMemberList {
		title = "COMMUNITY MEMBERS"
	}
	return framePanel(title, strings.Join(lines, "\n"), width, height)
}

func renderMemberInfo(d panelData, width, height int) string {
	var userID string
	switch s := d.entry.State.(type) {
	case panel.MemberState:
		userID = s.UserID
	case panel.GroupMemberState:
		userID = s.UserID
	case panel.ThreePIDMemberState:
		content := labelStyle.Render("Invited: ") + valueStyle.Render(s.Address) + "\n" +
			dimmedStyle.Render("Pending third-party invite")
		return framePanel("INVITE", content, width, height)
	}

	member := findMember(d.members, userID)
	var lines []string
	if member == nil {
		lines = append(lines, dimmedStyle.Render("Unknown member"))
		lines = append(lines, labelStyle.Render(userID))
	} else {
		lines = append(lines, valueStyle.Render(member.DisplayName))
		lines = append(lines, labelStyle.Render(member.UserID))
		lines = append(lines, "")
		lines = append(lines, labelStyle.Render("Power level: ")+valueStyle.Render(fmt.Sprintf("%d", member.PowerLevel)))
	}
	return framePanel("MEMBER", strings.Join(lines, "\n"), width, height)
}

func renderEncryption(d panelData, width, height int) string {
	var lines []string
	if s, ok := d.entry.State.(panel.VerificationState); ok {
		lines = append(lines, labelStyle.Render("Verifying: ")+valueStyle.Render(s.UserID))
		if s.Request != nil {
			lines = append(lines, labelStyle.Render("Request:   ")+dimmedStyle.Render(s.Request.ID))
			if s.Request.Accepted {
				lines = append(lines, successStyle.Render("Verified"))
			} else {
				lines = append(lines, warningStyle.Render("Awaiting confirmation"))
			}
		} else {
			lines = append(lines, dimmedStyle.Render("No active request"))
		}
	} else {
		lines = append(lines, dimmedStyle.Render("Room encryption settings"))
	}
	return framePanel("ENCRYPTION", strings.Join(lines, "\n"), width, height)
}

func renderPinned(d panelData, width, height int) string {
	var lines []string
	if len(d.pinned) == 0 {
		lines = append(lines, dimmedStyle.Render("No pinned messages"))
	}
	for _, msg := range d.pinned {
		lines = append(lines, renderMessageLine(msg, d.selfID, width-4))
	}
	return framePanel("PINNED", strings.Join(lines, "\n"), width, height)
}

func renderNotifications(d panelData, width, height int) string {
	// Notifications surface recent mentions of the local user.
	var lines []string
	for _, msg := range d.messages {
		if msg.Sender != d.selfID && strings.Contains(msg.Body, d.selfID) {
			lines = append(lines, renderMessageLine(msg, d.selfID, width-4))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dimmedStyle.Render("No notifications"))
	}
	return framePanel("NOTIFICATIONS", strings.Join(lines, "\n"), width, height)
}

func renderFiles(d panelData, width, height int) string {
	content := dimmedStyle.Render("No files shared in this room")
	return framePanel("FILES", content, width, height)
}

func renderTimelinePanel(d panelData, width, height int) string {
	var lines []string
	for _, msg := range d.messages {
		lines = append(lines, renderMessageLine(msg, d.selfID, width-4))
	}
	if len(lines) == 0 {
		lines = append(lines, dimmedStyle.Render("No messages"))
	}
	return framePanel("TIMELINE", strings.Join(lines, "\n"), width, height)
}

func renderWidget(d panelData, width, height int) string {
	var lines []string
	if s, ok := d.entry.State.(panel.WidgetState); ok {
		lines = append(lines, labelStyle.Render("Widget: ")+valueStyle.Render(s.WidgetID))
	}
	lines = append(lines, dimmedStyle.Render("Widget rendering is not supported in the terminal"))
	return framePanel("WIDGET", strings.Join(lines, "\n"), width, height)
}

func renderThreads(d panelData, width, height int) string {
	var lines []string
	if s, ok := d.entry.State.(panel.ThreadState); ok && s.RootID != "" {
		for _, msg := range d.messages {
			line := renderMessageLine(msg, d.selfID, width-4)
			if msg.ID == s.InitialEventID {
				line = lipgloss.NewStyle().Background(colorBorder).Render(line)
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			lines = append(lines, dimmedStyle.Render("Empty thread"))
		}
		return framePanel("THREAD", strings.Join(lines, "\n"), width, height)
	}

	// Thread panel: list of thread roots
	for _, msg := range d.messages {
		lines = append(lines, renderMessageLine(msg, d.selfID, width-4))
	}
	if len(lines) == 0 {
		lines = append(lines, dimmedStyle.Render("No threads"))
	}
	return framePanel("THREADS", strings.Join(lines, "\n"), width, height)
}

func renderGroupRoomList(d panelData, width, height int) string {
	var lines []string
	if len(d.roomList) == 0 {
		lines = append(lines, dimmedStyle.Render("No rooms in this community"))
	}
	for _, r := range d.roomList {
		lines = append(lines, roomItemStyle.Render(truncateWithEllipsis(r.Name, width-6)))
	}
	return framePanel("COMMUNITY ROOMS", strings.Join(lines, "\n"), width, height)
}

func renderGroupRoomInfo(d panelData, width, height int) string {
	var lines []string
	if s, ok := d.entry.State.(panel.GroupRoomState); ok {
		if r := findRoom(d.roomList, s.RoomID); r != nil {
			lines = append(lines, valueStyle.Render(r.Name))
			if r.Topic != "" {
				lines = append(lines, labelStyle.Render(truncateWithEllipsis(r.Topic, width-4)))
			}
		} else {
			lines = append(lines, dimmedStyle.Render("Unknown room"))
			lines = append(lines, labelStyle.Render(s.RoomID))
		}
	}
	return framePanel("ROOM", strings.Join(lines, "\n"), width, height)
}

func renderMessageLine(msg *store.Message, selfID string, maxWidth int) string {
	label := SenderStyle(msg.Sender, selfID).Render(formatSenderLabel(msg.Sender, ""))
	body := truncateWithEllipsis(msg.Body, maxWidth-lipgloss.Width(label)-1)
	return label + " " + body
}

func framePanel(title, content string, width, height int) string {
	header := renderSectionTitle(title, width-4)
	body := lipgloss.NewStyle().Width(width - 4).Render(content)
	return panelStyle.Width(width - 2).Height(height - 2).Render(header + "\n" + body)
}

func findMember(members []*store.Member, userID string) *store.Member {
	for _, m := range members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

func findRoom(rooms []*store.Room, roomID string) *store.Room {
	for _, r := range rooms {
		if r.ID == roomID {
			return r
		}
	}
	return nil
}
