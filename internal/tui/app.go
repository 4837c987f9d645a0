// Package tui provides the terminal user interface for Parley.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/parley-im/parley/internal/assistant"
	"github.com/parley-im/parley/internal/config"
	"github.com/parley-im/parley/internal/constants"
	"github.com/parley-im/parley/internal/dispatch"
	"github.com/parley-im/parley/internal/panel"
	"github.com/parley-im/parley/internal/store"
	"github.com/parley-im/parley/internal/verification"
)

// Model is the main TUI model.
type Model struct {
	store      *store.Store
	panels     *panel.Store
	dispatcher *dispatch.Dispatcher
	verifier   *verification.Tracker
	assist     *assistant.Assistant
	cfg        *config.Config

	width    int
	height   int
	showHelp bool

	input InputModel

	rooms           []*store.Room
	selectedRoomIdx int
	messages        []*store.Message
	members         []*store.Member
	selectedMember  int
	memberFilter    string

	panelUpdates chan struct{}
	panelSub     *panel.Subscription

	err error
}

type panelUpdateMsg struct{}

type assistantReplyMsg struct {
	roomID string
	err    error
}

// New creates the main TUI model and subscribes it to panel updates.
func New(s *store.Store, panels *panel.Store, d *dispatch.Dispatcher, v *verification.Tracker, a *assistant.Assistant, cfg *config.Config) *Model {
	m := &Model{
		store:        s,
		panels:       panels,
		dispatcher:   d,
		verifier:     v,
		assist:       a,
		cfg:          cfg,
		input:        NewInputModel(),
		panelUpdates: make(chan struct{}, 1),
	}
	m.panelSub = panels.Subscribe(func() {
		select {
		case m.panelUpdates <- struct{}{}:
		default:
		}
	})
	return m
}

// Close releases the panel subscription.
func (m *Model) Close() {
	if m.panelSub != nil {
		m.panelSub.Cancel()
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.refreshRooms()
	if len(m.rooms) > 0 {
		m.viewRoom(m.rooms[0])
	}
	if m.cfg.Panel.OpenOnLaunch && !m.panels.IsOpen() {
		m.panels.SetPanel(panel.PhaseRoomSummary, nil, false, "")
	}
	return m.listenForPanelUpdates()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		// Handle input mode first
		if m.input.IsActive() {
			return m.handleInputKey(msg)
		}

		if key.Matches(msg, keys.Help) {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Escape):
			if m.panels.IsOpen() {
				m.err = closePanel(m.panels)
			}
			return m, nil
		}

		return m.handleKey(msg)

	case panelUpdateMsg:
		m.refreshRoomData()
		return m, m.listenForPanelUpdates()

	case assistantReplyMsg:
		if msg.err != nil {
			m.err = msg.err
		} else if m.activeRoom() != nil && m.activeRoom().ID == msg.roomID {
			m.refreshRoomData()
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return RenderHelp(m.width, m.height)
	}

	contentHeight := m.height - 3

	panelOpen := m.panels.IsOpen() && m.width >= constants.PanelMinTerminalWidth
	panelWidth := 0
	if panelOpen {
		panelWidth = m.cfg.Panel.Width
	}

	roomListWidth := 22
	timelineWidth := m.width - roomListWidth - panelWidth

	columns := []string{
		m.renderRoomList(roomListWidth, contentHeight),
		m.renderTimeline(timelineWidth, contentHeight),
	}
	if panelOpen {
		columns = append(columns, RenderPanel(m.panelViewData(), panelWidth, contentHeight))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	content += "\n" + m.input.ViewAlways(m.width)

	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return content
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.memberListActive() {
			if m.selectedMember > 0 {
				m.selectedMember--
			}
		} else if m.selectedRoomIdx > 0 {
			m.selectedRoomIdx--
			m.viewRoom(m.rooms[m.selectedRoomIdx])
		}

	case key.Matches(msg, keys.Down):
		if m.memberListActive() {
			if m.selectedMember < len(m.visibleMembers())-1 {
				m.selectedMember++
			}
		} else if m.selectedRoomIdx < len(m.rooms)-1 {
			m.selectedRoomIdx++
			m.viewRoom(m.rooms[m.selectedRoomIdx])
		}

	case key.Matches(msg, keys.Tab):
		if len(m.rooms) > 0 {
			m.selectedRoomIdx = (m.selectedRoomIdx + 1) % len(m.rooms)
			m.viewRoom(m.rooms[m.selectedRoomIdx])
		}

	case key.Matches(msg, keys.ShiftTab):
		if len(m.rooms) > 0 {
			m.selectedRoomIdx = (m.selectedRoomIdx - 1 + len(m.rooms)) % len(m.rooms)
			m.viewRoom(m.rooms[m.selectedRoomIdx])
		}

	case key.Matches(msg, keys.NewRoom):
		m.input.SetMode(InputModeNewRoom)
		return m, m.input.Focus()

	case key.Matches(msg, keys.Delete):
		m.deleteSelectedRoom()

	case key.Matches(msg, keys.Message):
		if m.activeRoom() != nil {
			m.input.SetMode(InputModeMessage)
			return m, m.input.Focus()
		}

	case key.Matches(msg, keys.Pin):
		m.togglePinLatest()

	case key.Matches(msg, keys.Resolve):
		m.resolveVerification()

	case key.Matches(msg, keys.TogglePanel):
		m.err = m.panels.TogglePanel("")

	case key.Matches(msg, keys.Summary):
		m.panels.SetPanel(panel.PhaseRoomSummary, nil, false, "")

	case key.Matches(msg, keys.MemberList):
		m.memberFilter = ""
		m.selectedMember = 0
		if m.panels.Mode() == panel.ModeGroup {
			m.panels.SetPanel(panel.PhaseGroupMemberList, nil, false, "")
		} else {
			m.panels.SetPanel(panel.PhaseRoomMemberList, nil, false, "")
		}

	case key.Matches(msg, keys.MemberInfo):
		if member := m.selectedMemberEntry(); member != nil {
			if m.panels.Mode() == panel.ModeGroup {
				m.panels.PushPanel(panel.PhaseGroupMemberInfo, panel.GroupMemberState{UserID: member.UserID}, false, "")
			} else {
				m.panels.PushPanel(panel.PhaseRoomMemberInfo, panel.MemberState{UserID: member.UserID}, false, "")
			}
		}

	case key.Matches(msg, keys.Verify):
		if member := m.selectedMemberEntry(); member != nil {
			m.verifier.Begin(member.UserID)
			m.panels.SetPanel(panel.PhaseRoomMemberInfo, panel.MemberState{UserID: member.UserID}, false, "")
		}

	case key.Matches(msg, keys.Pinned):
		m.panels.SetPanel(panel.PhasePinnedMessages, nil, false, "")

	case key.Matches(msg, keys.Notifications):
		m.panels.SetPanel(panel.PhaseNotificationPanel, nil, false, "")

	case key.Matches(msg, keys.Files):
		m.panels.SetPanel(panel.PhaseFilePanel, nil, false, "")

	case key.Matches(msg, keys.Threads):
		if m.panels.Mode() == panel.ModeRoom {
			m.panels.SetPanel(panel.PhaseThreadPanel, nil, false, "")
		}

	case key.Matches(msg, keys.Filter):
		if m.memberListActive() {
			m.input.SetMode(InputModeMemberFilter)
			return m, m.input.Focus()
		}
	}

	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		if m.input.Mode() == InputModeMemberFilter {
			m.memberFilter = ""
		}
		m.input.Reset()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.input.Mode()
		m.input.Reset()

		switch mode {
		case InputModeMessage:
			if value == "" {
				return m, nil
			}
			return m, m.sendMessage(value)

		case InputModeNewRoom:
			if value != "" {
				m.createRoom(value)
			}

		case InputModeMemberFilter:
			m.memberFilter = value
			m.selectedMember = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sendMessage stores a message from the local user in the active room,
// recording the sender as a member, and kicks off an assistant reply.
func (m *Model) sendMessage(body string) tea.Cmd {
	room := m.activeRoom()
	if room == nil {
		return nil
	}
	m.input.AddToHistory(body)

	if err := m.store.UpsertMember(room.ID, m.cfg.Client.UserID, m.cfg.Client.DisplayName, 100); err != nil {
		m.err = err
		return nil
	}
	if _, err := m.store.AddMessage(room.ID, m.cfg.Client.UserID, body, ""); err != nil {
		m.err = err
		return nil
	}
	m.refreshRoomData()
	return m.requestAssistantReply(room.ID)
}

// createRoom creates a room, seeds its membership with the local user and
// the assistant when enabled, and switches to it.
func (m *Model) createRoom(name string) {
	room, err := m.store.CreateRoom(name, "", false)
	if err != nil {
		m.err = err
		return
	}
	if err := m.store.UpsertMember(room.ID, m.cfg.Client.UserID, m.cfg.Client.DisplayName, 100); err != nil {
		m.err = err
	}
	if m.assist != nil && m.assist.Enabled() {
		if err := m.store.UpsertMember(room.ID, m.assist.UserID(), "Assistant", 0); err != nil {
			m.err = err
		}
	}

	m.refreshRooms()
	for i, r := range m.rooms {
		if r.ID == room.ID {
			m.selectedRoomIdx = i
		}
	}
	m.viewRoom(room)
}

// deleteSelectedRoom removes the active room along with its persisted
// panel record, then switches to whatever room is selected next.
func (m *Model) deleteSelectedRoom() {
	room := m.activeRoom()
	if room == nil {
		return
	}
	if err := m.store.DeleteRoom(room.ID); err != nil {
		m.err = err
		return
	}
	if err := m.store.DeleteValue(constants.SettingsKeyPanelRoom, room.ID); err != nil {
		m.err = err
	}

	m.refreshRooms()
	if next := m.activeRoom(); next != nil {
		m.viewRoom(next)
	} else {
		m.refreshRoomData()
	}
}

// togglePinLatest flips the pin on the newest message in the active room.
func (m *Model) togglePinLatest() {
	if len(m.messages) == 0 {
		return
	}
	last := m.messages[len(m.messages)-1]
	if err := m.store.SetPinned(last.ID, !last.Pinned); err != nil {
		m.err = err
		return
	}
	m.refreshRoomData()
}

// resolveVerification completes the pending request shown in the current
// encryption view. The tracker change re-notifies the panel store.
func (m *Model) resolveVerification() {
	if s, ok := m.panels.CurrentEntry().State.(panel.VerificationState); ok && s.Request != nil {
		m.verifier.Resolve(s.Request.ID)
	}
}

// viewRoom makes a room active: the dispatcher notifies the panel store,
// which in turn restores that room's panel state.
func (m *Model) viewRoom(room *store.Room) {
	action := dispatch.ActionViewRoom
	if room.IsGroup {
		action = dispatch.ActionViewGroup
	}
	m.dispatcher.Fire(dispatch.Payload{Action: action, RoomID: room.ID})
	m.memberFilter = ""
	m.selectedMember = 0
	m.refreshRoomData()
}

func (m *Model) activeRoom() *store.Room {
	if len(m.rooms) == 0 || m.selectedRoomIdx >= len(m.rooms) {
		return nil
	}
	return m.rooms[m.selectedRoomIdx]
}

func (m *Model) refreshRooms() {
	rooms, err := m.store.ListRooms()
	if err != nil {
		m.err = err
		return
	}
	m.rooms = rooms
	if m.selectedRoomIdx >= len(m.rooms) && m.selectedRoomIdx > 0 {
		m.selectedRoomIdx = len(m.rooms) - 1
	}
}

func (m *Model) refreshRoomData() {
	room := m.activeRoom()
	if room == nil {
		m.messages = nil
		m.members = nil
		return
	}

	messages, err := m.store.RecentMessages(room.ID, constants.MaxTimelineMessages)
	if err != nil {
		m.err = err
		return
	}
	m.messages = messages

	members, err := m.store.ListMembers(room.ID)
	if err != nil {
		m.err = err
		return
	}
	m.members = members
}

func (m *Model) memberListActive() bool {
	if !m.panels.IsOpen() {
		return false
	}
	phase := m.panels.CurrentEntry().Phase
	return phase == panel.PhaseRoomMemberList || phase == panel.PhaseGroupMemberList
}

func (m *Model) visibleMembers() []*store.Member {
	return FilterMembers(m.members, m.memberFilter)
}

func (m *Model) selectedMemberEntry() *store.Member {
	visible := m.visibleMembers()
	if !m.memberListActive() || m.selectedMember >= len(visible) {
		return nil
	}
	return visible[m.selectedMember]
}

// panelViewData assembles the data the side panel views need for the
// current entry. Thread views swap the message set for the thread's own.
func (m *Model) panelViewData() panelData {
	entry := m.panels.CurrentEntry()
	d := panelData{
		entry:   entry,
		selfID:  m.cfg.Client.UserID,
		members: m.members,
		filter:  m.memberFilter,
	}
	room := m.activeRoom()
	if room == nil {
		return d
	}
	d.roomID = room.ID
	d.roomName = room.Name
	d.topic = room.Topic
	d.messages = m.messages

	switch entry.Phase {
	case panel.PhaseRoomSummary, panel.PhasePinnedMessages:
		pinned, err := m.store.PinnedMessages(room.ID)
		if err == nil {
			d.pinned = pinned
		}
		if entry.Phase == panel.PhaseRoomSummary {
			if count, err := m.store.CountMessages(room.ID); err == nil {
				d.messageCount = count
			}
		}
	case panel.PhaseRoomMemberInfo, panel.PhaseGroupMemberInfo:
		// A restored entry can point at a member who is not in the
		// cached list yet.
		var userID string
		switch s := entry.State.(type) {
		case panel.MemberState:
			userID = s.UserID
		case panel.GroupMemberState:
			userID = s.UserID
		}
		if userID != "" && findMember(d.members, userID) == nil {
			if member, err := m.store.GetMember(room.ID, userID); err == nil {
				d.members = append(d.members, member)
			}
		}
	case panel.PhaseThreadView:
		if s, ok := entry.State.(panel.ThreadState); ok {
			thread, err := m.store.ThreadMessages(room.ID, s.RootID)
			if err == nil {
				d.messages = thread
			}
		}
	case panel.PhaseThreadPanel:
		roots, err := m.store.ThreadRoots(room.ID)
		if err == nil {
			d.messages = roots
		}
	case panel.PhaseGroupRoomList, panel.PhaseGroupRoomInfo:
		d.roomList = m.rooms
		// A restored group-room entry can reference a room outside the
		// cached list.
		if s, ok := entry.State.(panel.GroupRoomState); ok && findRoom(d.roomList, s.RoomID) == nil {
			if r, err := m.store.GetRoom(s.RoomID); err == nil {
				d.roomList = append(d.roomList, r)
			}
		}
	}
	return d
}

func (m *Model) renderRoomList(width, height int) string {
	var lines []string
	lines = append(lines, renderSectionTitle("ROOMS", width-4))
	for i, room := range m.rooms {
		name := truncateWithEllipsis(room.Name, width-6)
		if room.IsGroup {
			name = "◎ " + name
		}
		if i == m.selectedRoomIdx {
			lines = append(lines, roomItemSelectedStyle.Width(width-4).Render(name))
		} else {
			lines = append(lines, roomItemStyle.Width(width-4).Render(name))
		}
	}
	if len(m.rooms) == 0 {
		lines = append(lines, dimmedStyle.Render("No rooms"))
	}
	return roomListStyle.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTimeline(width, height int) string {
	var lines []string
	room := m.activeRoom()
	if room == nil {
		lines = append(lines, dimmedStyle.Render("Select a room"))
	} else {
		lines = append(lines, renderSectionTitle(strings.ToUpper(room.Name), width-4))
		visible := m.messages
		if max := height - 4; len(visible) > max && max > 0 {
			visible = visible[len(visible)-max:]
		}
		for _, msg := range visible {
			lines = append(lines, renderMessageLine(msg, m.cfg.Client.UserID, width-4))
		}
	}
	return timelineStyle.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) listenForPanelUpdates() tea.Cmd {
	return func() tea.Msg {
		<-m.panelUpdates
		return panelUpdateMsg{}
	}
}

func (m *Model) requestAssistantReply(roomID string) tea.Cmd {
	if m.assist == nil || !m.assist.Enabled() {
		return nil
	}
	history := m.messages
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.AssistantRequestTimeout)
		defer cancel()

		reply, err := m.assist.Reply(ctx, history)
		if err != nil {
			return assistantReplyMsg{roomID: roomID, err: err}
		}
		if err := m.store.UpsertMember(roomID, m.assist.UserID(), "Assistant", 0); err != nil {
			return assistantReplyMsg{roomID: roomID, err: err}
		}
		if _, err := m.store.AddMessage(roomID, m.assist.UserID(), reply, ""); err != nil {
			return assistantReplyMsg{roomID: roomID, err: err}
		}
		return assistantReplyMsg{roomID: roomID}
	}
}

// Key bindings
var keys = struct {
	Quit          key.Binding
	Help          key.Binding
	Escape        key.Binding
	Enter         key.Binding
	Tab           key.Binding
	ShiftTab      key.Binding
	Up            key.Binding
	Down          key.Binding
	NewRoom       key.Binding
	Delete        key.Binding
	Message       key.Binding
	Pin           key.Binding
	Resolve       key.Binding
	TogglePanel   key.Binding
	Summary       key.Binding
	MemberList    key.Binding
	MemberInfo    key.Binding
	Verify        key.Binding
	Pinned        key.Binding
	Notifications key.Binding
	Files         key.Binding
	Threads       key.Binding
	Filter        key.Binding
}{
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Help:          key.NewBinding(key.WithKeys("?")),
	Escape:        key.NewBinding(key.WithKeys("esc")),
	Enter:         key.NewBinding(key.WithKeys("enter")),
	Tab:           key.NewBinding(key.WithKeys("tab")),
	ShiftTab:      key.NewBinding(key.WithKeys("shift+tab")),
	Up:            key.NewBinding(key.WithKeys("up", "k")),
	Down:          key.NewBinding(key.WithKeys("down", "j")),
	NewRoom:       key.NewBinding(key.WithKeys("n")),
	Delete:        key.NewBinding(key.WithKeys("d")),
	Message:       key.NewBinding(key.WithKeys("m")),
	Pin:           key.NewBinding(key.WithKeys("x")),
	Resolve:       key.NewBinding(key.WithKeys("V")),
	TogglePanel:   key.NewBinding(key.WithKeys("p")),
	Summary:       key.NewBinding(key.WithKeys("s")),
	MemberList:    key.NewBinding(key.WithKeys("u")),
	MemberInfo:    key.NewBinding(key.WithKeys("i")),
	Verify:        key.NewBinding(key.WithKeys("v")),
	Pinned:        key.NewBinding(key.WithKeys("P")),
	Notifications: key.NewBinding(key.WithKeys("N")),
	Files:         key.NewBinding(key.WithKeys("f")),
	Threads:       key.NewBinding(key.WithKeys("t")),
	Filter:        key.NewBinding(key.WithKeys("/")),
}
