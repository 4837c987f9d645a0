package tui

import (
	"strings"
	"testing"

	"github.com/parley-im/parley/internal/dispatch"
	"github.com/parley-im/parley/internal/panel"
	"github.com/parley-im/parley/internal/store"
	"github.com/parley-im/parley/internal/verification"
)

type memorySettings struct {
	values map[string]string
}

func (m *memorySettings) GetValue(key, roomID string) (string, error) {
	return m.values[key+"|"+roomID], nil
}

func (m *memorySettings) SetValue(key, roomID, value string) error {
	m.values[key+"|"+roomID] = value
	return nil
}

func setupPanelTest(t *testing.T) *panel.Store {
	t.Helper()
	d := dispatch.New()
	tracker := verification.NewTracker()
	settings := &memorySettings{values: make(map[string]string)}
	panels := panel.NewStore(d, settings, tracker)
	panels.Start()
	t.Cleanup(panels.Stop)

	d.Fire(dispatch.Payload{Action: dispatch.ActionViewRoom, RoomID: "!room"})
	return panels
}

func TestClosePanelPopsHistory(t *testing.T) {
	panels := setupPanelTest(t)

	panels.SetPanel(panel.PhaseRoomMemberList, nil, false, "")
	panels.PushPanel(panel.PhaseRoomMemberInfo, panel.MemberState{UserID: "@alice:parley"}, false, "")

	if err := closePanel(panels); err != nil {
		t.Fatalf("closePanel() error: %v", err)
	}
	if got := panels.CurrentEntry().Phase; got != panel.PhaseRoomMemberList {
		t.Errorf("expected pop back to member list, got %s", got)
	}
	if !panels.IsOpen() {
		t.Error("expected panel to remain open after pop")
	}
}

func TestClosePanelClosesLastView(t *testing.T) {
	panels := setupPanelTest(t)

	panels.SetPanel(panel.PhaseRoomMemberList, nil, false, "")
	if !panels.IsOpen() {
		t.Fatal("expected panel open")
	}

	if err := closePanel(panels); err != nil {
		t.Fatalf("closePanel() error: %v", err)
	}
	if panels.IsOpen() {
		t.Error("expected panel closed when only one view remains")
	}
	if got := panels.HistoryLen(""); got != 1 {
		t.Errorf("expected history preserved across close, got len=%d", got)
	}
}

func TestRenderPanelAllPhases(t *testing.T) {
	members := []*store.Member{{UserID: "@alice:parley", DisplayName: "Alice", PowerLevel: 100}}
	messages := []*store.Message{{ID: "m1", Sender: "@alice:parley", Body: "hello"}}
	rooms := []*store.Room{{ID: "!r1", Name: "general", Topic: "talk"}}

	cases := []struct {
		phase panel.Phase
		state panel.State
		want  string
	}{
		{panel.PhaseRoomSummary, nil, "ROOM INFO"},
		{panel.PhaseRoomMemberList, nil, "MEMBERS"},
		{panel.PhaseRoomMemberInfo, panel.MemberState{UserID: "@alice:parley"}, "Alice"},
		{panel.PhaseRoom3pidMemberInfo, panel.ThreePIDMemberState{Address: "a@example.com"}, "a@example.com"},
		{panel.PhaseEncryptionPanel, panel.VerificationState{UserID: "@alice:parley"}, "@alice:parley"},
		{panel.PhasePinnedMessages, nil, "PINNED"},
		{panel.PhaseNotificationPanel, nil, "NOTIFICATIONS"},
		{panel.PhaseFilePanel, nil, "FILES"},
		{panel.PhaseTimeline, nil, "TIMELINE"},
		{panel.PhaseWidget, panel.WidgetState{WidgetID: "w1"}, "w1"},
		{panel.PhaseThreadView, panel.ThreadState{RootID: "m1"}, "THREAD"},
		{panel.PhaseThreadPanel, nil, "THREADS"},
		{panel.PhaseGroupMemberList, nil, "COMMUNITY MEMBERS"},
		{panel.PhaseGroupMemberInfo, panel.GroupMemberState{UserID: "@alice:parley"}, "Alice"},
		{panel.PhaseGroupRoomList, nil, "general"},
		{panel.PhaseGroupRoomInfo, panel.GroupRoomState{RoomID: "!r1"}, "general"},
	}

	for _, tc := range cases {
		d := panelData{
			entry:    panel.Entry{Phase: tc.phase, State: tc.state},
			roomID:   "!r1",
			roomName: "general",
			topic:    "talk",
			selfID:   "@me:parley",
			members:  members,
			messages: messages,
			pinned:   messages,
			roomList: rooms,
		}
		out := RenderPanel(d, 40, 20)
		if out == "" {
			t.Errorf("%s: empty render", tc.phase)
			continue
		}
		if !strings.Contains(out, tc.want) {
			t.Errorf("%s: expected output to contain %q", tc.phase, tc.want)
		}
	}
}

func TestRenderPanelUnknownPhase(t *testing.T) {
	out := RenderPanel(panelData{}, 40, 20)
	if !strings.Contains(out, "No view selected") {
		t.Error("expected empty panel placeholder")
	}
}
