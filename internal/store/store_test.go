package store

import (
	"path/filepath"
	"testing"
)

func setupStoreTest(t *testing.T) (*Store, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return s, func() { s.Close() }
}

func TestOpenMemory(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer s.Close()

	// Verify tables exist by querying them
	for _, table := range []string{"rooms", "members", "messages", "settings"} {
		if _, err := s.db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
			t.Errorf("%s table not created: %v", table, err)
		}
	}
}

func TestRoomCRUD(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	// Create
	room, err := s.CreateRoom("general", "all hands", false)
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	if room.ID == "" {
		t.Error("expected non-empty room ID")
	}
	if room.Name != "general" {
		t.Errorf("expected name=general, got %s", room.Name)
	}
	if room.IsGroup {
		t.Error("expected is_group=false")
	}

	// Get
	fetched, err := s.GetRoom(room.ID)
	if err != nil {
		t.Fatalf("GetRoom() error: %v", err)
	}
	if fetched.ID != room.ID || fetched.Topic != "all hands" {
		t.Errorf("expected fetched room to match, got %+v", fetched)
	}

	// Group flag round trip
	group, err := s.CreateRoom("old-community", "", true)
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	fetched, _ = s.GetRoom(group.ID)
	if !fetched.IsGroup {
		t.Error("expected is_group=true")
	}

	// List
	rooms, err := s.ListRooms()
	if err != nil {
		t.Fatalf("ListRooms() error: %v", err)
	}
	if len(rooms) != 2 {
		t.Errorf("expected 2 rooms, got %d", len(rooms))
	}

	// Delete
	if err := s.DeleteRoom(room.ID); err != nil {
		t.Fatalf("DeleteRoom() error: %v", err)
	}
	rooms, _ = s.ListRooms()
	if len(rooms) != 1 {
		t.Errorf("expected 1 room after delete, got %d", len(rooms))
	}

	if err := s.DeleteRoom("nonexistent-id"); err == nil {
		t.Error("expected error deleting non-existent room")
	}
}

func TestMembers(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	room, _ := s.CreateRoom("members-test", "", false)

	if err := s.UpsertMember(room.ID, "@alice:parley", "Alice", 100); err != nil {
		t.Fatalf("UpsertMember() error: %v", err)
	}
	if err := s.UpsertMember(room.ID, "@bob:parley", "Bob", 0); err != nil {
		t.Fatalf("UpsertMember() error: %v", err)
	}

	members, err := s.ListMembers(room.ID)
	if err != nil {
		t.Fatalf("ListMembers() error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	// Highest power level first
	if members[0].UserID != "@alice:parley" {
		t.Errorf("expected alice first, got %s", members[0].UserID)
	}

	// Upsert updates in place
	if err := s.UpsertMember(room.ID, "@bob:parley", "Bobby", 50); err != nil {
		t.Fatalf("UpsertMember() error: %v", err)
	}
	m, err := s.GetMember(room.ID, "@bob:parley")
	if err != nil {
		t.Fatalf("GetMember() error: %v", err)
	}
	if m.DisplayName != "Bobby" || m.PowerLevel != 50 {
		t.Errorf("expected updated member, got %+v", m)
	}

	if _, err := s.GetMember(room.ID, "@nobody:parley"); err == nil {
		t.Error("expected error for unknown member")
	}
}

func TestMessagesAndThreads(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	room, _ := s.CreateRoom("messages-test", "", false)

	m1, err := s.AddMessage(room.ID, "@alice:parley", "hello", "")
	if err != nil {
		t.Fatalf("AddMessage() error: %v", err)
	}
	m2, _ := s.AddMessage(room.ID, "@bob:parley", "hi", "")
	s.AddMessage(room.ID, "@bob:parley", "reply one", m1.ID)
	s.AddMessage(room.ID, "@alice:parley", "reply two", m1.ID)

	// Recent excludes thread replies and is chronological
	recent, err := s.RecentMessages(room.ID, 10)
	if err != nil {
		t.Fatalf("RecentMessages() error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 top-level messages, got %d", len(recent))
	}
	if recent[0].ID != m1.ID || recent[1].ID != m2.ID {
		t.Errorf("expected chronological order, got %s then %s", recent[0].Body, recent[1].Body)
	}

	// Limit keeps the newest
	limited, _ := s.RecentMessages(room.ID, 1)
	if len(limited) != 1 || limited[0].ID != m2.ID {
		t.Errorf("expected only the newest message, got %+v", limited)
	}

	// Thread returns root plus replies
	thread, err := s.ThreadMessages(room.ID, m1.ID)
	if err != nil {
		t.Fatalf("ThreadMessages() error: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("expected 3 thread messages, got %d", len(thread))
	}
	if thread[0].ID != m1.ID {
		t.Errorf("expected thread to start at the root, got %s", thread[0].Body)
	}

	// Thread roots
	roots, err := s.ThreadRoots(room.ID)
	if err != nil {
		t.Fatalf("ThreadRoots() error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != m1.ID {
		t.Errorf("expected one thread root, got %+v", roots)
	}

	// Count
	count, err := s.CountMessages(room.ID)
	if err != nil {
		t.Fatalf("CountMessages() error: %v", err)
	}
	if count != 4 {
		t.Errorf("expected count=4, got %d", count)
	}
}

func TestPinnedMessages(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	room, _ := s.CreateRoom("pins-test", "", false)
	m1, _ := s.AddMessage(room.ID, "@alice:parley", "pin me", "")
	s.AddMessage(room.ID, "@bob:parley", "not me", "")

	if err := s.SetPinned(m1.ID, true); err != nil {
		t.Fatalf("SetPinned() error: %v", err)
	}

	pinned, err := s.PinnedMessages(room.ID)
	if err != nil {
		t.Fatalf("PinnedMessages() error: %v", err)
	}
	if len(pinned) != 1 || pinned[0].ID != m1.ID {
		t.Errorf("expected one pinned message, got %+v", pinned)
	}

	if err := s.SetPinned(m1.ID, false); err != nil {
		t.Fatalf("SetPinned() error: %v", err)
	}
	pinned, _ = s.PinnedMessages(room.ID)
	if len(pinned) != 0 {
		t.Errorf("expected no pinned messages, got %d", len(pinned))
	}

	if err := s.SetPinned("nonexistent-id", true); err == nil {
		t.Error("expected error pinning non-existent message")
	}
}

func TestCascadeDelete(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	room, _ := s.CreateRoom("cascade-test", "", false)
	s.UpsertMember(room.ID, "@alice:parley", "Alice", 0)
	s.AddMessage(room.ID, "@alice:parley", "test message", "")

	if err := s.DeleteRoom(room.ID); err != nil {
		t.Fatalf("DeleteRoom() error: %v", err)
	}

	members, err := s.ListMembers(room.ID)
	if err != nil {
		t.Fatalf("ListMembers() error: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected 0 members after cascade delete, got %d", len(members))
	}

	count, _ := s.CountMessages(room.ID)
	if count != 0 {
		t.Errorf("expected 0 messages after cascade delete, got %d", count)
	}
}

func TestSettings(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	// Missing value is empty, not an error
	value, err := s.GetValue("panel.global", "")
	if err != nil {
		t.Fatalf("GetValue() error: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value, got %q", value)
	}

	// Device-scoped and room-scoped rows are independent
	if err := s.SetValue("panel.global", "", `{"isOpen":true}`); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}
	if err := s.SetValue("panel.room", "!a", `{"isOpen":false}`); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}

	value, _ = s.GetValue("panel.global", "")
	if value != `{"isOpen":true}` {
		t.Errorf("expected global value, got %q", value)
	}
	value, _ = s.GetValue("panel.room", "!a")
	if value != `{"isOpen":false}` {
		t.Errorf("expected room value, got %q", value)
	}
	value, _ = s.GetValue("panel.room", "!b")
	if value != "" {
		t.Errorf("expected empty value for other room, got %q", value)
	}

	// Overwrite
	if err := s.SetValue("panel.room", "!a", `{"isOpen":true}`); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}
	value, _ = s.GetValue("panel.room", "!a")
	if value != `{"isOpen":true}` {
		t.Errorf("expected overwritten value, got %q", value)
	}

	// Delete
	if err := s.DeleteValue("panel.room", "!a"); err != nil {
		t.Fatalf("DeleteValue() error: %v", err)
	}
	value, _ = s.GetValue("panel.room", "!a")
	if value != "" {
		t.Errorf("expected empty value after delete, got %q", value)
	}
}
