package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Room is a conversation. Legacy communities carry IsGroup.
type Room struct {
	ID        string
	Name      string
	Topic     string
	IsGroup   bool
	CreatedAt time.Time
}

// Member is a room membership.
type Member struct {
	RoomID      string
	UserID      string
	DisplayName string
	PowerLevel  int
}

// Message is one timeline event. ThreadRoot links replies to a thread.
type Message struct {
	ID         string
	RoomID     string
	Sender     string
	Body       string
	ThreadRoot string
	Pinned     bool
	CreatedAt  time.Time
}

// CreateRoom creates a new room.
func (s *Store) CreateRoom(name, topic string, isGroup bool) (*Room, error) {
	room := &Room{
		ID:        uuid.New().String(),
		Name:      name,
		Topic:     topic,
		IsGroup:   isGroup,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO rooms (id, name, topic, is_group, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Topic, boolToInt(room.IsGroup), room.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	return room, nil
}

// GetRoom returns a room by id.
func (s *Store) GetRoom(id string) (*Room, error) {
	var room Room
	var isGroup int
	var createdAt int64

	err := s.db.QueryRow(`
		SELECT id, name, topic, is_group, created_at
		FROM rooms WHERE id = ?
	`, id).Scan(&room.ID, &room.Name, &room.Topic, &isGroup, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	room.IsGroup = isGroup != 0
	room.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &room, nil
}

// ListRooms returns all rooms, ordered by creation time.
func (s *Store) ListRooms() ([]*Room, error) {
	rows, err := s.db.Query(`
		SELECT id, name, topic, is_group, created_at
		FROM rooms ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var room Room
		var isGroup int
		var createdAt int64
		if err := rows.Scan(&room.ID, &room.Name, &room.Topic, &isGroup, &createdAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		room.IsGroup = isGroup != 0
		room.CreatedAt = time.Unix(createdAt, 0).UTC()
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}

// DeleteRoom removes a room; members and messages cascade.
func (s *Store) DeleteRoom(id string) error {
	res, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("room not found: %s", id)
	}
	return nil
}

// UpsertMember adds or updates a room membership.
func (s *Store) UpsertMember(roomID, userID, displayName string, powerLevel int) error {
	_, err := s.db.Exec(`
		INSERT INTO members (room_id, user_id, display_name, power_level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(room_id, user_id) DO UPDATE SET
			display_name = excluded.display_name,
			power_level = excluded.power_level
	`, roomID, userID, displayName, powerLevel)
	return err
}

// ListMembers returns a room's members ordered by power level then name.
func (s *Store) ListMembers(roomID string) ([]*Member, error) {
	rows, err := s.db.Query(`
		SELECT room_id, user_id, display_name, power_level
		FROM members WHERE room_id = ?
		ORDER BY power_level DESC, display_name ASC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.RoomID, &m.UserID, &m.DisplayName, &m.PowerLevel); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &m)
	}

	return members, rows.Err()
}

// GetMember returns one membership, or an error if absent.
func (s *Store) GetMember(roomID, userID string) (*Member, error) {
	var m Member
	err := s.db.QueryRow(`
		SELECT room_id, user_id, display_name, power_level
		FROM members WHERE room_id = ? AND user_id = ?
	`, roomID, userID).Scan(&m.RoomID, &m.UserID, &m.DisplayName, &m.PowerLevel)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// AddMessage appends a message to a room's timeline.
func (s *Store) AddMessage(roomID, sender, body, threadRoot string) (*Message, error) {
	msg := &Message{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		Sender:     sender,
		Body:       body,
		ThreadRoot: threadRoot,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (id, room_id, sender, body, thread_root, pinned, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, msg.ID, msg.RoomID, msg.Sender, msg.Body, msg.ThreadRoot, msg.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}

	return msg, nil
}

// RecentMessages returns the most recent top-level messages in
// chronological order.
func (s *Store) RecentMessages(roomID string, limit int) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, sender, body, thread_root, pinned, created_at FROM (
			SELECT id, room_id, sender, body, thread_root, pinned, created_at
			FROM messages
			WHERE room_id = ? AND thread_root = ''
			ORDER BY created_at DESC
			LIMIT ?
		) ORDER BY created_at ASC
	`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ThreadMessages returns a thread: the root message followed by its
// replies in chronological order.
func (s *Store) ThreadMessages(roomID, rootID string) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, sender, body, thread_root, pinned, created_at
		FROM messages
		WHERE room_id = ? AND (id = ? OR thread_root = ?)
		ORDER BY created_at ASC
	`, roomID, rootID, rootID)
	if err != nil {
		return nil, fmt.Errorf("thread messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ThreadRoots returns the root messages of all threads in a room.
func (s *Store) ThreadRoots(roomID string) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, sender, body, thread_root, pinned, created_at
		FROM messages
		WHERE room_id = ? AND id IN (
			SELECT DISTINCT thread_root FROM messages
			WHERE room_id = ? AND thread_root != ''
		)
		ORDER BY created_at ASC
	`, roomID, roomID)
	if err != nil {
		return nil, fmt.Errorf("thread roots: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// SetPinned marks or unmarks a message as pinned.
func (s *Store) SetPinned(messageID string, pinned bool) error {
	res, err := s.db.Exec(`
		UPDATE messages SET pinned = ? WHERE id = ?
	`, boolToInt(pinned), messageID)
	if err != nil {
		return fmt.Errorf("set pinned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("message not found: %s", messageID)
	}
	return nil
}

// PinnedMessages returns a room's pinned messages in chronological order.
func (s *Store) PinnedMessages(roomID string) ([]*Message, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, sender, body, thread_root, pinned, created_at
		FROM messages
		WHERE room_id = ? AND pinned = 1
		ORDER BY created_at ASC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("pinned messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CountMessages returns the number of messages in a room.
func (s *Store) CountMessages(roomID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM messages WHERE room_id = ?
	`, roomID).Scan(&count)
	return count, err
}

func scanMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var m Message
		var pinned int
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Body, &m.ThreadRoot, &pinned, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Pinned = pinned != 0
		m.CreatedAt = time.Unix(0, createdAt).UTC()
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
