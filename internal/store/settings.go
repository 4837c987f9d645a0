package store

import (
	"database/sql"
	"time"
)

// GetValue reads a settings value. An empty roomID addresses the
// device-scoped row; a non-empty roomID addresses the room-device-scoped
// row. A missing row yields an empty value, not an error.
func (s *Store) GetValue(key, roomID string) (string, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM settings
		WHERE key = ? AND room_id = ?
	`, key, roomID).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetValue stores a settings value, replacing any previous one for the
// same key and room scope.
func (s *Store) SetValue(key, roomID, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, room_id, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key, room_id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, roomID, value, time.Now().UTC().Unix())

	return err
}

// DeleteValue removes a settings row. Missing rows are not an error.
func (s *Store) DeleteValue(key, roomID string) error {
	_, err := s.db.Exec(`
		DELETE FROM settings
		WHERE key = ? AND room_id = ?
	`, key, roomID)
	return err
}
