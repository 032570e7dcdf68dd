package store

import (
	"database/sql"
	"strconv"
)

const defaultGroupKey = "default_group_id"

// SetSetting upserts a key-value pair in the settings table.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetSetting returns the value for a settings key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// DeleteSetting removes a settings key. Missing keys are not an error.
func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// DefaultGroupID returns the remembered submission group, if any.
func (s *Store) DefaultGroupID() (int64, bool, error) {
	v, err := s.GetSetting(defaultGroupKey)
	if err != nil || v == "" {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// SetDefaultGroupID remembers the group to preselect for later submissions.
func (s *Store) SetDefaultGroupID(id int64) error {
	return s.SetSetting(defaultGroupKey, strconv.FormatInt(id, 10))
}

// ClearDefaultGroupID forgets the remembered group.
func (s *Store) ClearDefaultGroupID() error {
	return s.DeleteSetting(defaultGroupKey)
}
