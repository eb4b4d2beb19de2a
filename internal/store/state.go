package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SelectedThreadKey holds the selected thread id as a string-encoded integer.
const SelectedThreadKey = "selected_dm_thread_id"

// GetState returns a value for (account, key), or "" when unset.
func GetState(db *sql.DB, account, key string) (string, error) {
	row := db.QueryRow("SELECT value FROM client_state WHERE account = ? AND key = ?", account, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetState stores a value for (account, key).
func SetState(db *sql.DB, account, key, value string) error {
	_, err := db.Exec(
		"INSERT OR REPLACE INTO client_state (account, key, value, updated_at) VALUES (?, ?, ?, ?)",
		account, key, value, time.Now().UnixMilli(),
	)
	return err
}

// DeleteState erases (account, key).
func DeleteState(db *sql.DB, account, key string) error {
	_, err := db.Exec("DELETE FROM client_state WHERE account = ? AND key = ?", account, key)
	return err
}

// Selection persists the selected thread for one account. The account is
// read on every access so a token swapped for another user's never reads
// or writes the previous user's selection.
type Selection struct {
	db      *sql.DB
	account func() string
}

// NewSelection scopes selection persistence to a fixed account.
func NewSelection(db *sql.DB, account string) *Selection {
	return NewAccountSelection(db, func() string { return account })
}

// NewAccountSelection scopes selection persistence to whatever account
// returns at the time of each call.
func NewAccountSelection(db *sql.DB, account func() string) *Selection {
	return &Selection{db: db, account: account}
}

// Account returns the current scoping account id.
func (s *Selection) Account() string {
	return s.account()
}

// Load returns the persisted thread id. A missing or malformed value reads
// as no selection.
func (s *Selection) Load() (int64, bool, error) {
	value, err := GetState(s.db, s.account(), SelectedThreadKey)
	if err != nil {
		return 0, false, fmt.Errorf("load selection: %w", err)
	}
	if value == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

// Save persists threadID as the selection.
func (s *Selection) Save(threadID int64) error {
	if err := SetState(s.db, s.account(), SelectedThreadKey, strconv.FormatInt(threadID, 10)); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Clear erases the persisted selection.
func (s *Selection) Clear() error {
	if err := DeleteState(s.db, s.account(), SelectedThreadKey); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
