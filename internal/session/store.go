// Package session persists the authentication credential, the cached user
// id and the device identity across app launches.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	keyCredential = "credential"
	keyUserID     = "user_id"
	keyDeviceID   = "device_id"
)

// Store is a small SQLite-backed key-value store. It is the only mutable
// state shared across sync steps: the orchestrator reads it, and only
// session teardown writes the credential away.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the session database at dir/session.db. A device
// id is generated on first open and kept for the lifetime of the install.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	s := &Store{db: db}
	if _, ok := s.get(keyDeviceID); !ok {
		if err := s.set(keyDeviceID, uuid.NewString()); err != nil {
			db.Close()
			return nil, fmt.Errorf("storing device id: %w", err)
		}
	}
	return s, nil
}

func (s *Store) get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err != nil {
		// sql.ErrNoRows and read failures both read as absence; the sync
		// run then degrades to fetch-only instead of failing outright.
		return "", false
	}
	return value, true
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`,
		key, value,
	)
	return err
}

func (s *Store) delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key)
	return err
}

// Credential returns the stored bearer token, if any.
func (s *Store) Credential() (string, bool) {
	return s.get(keyCredential)
}

// SaveCredential stores the bearer token.
func (s *Store) SaveCredential(token string) error {
	return s.set(keyCredential, token)
}

// DeleteCredential removes the bearer token.
func (s *Store) DeleteCredential() error {
	return s.delete(keyCredential)
}

// IsAuthenticated reports whether a credential is present.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Credential()
	return ok
}

// UserID returns the cached user id, if any.
func (s *Store) UserID() (int, bool) {
	value, ok := s.get(keyUserID)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(value)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// SetUserID caches the user id. The id is stable and survives session
// teardown; only the credential is deleted on expiry.
func (s *Store) SetUserID(id int) error {
	if id == 0 {
		return errors.New("user id must be non-zero")
	}
	return s.set(keyUserID, strconv.Itoa(id))
}

// DeviceID returns the stable per-install device identifier.
func (s *Store) DeviceID() string {
	id, _ := s.get(keyDeviceID)
	return id
}

// Token implements the transport client's TokenSource.
func (s *Store) Token() (string, bool) {
	return s.Credential()
}

// Invalidate implements the transport client's TokenSource.
func (s *Store) Invalidate() error {
	return s.DeleteCredential()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
