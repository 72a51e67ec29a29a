package session

import (
	"testing"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCredentialLifecycle(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if s.IsAuthenticated() {
		t.Error("fresh store reports authenticated")
	}
	if _, ok := s.Credential(); ok {
		t.Error("fresh store holds a credential")
	}

	if err := s.SaveCredential("token-abc"); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	got, ok := s.Credential()
	if !ok || got != "token-abc" {
		t.Errorf("Credential = %q, %v, want token-abc, true", got, ok)
	}
	if !s.IsAuthenticated() {
		t.Error("store with credential reports unauthenticated")
	}

	if err := s.DeleteCredential(); err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("credential survived deletion")
	}
}

// TestUserIDSurvivesSessionTeardown verifies only the credential is removed
// on expiry; the cached user id stays.
func TestUserIDSurvivesSessionTeardown(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if err := s.SaveCredential("token"); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	if err := s.SetUserID(42); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}

	if err := s.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("credential survived Invalidate")
	}
	id, ok := s.UserID()
	if !ok || id != 42 {
		t.Errorf("UserID after teardown = %d, %v, want 42, true", id, ok)
	}
}

func TestSetUserIDRejectsZero(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	if err := s.SetUserID(0); err == nil {
		t.Error("SetUserID(0) succeeded, want error")
	}
}

// TestDeviceIDStableAcrossReopen verifies the device id is generated once
// and survives closing and reopening the store.
func TestDeviceIDStableAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	first := s.DeviceID()
	if first == "" {
		t.Fatal("fresh store has empty device id")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := openTestStore(t, dir)
	if got := s2.DeviceID(); got != first {
		t.Errorf("device id changed across reopen: %q -> %q", first, got)
	}
}

// TestValuesPersistAcrossReopen verifies the store is durable, not an
// in-memory cache.
func TestValuesPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveCredential("persisted"); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	if err := s.SetUserID(7); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := openTestStore(t, dir)
	if got, ok := s2.Credential(); !ok || got != "persisted" {
		t.Errorf("Credential = %q, %v, want persisted, true", got, ok)
	}
	if id, ok := s2.UserID(); !ok || id != 7 {
		t.Errorf("UserID = %d, %v, want 7, true", id, ok)
	}
}
