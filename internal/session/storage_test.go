package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"kanban/internal/session"
)

func TestFileStorage_SetGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := session.NewFileStorage(path)

	if _, ok := s.Get(session.AccessTokenKey); ok {
		t.Fatal("expected empty storage")
	}

	if err := s.Set(session.AccessTokenKey, "A"); err != nil {
		t.Fatalf("set access token: %v", err)
	}
	if err := s.Set(session.RefreshTokenKey, "R"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}

	// A fresh instance on the same path sees the values.
	reopened := session.NewFileStorage(path)
	if v, _ := reopened.Get(session.AccessTokenKey); v != "A" {
		t.Errorf("expected access token A, got %q", v)
	}
	if v, _ := reopened.Get(session.RefreshTokenKey); v != "R" {
		t.Errorf("expected refresh token R, got %q", v)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	if err := s.Remove(session.AccessTokenKey); err != nil {
		t.Fatalf("remove access token: %v", err)
	}
	if _, ok := s.Get(session.AccessTokenKey); ok {
		t.Error("access token should be gone")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("session file should remain while refresh token is stored")
	}

	if err := s.Remove(session.RefreshTokenKey); err != nil {
		t.Fatalf("remove refresh token: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file should be deleted once empty")
	}
}

func TestFileStorage_RemoveMissingKey(t *testing.T) {
	s := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	if err := s.Remove(session.AccessTokenKey); err != nil {
		t.Errorf("expected no error removing missing key, got %v", err)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := session.NewFileStorage(path)

	if _, ok := s.Get(session.AccessTokenKey); ok {
		t.Error("corrupt file should read as empty")
	}
	if err := s.Set(session.AccessTokenKey, "A"); err == nil {
		t.Error("expected error writing over corrupt file")
	}
}

func TestMemoryStorage(t *testing.T) {
	m := session.NewMemoryStorage()
	if err := m.Set(session.AccessTokenKey, "A"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := m.Get(session.AccessTokenKey); !ok || v != "A" {
		t.Errorf("expected A, got %q (present=%v)", v, ok)
	}
	if err := m.Remove(session.AccessTokenKey); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := m.Get(session.AccessTokenKey); ok {
		t.Error("expected key removed")
	}
}
