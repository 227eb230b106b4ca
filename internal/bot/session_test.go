package bot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestBeginCreatesAwaitingPhotoSession(t *testing.T) {
	m := NewSessionManager()

	session := m.Begin(42)
	if session.State != StateAwaitingPhoto {
		t.Errorf("expected initial state %q, got %q", StateAwaitingPhoto, session.State)
	}

	got, ok := m.Get(42)
	if !ok || got != session {
		t.Error("Begin should register the session under its chat id")
	}
	if _, ok := m.Get(43); ok {
		t.Error("other chats must not see the session")
	}
}

func TestBeginReplacesAbandonedSession(t *testing.T) {
	dir := t.TempDir()
	m := NewSessionManager()

	old := m.Begin(1)
	old.Draft.PhotoRawPath = writeTempFile(t, dir, "old_raw.jpg")
	old.Draft.PhotoOptimizedPath = writeTempFile(t, dir, "old_raw_optimized.jpg")

	fresh := m.Begin(1)
	if fresh == old {
		t.Fatal("expected a new session")
	}
	if _, err := os.Stat(old.Draft.PhotoRawPath); !os.IsNotExist(err) {
		t.Error("abandoned raw file should be removed")
	}
	if _, err := os.Stat(old.Draft.PhotoOptimizedPath); !os.IsNotExist(err) {
		t.Error("abandoned optimized file should be removed")
	}
}

func TestCancelRemovesDraftFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewSessionManager()

	session := m.Begin(7)
	session.Draft.PhotoRawPath = writeTempFile(t, dir, "raw.jpg")
	session.Draft.PhotoOptimizedPath = writeTempFile(t, dir, "raw_optimized.jpg")

	m.Cancel(7)

	if _, ok := m.Get(7); ok {
		t.Error("canceled session should be gone")
	}
	if _, err := os.Stat(session.Draft.PhotoRawPath); !os.IsNotExist(err) {
		t.Error("raw draft file should be removed")
	}
	if _, err := os.Stat(session.Draft.PhotoOptimizedPath); !os.IsNotExist(err) {
		t.Error("optimized draft file should be removed")
	}

	// Canceling an idle chat is a no-op.
	m.Cancel(7)
}

func TestEndKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewSessionManager()

	session := m.Begin(9)
	session.Draft.PhotoRawPath = writeTempFile(t, dir, "raw.jpg")
	session.Draft.PhotoOptimizedPath = writeTempFile(t, dir, "raw_optimized.jpg")

	m.End(9)

	if _, ok := m.Get(9); ok {
		t.Error("ended session should be gone")
	}
	if _, err := os.Stat(session.Draft.PhotoRawPath); err != nil {
		t.Error("confirmed raw file should survive")
	}
	if _, err := os.Stat(session.Draft.PhotoOptimizedPath); err != nil {
		t.Error("confirmed optimized file should survive")
	}
}

func TestCancelToleratesMissingFiles(t *testing.T) {
	m := NewSessionManager()

	session := m.Begin(3)
	session.Draft.PhotoRawPath = filepath.Join(t.TempDir(), "never_written.jpg")

	// Must not panic or error on files that were never created.
	m.Cancel(3)
}
