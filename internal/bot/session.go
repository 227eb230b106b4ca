package bot

import (
	"log/slog"
	"os"
	"sync"

	"github.com/gpowereth/blogbot/internal/models"
)

// Conversation states for the post-creation dialogue.
const (
	StateAwaitingPhoto        = "awaiting_photo"
	StateAwaitingHeading      = "awaiting_heading"
	StateAwaitingCaption      = "awaiting_caption"
	StateAwaitingConfirmation = "awaiting_confirmation"
)

// Session is one chat's in-progress post conversation. The Draft is owned
// exclusively by the session; nothing else holds a reference to it.
type Session struct {
	ChatID int64
	State  string
	Draft  models.Draft
}

// SessionManager holds every active conversation keyed by chat ID. Handlers
// look sessions up per update; there is no ambient per-user state anywhere
// else. The map is guarded so the update loop may be made concurrent without
// sessions for different chats sharing anything mutable.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[int64]*Session)}
}

// Begin starts a fresh session for the chat. An abandoned previous session
// is canceled first so its temp files do not leak.
func (m *SessionManager) Begin(chatID int64) *Session {
	m.mu.Lock()
	if old, ok := m.sessions[chatID]; ok {
		removeDraftFiles(&old.Draft)
	}
	session := &Session{ChatID: chatID, State: StateAwaitingPhoto}
	m.sessions[chatID] = session
	m.mu.Unlock()
	return session
}

func (m *SessionManager) Get(chatID int64) (*Session, bool) {
	m.mu.RLock()
	session, ok := m.sessions[chatID]
	m.mu.RUnlock()
	return session, ok
}

// End terminates the session and keeps its files on disk (the confirmed
// post references them).
func (m *SessionManager) End(chatID int64) {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
}

// Cancel terminates the session and deletes any draft files that still
// exist. It is a no-op for chats with no active session.
func (m *SessionManager) Cancel(chatID int64) {
	m.mu.Lock()
	session, ok := m.sessions[chatID]
	if ok {
		delete(m.sessions, chatID)
	}
	m.mu.Unlock()

	if ok {
		removeDraftFiles(&session.Draft)
	}
}

func removeDraftFiles(draft *models.Draft) {
	for _, path := range []string{draft.PhotoRawPath, draft.PhotoOptimizedPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn(err.Error())
		}
	}
}
