package session

import (
	"sync"

	"helpbot/internal/domain"
)

// DefaultMaxTurns keeps the most recent five exchanges per user.
const DefaultMaxTurns = 10

// Manager tracks a bounded rolling conversation history per user.
// Sessions live for the process lifetime only; nothing is persisted.
//
// The outer mutex only guards the session map. Each session has its
// own lock, so appends for different users proceed in parallel while
// appends for the same user are serialized.
type Manager struct {
	maxTurns int

	mu       sync.Mutex
	sessions map[string]*userSession
}

type userSession struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewManager creates a session manager bounding each user to maxTurns
// entries (DefaultMaxTurns if non-positive).
func NewManager(maxTurns int) *Manager {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Manager{maxTurns: maxTurns, sessions: make(map[string]*userSession)}
}

// AppendUser appends a user turn, creating the session if absent.
func (m *Manager) AppendUser(userID, text string) {
	m.append(userID, domain.Turn{Role: domain.RoleUser, Content: text})
}

// AppendAssistant appends an assistant turn, creating the session if absent.
func (m *Manager) AppendAssistant(userID, text string) {
	m.append(userID, domain.Turn{Role: domain.RoleAssistant, Content: text})
}

// History returns a copy of the user's current turns, oldest first.
func (m *Manager) History(userID string) []domain.Turn {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Reset clears the user's session; subsequent turns start fresh.
func (m *Manager) Reset(userID string) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

func (m *Manager) append(userID string, turn domain.Turn) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	// Truncate after every append so memory stays bounded regardless
	// of the caller's user/assistant pattern.
	if len(s.turns) > m.maxTurns {
		s.turns = append([]domain.Turn(nil), s.turns[len(s.turns)-m.maxTurns:]...)
	}
}

func (m *Manager) session(userID string) *userSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &userSession{}
		m.sessions[userID] = s
	}
	return s
}

var _ domain.Sessions = (*Manager)(nil)
