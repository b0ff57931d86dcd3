package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
)

// InitialScreen is the screen label of a session before any reply arrived.
const InitialScreen = "INITIAL"

// Session is one simulated USSD dialog.
type Session struct {
	// ID is the local lookup key. Never changes.
	ID string `json:"id"`
	// SessionID is the correlation token sent to the remote endpoint as
	// UserSessionId. Stable for the life of the session, including resets.
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
	Network     string `json:"network"`
	// ConversationHistory is the canonical turn order, append-only.
	ConversationHistory []*ConversationEntry `json:"conversationHistory"`
	// CurrentScreen is the latest reply's title, or InitialScreen.
	CurrentScreen string    `json:"currentScreen"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActivity  time.Time `json:"lastActivity"`
}

// ConversationEntry is one request/response turn. Immutable once appended.
type ConversationEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Request   *ussd.RootRequest `json:"request"`
	// Response is nil when the call failed.
	Response  *ussd.RootResponse `json:"response"`
	UserInput string             `json:"userInput"`
	Error     string             `json:"error,omitempty"`
}

// UpdateSession is the partial-update request for a session.
type UpdateSession struct {
	CurrentScreen *string
	IsActive      *bool
}

// CreateSession registers a new session for the given subscriber and returns
// a snapshot of it.
func (s *Store) CreateSession(phoneNumber, network string) *Session {
	now := time.Now()
	session := &Session{
		ID:                  uuid.NewString(),
		SessionID:           shortuuid.New(),
		PhoneNumber:         phoneNumber,
		Network:             network,
		ConversationHistory: []*ConversationEntry{},
		CurrentScreen:       InitialScreen,
		IsActive:            true,
		CreatedAt:           now,
		LastActivity:        now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.clone()
}

// GetSession returns a snapshot of the session, or nil if it does not exist.
func (s *Store) GetSession(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return session.clone()
}

// ListSessions returns snapshots of all sessions ordered by last activity,
// most recently active first. Callers rely on this ordering to present a
// recency-sorted picker.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session.clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].LastActivity.Equal(list[j].LastActivity) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].LastActivity.After(list[j].LastActivity)
	})
	return list
}

// UpdateSession merges the given fields into the stored session and refreshes
// its last activity. Missing sessions are a silent no-op: delete-then-update
// races from the caller are expected.
func (s *Store) UpdateSession(id string, update *UpdateSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return
	}
	if update.CurrentScreen != nil {
		session.CurrentScreen = *update.CurrentScreen
	}
	if update.IsActive != nil {
		session.IsActive = *update.IsActive
	}
	session.touch()
}

// AppendTurn appends one turn to the session's conversation history.
// Missing sessions are a silent no-op.
func (s *Store) AppendTurn(id string, entry *ConversationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.ConversationHistory = append(session.ConversationHistory, entry)
	session.touch()
}

// ResetSession clears the conversation history and screen label. Identity
// fields (id, sessionId, phone number, network) are untouched.
func (s *Store) ResetSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.ConversationHistory = []*ConversationEntry{}
	session.CurrentScreen = InitialScreen
	session.touch()
}

// DeleteSession removes the session entirely.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// touch refreshes last activity, keeping it monotonically non-decreasing.
func (se *Session) touch() {
	if now := time.Now(); now.After(se.LastActivity) {
		se.LastActivity = now
	}
}

// clone returns a snapshot safe to hand outside the store. Turns are
// immutable once appended, so sharing the entry pointers is fine; only the
// slice header and the session itself are copied.
func (se *Session) clone() *Session {
	copied := *se
	copied.ConversationHistory = make([]*ConversationEntry, len(se.ConversationHistory))
	copy(copied.ConversationHistory, se.ConversationHistory)
	return &copied
}
