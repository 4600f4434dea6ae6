package auth

import (
	"net/http"
	"time"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// DevUser is the commissioner every mock login signs in as
var DevUser = User{
	ID:       "dev-user-123",
	Email:    "dev@fcdraft.local",
	Name:     "Dev Commissioner",
	Username: "devuser",
	Groups:   []string{"users", "admins"},
}

// MockAuth provides a mock authentication for local development
type MockAuth struct {
	sessions *sessionStore
}

// NewMockAuth creates a new mock authentication handler
func NewMockAuth() *MockAuth {
	return &MockAuth{sessions: newSessionStore()}
}

// IssueSession creates a 24h session for user and returns its id, usable as a
// cookie value or bearer token
func (m *MockAuth) IssueSession(user User) string {
	return m.issue(user).ID
}

func (m *MockAuth) issue(user User) *Session {
	session := &Session{
		ID:        randomToken(),
		User:      &user,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	m.sessions.put(session)
	return session
}

// LoginHandler signs in as DevUser without a round trip to Authentik
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	session := m.issue(DevUser)
	setSessionCookie(w, session, false)
	logger.Debug("Mock login", "username", DevUser.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CallbackHandler is not needed for mock auth
func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler for mock auth
func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		m.sessions.remove(cookie.Value)
	}
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Middleware for mock auth
func (m *MockAuth) Middleware(next http.Handler) http.Handler {
	return m.sessions.middleware(next)
}
