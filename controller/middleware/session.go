// Package middleware cookie sessions, authentication and CSRF protection
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tele-drive/controller/respond"
)

// SessionCookieName browser session cookie
const SessionCookieName = "td_session"

// CSRFHeaderName header carrying the CSRF token on mutating requests
const CSRFHeaderName = "X-CSRF-Token"

const userIDKey = "session_user_id"

// Session one authenticated browser session
type Session struct {
	Token     string
	UserID    int64
	CSRFToken string
	CreatedAt time.Time
}

// SessionStore in-memory session registry
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionStore create session store instance
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Issue creates a session for the user. Each session carries its own CSRF
// token so tokens cannot be replayed across sessions.
func (s *SessionStore) Issue(userID int64) *Session {
	session := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CSRFToken: uuid.NewString(),
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	return session
}

// Get resolves a session token, nil when unknown or expired
func (s *SessionStore) Get(token string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Since(session.CreatedAt) > s.ttl {
		s.Revoke(token)
		return nil
	}
	return session
}

// Revoke drops a session
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// RequireAuth rejects requests without a valid session cookie and stores the
// user id in the request context
func RequireAuth(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			respond.Unauthorized(c, "session required, import a session first")
			c.Abort()
			return
		}
		session := store.Get(token)
		if session == nil {
			respond.Unauthorized(c, "session expired or unknown")
			c.Abort()
			return
		}
		c.Set(userIDKey, session.UserID)
		c.Next()
	}
}

// RequireCSRF rejects mutating requests whose CSRF header does not match the
// session's token. Safe methods pass through. Must run after RequireAuth.
func RequireCSRF(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
			return
		}
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			respond.Forbidden(c, "csrf check failed")
			c.Abort()
			return
		}
		session := store.Get(token)
		if session == nil || c.GetHeader(CSRFHeaderName) != session.CSRFToken {
			respond.Forbidden(c, "csrf check failed")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID the authenticated user id set by RequireAuth
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
