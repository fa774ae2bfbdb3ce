package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds per-request session data. A logged in session carries the
// username and the role it authenticated under.
type Session struct {
	ID        string
	username  string
	role      string
	startedAt time.Time
	// replaced is the stored id superseded by SetPrincipal.
	replaced  string
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	StartedAt time.Time `json:"started_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load loads or creates a new session for request.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Unknown or expired ids are never reused.
			return sm.newSession(), nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	return &Session{
		ID:        cookie.Value,
		username:  stored.Username,
		role:      stored.Role,
		startedAt: stored.StartedAt,
	}, nil
}

// Commit persists the session and writes cookie headers as needed.
// Anonymous sessions are not stored.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.replaced != "" {
		if err := sm.client.Del(ctx, sm.redisKey(sess.replaced)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		sess.replaced = ""
	}

	if sess.username == "" {
		return nil
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sessionPayload{Username: sess.username, Role: sess.role, StartedAt: sess.startedAt})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// SetPrincipal binds the session to an authenticated user. The session id is
// rotated so an id handed out before login cannot be replayed afterwards.
func (s *Session) SetPrincipal(id, username, role string, startedAt time.Time) {
	if !s.isNew && s.ID != id && s.replaced == "" {
		s.replaced = s.ID
	}
	s.ID = id
	s.username = username
	s.role = role
	s.startedAt = startedAt
	s.dirty = true
}

// Username returns the logged in username, or "" for anonymous sessions.
func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.username
}

// Role returns the role the session authenticated under.
func (s *Session) Role() string {
	if s == nil {
		return ""
	}
	return s.role
}

// StartedAt returns the login time.
func (s *Session) StartedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.startedAt
}

// Authenticated reports whether a user is bound to the session.
func (s *Session) Authenticated() bool {
	return s != nil && !s.destroyed && s.username != ""
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:    sm.GenerateSessionID(),
		isNew: true,
		dirty: true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "rbac:session:" + id
}

// GenerateSessionID returns a fresh random (version 4) UUID.
func (sm *SessionManager) GenerateSessionID() string {
	return uuid.NewString()
}
