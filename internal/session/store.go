// Package session is the process-wide table of bearer sessions.
//
// State is in-memory only: a restart logs everyone out. Each process owns
// its own table; the portal deploys as a single process.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
)

// tokenBytes of entropy per token. 32 bytes → 43 base64url characters,
// far beyond guessable.
const tokenBytes = 32

// sweepInterval is how often the background sweeper evicts expired sessions.
// Validate also checks expiry inline, so the sweeper only bounds memory; it
// never affects correctness.
const sweepInterval = 5 * time.Minute

// Session is what a valid token proves: who the caller is, which tenant they
// belong to, and what role they hold. TenantSlug is empty for admins.
type Session struct {
	Token      string
	UserID     uuid.UUID
	TenantSlug string
	Role       models.Role

	expiresAt time.Time
}

// Store maps opaque tokens to sessions.
//
// The map is shared mutable state touched by every request goroutine, so all
// access holds the mutex. Callers never see the map itself — only the
// Create/Validate/Revoke contract.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration

	// onCount reports the session count after every mutation; the server
	// feeds it to the active-sessions gauge. Nil means no reporting.
	onCount func(n int)

	done chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithCountFunc registers a callback invoked with the live session count
// after every create, revoke, and sweep.
func WithCountFunc(fn func(n int)) Option {
	return func(s *Store) { s.onCount = fn }
}

// NewStore creates a session store whose sessions expire after the given idle
// TTL, and starts its expiry sweeper. Callers must Close it.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.sweep()
	return s
}

// Create issues a new token for the user and stores the session. A user may
// hold any number of concurrent sessions; each Create is a fresh token.
func (s *Store) Create(userID uuid.UUID, tenantSlug string, role models.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var token string
	for {
		token = newToken()
		// Collision is cryptographically negligible; the loop is for
		// correctness of the uniqueness invariant, not a real hot path.
		if _, exists := s.sessions[token]; !exists {
			break
		}
	}

	s.sessions[token] = &Session{
		Token:      token,
		UserID:     userID,
		TenantSlug: tenantSlug,
		Role:       role,
		expiresAt:  time.Now().Add(s.ttl),
	}
	s.reportCount()
	return token
}

// Validate looks a token up. An expired token behaves exactly like an unknown
// one. A hit slides the expiry window forward, so active users never time out
// mid-use.
func (s *Store) Validate(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	now := time.Now()
	if now.After(sess.expiresAt) {
		delete(s.sessions, token)
		s.reportCount()
		return nil, false
	}
	sess.expiresAt = now.Add(s.ttl)

	// Copy so callers can't reach the expiry field the store owns.
	out := *sess
	return &out, true
}

// Revoke deletes a token. Revoking an unknown or already-revoked token is a
// no-op — logout must be idempotent.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	s.reportCount()
}

// Len reports the number of live sessions (expired-but-unswept included).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the sweeper. The store remains usable afterwards; only the
// background eviction stops.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, sess := range s.sessions {
				if now.After(sess.expiresAt) {
					delete(s.sessions, token)
				}
			}
			s.reportCount()
			s.mu.Unlock()
		}
	}
}

// reportCount must be called with the mutex held.
func (s *Store) reportCount() {
	if s.onCount != nil {
		s.onCount(len(s.sessions))
	}
}

// newToken returns a fresh random token: 32 bytes from crypto/rand,
// base64url-encoded. rand.Read never fails on supported platforms.
func newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
