package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
)

const LoginRoute = "/login"

// Session holds the bearer credential and the route the user is looking at.
type Session struct {
	mu      sync.RWMutex
	token   string
	route   string
	expired bool

	store *snapshot.Advisory
	now   func() time.Time

	onUnauthorized func()
}

func NewSession(store *snapshot.Advisory) *Session {
	return &Session{
		store: store,
		route: "/tasks",
		now:   time.Now,
	}
}

// OnUnauthorized registers the redirect-to-login hook.
func (s *Session) OnUnauthorized(fn func()) {
	s.mu.Lock()
	s.onUnauthorized = fn
	s.mu.Unlock()
}

// Restore reads a previously persisted credential.
func (s *Session) Restore(ctx context.Context) bool {
	var token string
	if !s.store.Load(ctx, snapshot.KeyAccessToken, &token) || token == "" {
		return false
	}

	s.mu.Lock()
	s.token = token
	s.expired = false
	s.mu.Unlock()
	return true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.expired = false
	s.mu.Unlock()

	s.store.Save(ctx, snapshot.KeyAccessToken, token)
}

func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.store.Delete(ctx, snapshot.KeyAccessToken)
}

func (s *Session) SetRoute(route string) {
	s.mu.Lock()
	s.route = route
	s.mu.Unlock()
}

func (s *Session) Route() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route
}

// OnPublicRoute reports whether the current route needs no credential.
func (s *Session) OnPublicRoute() bool {
	route := s.Route()
	return route == "/" || strings.Contains(route, LoginRoute)
}

// Valid reports whether a credential is present and, for JWTs, not past its expiry.
// The signature is the backend's business; only the exp claim is read here.
func (s *Session) Valid() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return s.now().Before(claims.ExpiresAt.Time)
}

// HandleUnauthorized drops the credential and fires the login hook once per credential.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	if s.expired {
		s.mu.Unlock()
		return
	}
	s.expired = true
	s.token = ""
	hook := s.onUnauthorized
	s.mu.Unlock()

	s.store.Delete(context.Background(), snapshot.KeyAccessToken)
	logging.Logger.Warn("session expired, login required")

	if hook != nil {
		hook()
	}
}
