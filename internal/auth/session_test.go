package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
)

type memStore struct {
	data map[string]any
}

func (m *memStore) Save(_ context.Context, key string, value any) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Load(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(dest.(*string)) = v.(string)
	return true, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newSession() (*Session, *memStore) {
	store := &memStore{data: map[string]any{}}
	return NewSession(snapshot.NewAdvisory(store)), store
}

func signedToken(t *testing.T, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestSession_PersistsAndRestoresToken(t *testing.T) {
	s, store := newSession()
	s.SetToken(context.Background(), "opaque")
	assert.Equal(t, "opaque", store.data[snapshot.KeyAccessToken])

	restored := NewSession(snapshot.NewAdvisory(store))
	assert.True(t, restored.Restore(context.Background()))
	assert.Equal(t, "opaque", restored.Token())
}

func TestSession_Valid(t *testing.T) {
	s, _ := newSession()
	assert.False(t, s.Valid())

	s.SetToken(context.Background(), "opaque")
	assert.True(t, s.Valid())

	s.SetToken(context.Background(), signedToken(t, time.Now().Add(time.Hour)))
	assert.True(t, s.Valid())

	s.SetToken(context.Background(), signedToken(t, time.Now().Add(-time.Hour)))
	assert.False(t, s.Valid())
}

func TestSession_OnPublicRoute(t *testing.T) {
	s, _ := newSession()
	assert.False(t, s.OnPublicRoute())

	s.SetRoute("/")
	assert.True(t, s.OnPublicRoute())

	s.SetRoute("/auth/login")
	assert.True(t, s.OnPublicRoute())
}

func TestSession_HandleUnauthorizedFiresOnce(t *testing.T) {
	s, store := newSession()
	s.SetToken(context.Background(), "opaque")

	calls := 0
	s.OnUnauthorized(func() { calls++ })

	s.HandleUnauthorized()
	s.HandleUnauthorized()

	assert.Equal(t, 1, calls)
	assert.Empty(t, s.Token())
	_, ok := store.data[snapshot.KeyAccessToken]
	assert.False(t, ok)

	s.SetToken(context.Background(), "fresh")
	s.HandleUnauthorized()
	assert.Equal(t, 2, calls)
}
