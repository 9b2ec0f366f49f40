package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

func newTestTokenService(t *testing.T, d time.Duration) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	ts, err := NewTokenService(key, d)
	require.NoError(t, err)
	return ts
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	key1, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key1, keyLength)

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key2, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "key must be stable across restarts")
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	token, expires, err := ts.GenerateAccessToken("user-1")
	require.NoError(t, err)
	assert.True(t, len(token) > len("v4.local."))
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ts.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Contains(t, claims.TokenID, "token-")
}

func TestVerifyAccessToken_Rejects(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)
	other := newTestTokenService(t, time.Hour)

	foreign, _, err := other.GenerateAccessToken("user-1")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not-a-token",
		"foreign key": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ts.VerifyAccessToken(token)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized), "got %v", err)
		})
	}
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(make([]byte, keyLength), 0)
	assert.Error(t, err)
}

func TestGenerateAccessToken_RequiresUser(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)
	_, _, err := ts.GenerateAccessToken("")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestSessionFromRequest(t *testing.T) {
	id := NewSessionID()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(SessionCookie(id, false))
	got, ok := SessionFromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nope"})
	_, ok = SessionFromRequest(bad)
	assert.False(t, ok)

	_, ok = SessionFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
