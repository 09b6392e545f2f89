package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	return s
}

func TestNewTokenServiceRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := newService(t)
	tok, err := s.Issue(42, "a@x.com", "user")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), tok.ExpiresAt, time.Minute)

	id, err := s.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestVerifyExpired(t *testing.T) {
	s := newService(t)
	s.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	tok, err := s.Issue(1, "", "")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTampered(t *testing.T) {
	s := newService(t)
	tok, err := s.Issue(1, "", "")
	require.NoError(t, err)

	other, err := NewTokenService("another-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrTokenSignature)

	parts := strings.Split(tok.Token, ".")
	require.Len(t, parts, 3)
	forged, err := s.Issue(2, "", "")
	require.NoError(t, err)
	// payload of user 2 with signature of user 1
	swapped := parts[0] + "." + strings.Split(forged.Token, ".")[1] + "." + parts[2]
	_, err = s.Verify(swapped)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestVerifyMalformed(t *testing.T) {
	s := newService(t)
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := s.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, raw)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	s := newService(t)
	claims := SessionClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestVerifyRequiresUserID(t *testing.T) {
	s := newService(t)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
