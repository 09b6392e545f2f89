package utils // package utils provides session token and password helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures reported by TokenService.Verify.
var (
	ErrMissingSecret  = errors.New("token: signing secret is empty")
	ErrTokenMalformed = errors.New("token: malformed")
	ErrTokenSignature = errors.New("token: invalid signature")
	ErrTokenExpired   = errors.New("token: expired")
)

// SessionToken is a signed JWT together with its expiry. The HTTP layer
// stores Token in the session cookie with a max-age matching ExpiresAt.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// SessionClaims binds a token to a user id. Email and role are carried
// for clients only; the server always reloads the user on each request.
type SessionClaims struct {
	UserID uint64 `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. There is no
// server-side registry: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. An empty
// secret is rejected rather than silently defaulted.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// SetClock replaces the time source used for issuing and verifying.
func (s *TokenService) SetClock(now func() time.Time) { s.now = now }

// Issue builds and signs a token for the given user.
func (s *TokenService) Issue(userID uint64, email, role string) (SessionToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ExpiresAt: exp}, nil
}

// Verify checks the signature and expiry of raw and returns the user id
// it is bound to.
func (s *TokenService) Verify(raw string) (uint64, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return 0, ErrTokenSignature
	default:
		return 0, ErrTokenMalformed
	}
	if claims.UserID == 0 {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}
