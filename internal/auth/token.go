package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTTL = 12 * time.Hour

var (
	// ErrMissingToken is returned when a protected request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for tokens that fail signature, issuer or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when a valid token belongs to another court.
	ErrForbidden = errors.New("token not valid for this court")
)

// CourtClaims scope a referee session to one court.
type CourtClaims struct {
	jwt.RegisteredClaims
	CourtID string `json:"court"`
}

// TokenManager issues and verifies court session tokens. A manager without a secret
// is disabled: it issues nothing and authorizes everything.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager creates a manager signing HS256 tokens with secret.
func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Enabled reports whether tokens are enforced.
func (m *TokenManager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Issue signs a token for courtID.
func (m *TokenManager) Issue(courtID string) (string, time.Time, error) {
	if !m.Enabled() {
		return "", time.Time{}, errors.New("token signing disabled")
	}
	now := m.now()
	expires := now.Add(m.ttl)
	claims := CourtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   "court:" + courtID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		CourtID: courtID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses and validates a token.
func (m *TokenManager) Verify(token string) (*CourtClaims, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("%w: token verification disabled", ErrInvalidToken)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &CourtClaims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*CourtClaims)
	if !ok || !parsed.Valid || claims.CourtID == "" {
		return nil, fmt.Errorf("%w: missing court claim", ErrInvalidToken)
	}
	return claims, nil
}
