package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is missing, malformed, expired, or
// carries a bad signature. Callers must not distinguish these cases outward.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims holds the JWT claims for a session token. Tokens are
// self-contained: possession of a valid, unexpired token is the sole
// authorization credential, with no server-side session lookup.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenProvider issues and validates HS256 session tokens signed with a
// process-wide secret. Rotating the secret invalidates all outstanding tokens.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. ttl is the
// fixed validity window from issuance (24h in production configuration).
func NewTokenProvider(secret []byte, ttl time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, ttl: ttl}
}

// Issue signs a session token for the given account. Returns the token string
// and its expiry time.
func (p *TokenProvider) Issue(accountID, username, role string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
		Role:     role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, expiresAt, err
}

// Validate parses and validates the token (signature and expiry). Returns the
// claims, or ErrInvalidToken on any failure.
func (p *TokenProvider) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
