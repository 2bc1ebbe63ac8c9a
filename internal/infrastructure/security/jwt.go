package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slugboard/slugboard/internal/core/domain"
)

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// NewJWTCodec returns a codec for secret. An empty secret is refused.
func NewJWTCodec(secret string) (*JWTCodec, error) {
	if secret == "" {
		return nil, domain.ErrMissingSecret
	}
	return &JWTCodec{secret: []byte(secret), now: time.Now}, nil
}

func (c *JWTCodec) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	if c == nil || len(c.secret) == 0 {
		return "", time.Time{}, domain.ErrMissingSecret
	}

	now := c.now()
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (c *JWTCodec) Verify(token string) (string, time.Time, error) {
	if c == nil || len(c.secret) == 0 || token == "" {
		return "", time.Time{}, domain.ErrInvalidSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", time.Time{}, domain.ErrInvalidSession
	}

	return claims.UserID, claims.ExpiresAt.Time, nil
}
