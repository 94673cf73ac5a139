package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

// TokenCodec issues and verifies HS256 tokens binding a user id.
// It holds no state besides the secret and the clock.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

type TokenOption func(*TokenCodec)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret []byte, opts ...TokenOption) *TokenCodec {
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs {sub, iat, exp, jti} for userID. With ttl <= 0 the token is
// already expired. Claims carry whole seconds, so iat is the issue time
// rounded down and exp is exactly iat+ttl.
func (c *TokenCodec) Issue(userID int64, ttl time.Duration) (string, error) {
	now := c.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify returns the user id of a well-signed, unexpired token. The
// signature is checked before expiry, so a forged token never reports
// ErrTokenExpired.
func (c *TokenCodec) Verify(tokenString string) (int64, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return 0, err
	}
	return SubjectID(claims)
}

// SubjectID reads the numeric user id out of verified claims.
func SubjectID(claims *jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// Parse verifies tokenString and returns its claims.
func (c *TokenCodec) Parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
