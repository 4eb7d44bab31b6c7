package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"valuta/internal/apperrors"
)

// Codec is the token primitive consumed by the auth service and the
// bearer middleware.
type Codec interface {
	Issue(claims map[string]interface{}) (string, error)
	Verify(tokenString string) (jwt.MapClaims, error)
}

// TokenCodec signs and verifies HS256 bearer tokens with a fixed TTL.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a TokenCodec signing with secret, with tokens
// valid for ttl.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue encodes claims plus an expiration of now + TTL and signs the
// result.
func (c *TokenCodec) Issue(claims map[string]interface{}) (string, error) {
	mapClaims := jwt.MapClaims{
		"exp": time.Now().Add(c.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	for key, value := range claims {
		mapClaims[key] = value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify decodes tokenString and validates signature and expiration.
// Expired tokens fail with apperrors.ErrTokenExpired; every other
// signature or format failure maps to apperrors.ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}
