package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Signer is the pluggable primitive producing and checking compact signed
// tokens. The default is HMAC-SHA256 JWTs; alternative schemes only need to
// keep tokens opaque strings.
type Signer interface {
	Sign(claims jwt.Claims, key []byte) (string, error)
	Parse(tokenStr string, key []byte, claims jwt.Claims, now func() time.Time) error
}

type hmacSigner struct{}

// NewHMACSigner returns the HS256 signer used by default.
func NewHMACSigner() Signer {
	return hmacSigner{}
}

func (hmacSigner) Sign(claims jwt.Claims, key []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (hmacSigner) Parse(tokenStr string, key []byte, claims jwt.Claims, now func() time.Time) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithTimeFunc(now))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
