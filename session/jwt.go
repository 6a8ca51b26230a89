package session

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// ExpiryFromToken reads the exp claim without verifying the signature; the client never
// holds the signing key. Opaque tokens and tokens without exp yield the zero time.
func ExpiryFromToken(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(claims.ExpiresAt, 0).UTC()
}
