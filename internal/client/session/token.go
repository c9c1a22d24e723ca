package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the token's exp claim without verifying the
// signature, so a clearly dead token is discarded before spending a /me
// round trip on it. Opaque (non-JWT) tokens and tokens without exp are
// treated as live; the service remains the authority either way.
func tokenExpired(token string, now time.Time) (bool, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, time.Time{}
	}
	if exp.Time.Before(now) {
		return true, exp.Time
	}
	return false, exp.Time
}
