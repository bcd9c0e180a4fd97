package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeExpiry reads the exp claim out of a bearer token without verifying
// its signature. The token is the standard three-part header.payload.signature
// encoding; any shape the parser rejects, and any payload missing exp, is
// reported as ErrTokenMalformed.
//
// This is a client-side convenience read so the monitor can schedule logout.
// It must never be mistaken for an authorization check.
func DecodeExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrTokenMalformed
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrTokenMalformed
	}

	return exp.Time, nil
}

// Remaining reports how long the token stays valid relative to now. Expired
// and malformed tokens both report a zero or negative duration; malformed
// ones also return the decode error so callers can force logout.
func Remaining(token string, now time.Time) (time.Duration, error) {
	exp, err := DecodeExpiry(token)
	if err != nil {
		return 0, err
	}
	return exp.Sub(now), nil
}
