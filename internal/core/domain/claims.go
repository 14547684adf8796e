package domain

import "time"

// SessionClaimsVersion is bumped whenever the token payload layout changes.
// Tokens carrying any other version are rejected.
const SessionClaimsVersion = 1

// SessionTTL is the fixed validity window of a session token.
const SessionTTL = 24 * time.Hour

// SessionClaims is the identity carried by a verified session token.
type SessionClaims struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
