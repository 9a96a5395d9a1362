package walks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims is the session token payload: subject carries the login
// identifier (email), UID the numeric principal id, and UserRole the role
// held at issuance. Role and active status are re-resolved from the store
// per request; claims are identity, not authority.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      int64    `json:"uid,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// Subject returns the subject claim, the principal's login identifier.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the numeric principal id.
func (c *JWTClaims) UserID() int64 {
	return c.UID
}

// Role returns the role embedded at issuance.
func (c *JWTClaims) Role() UserRole {
	return c.UserRole
}

// Expires returns the expiration time.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expired reports whether the expiry claim has elapsed. Parse callers use
// this to inspect stale tokens without tripping Validate.
func (c *JWTClaims) Expired() bool {
	exp := c.Expires()
	return !exp.IsZero() && exp.Before(time.Now())
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
