package walks

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the core depends on. The cmd wiring
// provides a glog-backed implementation; defLogger keeps the package usable
// without one.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated principal needed to
// mint a session token.
type Identity interface {
	ID() int64
	Username() string
	Email() string
	Role() UserRole
	Active() bool
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	TokenService() TokenService
}

// TokenService issues and validates session tokens.
type TokenService interface {
	// Generate mints a signed token for the identity.
	Generate(identity Identity) (string, error)
	// Parse verifies signature and structure only. Expired tokens still
	// decode; use Validate when usability matters.
	Parse(tokenString string) (*JWTClaims, error)
	// Validate is the single source of truth for "is this token usable".
	// It fails closed: any parse, signature, format, or expiry defect is an
	// error.
	Validate(tokenString string) (*JWTClaims, error)
	// IsValid collapses Validate into a boolean for gate-style callers.
	IsValid(tokenString string) bool
}

// Config holds auth options.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
}

// PasswordAuthenticator authenticates passwords.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// DefaultLogger returns the stdout fallback logger.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] WALKS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] WALKS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] WALKS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] WALKS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
