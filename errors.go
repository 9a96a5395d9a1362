package walks

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeAccountDisabled    = "account_disabled"
	TextCodeUnauthenticated    = "unauthenticated"
	TextCodeForbidden          = "forbidden"
	TextCodeLastAdmin          = "last_active_admin"
	TextCodeEmailTaken         = "email_taken"
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
)

// ErrInvalidCredentials is returned for both an unknown identifier and a
// wrong password. The two cases are never distinguished outward.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when credentials verify but the account is
// inactive. Deliberately distinct from ErrInvalidCredentials: the caller did
// authenticate correctly.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrUnauthenticated is returned when an operation requires an identity and
// the request carries none (or an unusable token).
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrLastAdmin is returned when a mutation would leave the system with zero
// active administrators.
var ErrLastAdmin = errors.New("cannot remove the last active admin", errors.CategoryConflict).
	WithTextCode(TextCodeLastAdmin).
	WithCode(errors.CodeConflict)

// ErrEmailTaken is returned when a registration or email change collides
// with an existing account.
var ErrEmailTaken = errors.New("e-mail is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrTokenExpired is returned by Validate for a structurally sound token
// whose expiry has elapsed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every other token defect: bad structure, bad
// signature, wrong key, unexpected algorithm. Collapsing them avoids giving
// a forger an oracle.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty input where a secret is required.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// NotFound builds a typed not-found error for a named entity.
func NotFound(entity string, id any) *errors.Error {
	return errors.New(entity+" not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{"id": id})
}

// Forbidden builds an authorization failure carrying call-site metadata.
func Forbidden(metadata map[string]any) *errors.Error {
	return errors.New("insufficient permissions", errors.CategoryAuthz).
		WithTextCode(TextCodeForbidden).
		WithCode(errors.CodeForbidden).
		WithMetadata(metadata)
}
