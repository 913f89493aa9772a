package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Token failures, one per gate transition. They stay distinct internally for
// logging and audit even where the transport collapses them into a single
// status code.
var (
	// ErrTokenMissing is returned when the request carries no session cookie.
	ErrTokenMissing = errors.New("no session credential present", errors.CategoryAuth).
			WithTextCode("TOKEN_MISSING").
			WithCode(errors.CodeUnauthorized)

	// ErrTokenMalformed is returned when the credential is not a well formed
	// three part signed token.
	ErrTokenMalformed = errors.New("session token is malformed", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	// ErrTokenExpired is returned when the token is past its expiry,
	// regardless of whether the signature would have verified.
	ErrTokenExpired = errors.New("session token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	// ErrTokenInvalid is returned when signature verification fails or the
	// verified claims violate the tenant binding.
	ErrTokenInvalid = errors.New("session token failed verification", errors.CategoryAuth).
			WithTextCode("TOKEN_INVALID").
			WithCode(errors.CodeUnauthorized)

	// ErrForbidden is returned when a verified token carries a role the
	// route's policy does not allow.
	ErrForbidden = errors.New("role is not permitted for this route", errors.CategoryAuthz).
			WithTextCode("ROLE_FORBIDDEN").
			WithCode(errors.CodeForbidden)
)

// Login failures. ErrInvalidCredentials deliberately covers both "no such
// identifier" and "wrong password" so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	ErrAccountDeactivated = errors.New("account is deactivated", errors.CategoryAuth).
				WithTextCode("ACCOUNT_DEACTIVATED").
				WithCode(errors.CodeUnauthorized)

	ErrAccountNotFound = errors.New("account not found", errors.CategoryAuth).
				WithTextCode("ACCOUNT_NOT_FOUND").
				WithCode(errors.CodeUnauthorized)

	ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
				WithTextCode("TOO_MANY_LOGIN_ATTEMPTS").
				WithCode(errors.CodeUnauthorized)
)

// ErrSigningKeyMissing aborts startup; a gateway without a signing key would
// degrade into "everything unauthenticated".
var ErrSigningKeyMissing = errors.New("signing key is not configured", errors.CategoryInternal).
	WithTextCode("SIGNING_KEY_MISSING")

// ErrIdentityNotFound is the internal error for identifier lookups that miss.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing empty passwords.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch error; the
// issuer collapses it into ErrInvalidCredentials before it leaves the package.
var ErrMismatchedHashAndPassword = errors.New("password hash mismatch", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for structurally broken tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
