package authward

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the identifier is
	// unknown or the password does not match. The two cases are
	// deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when the account exists but is not
	// in active standing.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrDuplicateIdentifier is returned by Register when the identifier
	// is already taken.
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrInvalidOrExpiredToken is returned for any refresh token the
	// engine will not act on: malformed, expired, unknown, revoked,
	// replayed, or bound to a subject that no longer checks out. Callers
	// never learn which.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrRegistrationInvalid is returned by Register when required input
	// is missing or malformed.
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrRegistrationDisabled is returned by Register when registration
	// is switched off in the config.
	ErrRegistrationDisabled = errors.New("registration disabled")
	// ErrSubjectNotFound is the sentinel UserDirectory implementations
	// return when no account matches. It never escapes the Engine.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrPermissionDenied is returned by RequireRole when the claims do
	// not carry the required role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
