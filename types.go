package authward

import (
	"context"
	"io"

	internalaudit "github.com/authward/authward/internal/audit"
)

// AccountStatus represents the lifecycle state of a user account. Any
// status other than StatusActive blocks login and refresh.
type AccountStatus uint8

const (
	// StatusActive is the normal account state.
	StatusActive AccountStatus = iota
	// StatusDisabled marks an account an operator has switched off.
	StatusDisabled
)

// UserRecord is the account record returned by [UserDirectory]. It carries
// the credential hash, role, and status the engine needs; everything else
// about the account stays on the caller's side.
type UserRecord struct {
	SubjectID    string
	Identifier   string
	Role         string
	PasswordHash string
	Status       AccountStatus
}

// CreateUserInput is the input for [UserDirectory.Create]. PasswordHash is
// already encoded; the directory never sees a plaintext password. Profile
// carries caller-supplied account fields verbatim; the engine never reads
// them.
type CreateUserInput struct {
	Identifier   string
	PasswordHash string
	Role         string
	Status       AccountStatus
	Profile      map[string]string
}

// UserDirectory is the interface callers implement to connect the engine
// to their user database. Lookups return [ErrSubjectNotFound] when no
// account matches; Create returns [ErrDuplicateIdentifier] when the
// identifier is taken. Any other error is treated as a backend failure and
// propagated to the caller unchanged.
type UserDirectory interface {
	GetByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetByID(ctx context.Context, subjectID string) (UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, subjectID string, newHash string) error
}

// TokenPair is an access/refresh token pair issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterRequest is the input for [Engine.Register]. Identifier and
// Password are required; Role defaults to [RegisterConfig.DefaultRole]
// when empty. Profile fields pass through to [UserDirectory.Create]
// untouched, for directories that need more than the credential columns
// at account creation.
type RegisterRequest struct {
	Identifier string
	Password   string
	Role       string
	Profile    map[string]string
}

// RegisterResult is returned by [Engine.Register]. The new account is
// logged in immediately: Tokens holds its first pair.
type RegisterResult struct {
	SubjectID string
	Role      string
	Tokens    TokenPair
}

// AuditEvent is re-exported so sink implementations do not import the
// internal package.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher. Emit runs
// on the dispatcher goroutine and must not block indefinitely.
type AuditSink = internalaudit.Sink

// NoOpSink discards every event.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers events on a channel for test and pipeline consumers.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per event to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink that marshals events to w, one per line.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
