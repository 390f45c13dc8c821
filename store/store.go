package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for the given token value.
var ErrNotFound = errors.New("refresh token record not found")

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("token store unavailable")

// HashToken returns the hex SHA-256 of a token value. Backends key records
// by this digest so the raw token never reaches storage.
func HashToken(tokenValue string) string {
	sum := sha256.Sum256([]byte(tokenValue))
	return hex.EncodeToString(sum[:])
}

// Record is the persisted state of a single refresh token. The engine is
// the only writer; backends persist it verbatim.
type Record struct {
	ID         string
	TokenValue string
	SubjectID  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Revoked    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Valid reports whether the record is usable at the given instant:
// not revoked and not past its expiry.
func (r *Record) Valid(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}

// TokenStore persists refresh token records. Implementations must be safe
// for concurrent use.
type TokenStore interface {
	// Save persists a new record. The backend may bound the record's
	// lifetime by its ExpiresAt.
	Save(ctx context.Context, rec *Record) error

	// Find returns the record for the exact token value, revoked or not.
	// Returns ErrNotFound when no record exists.
	Find(ctx context.Context, tokenValue string) (*Record, error)

	// Revoke marks the record revoked if and only if it is not already
	// revoked. claimed reports whether this call performed the flip;
	// under concurrent calls for the same token exactly one caller
	// observes claimed == true. Returns ErrNotFound when no record exists.
	Revoke(ctx context.Context, tokenValue string) (claimed bool, err error)

	// RevokeAllForSubject marks every live record for the subject revoked
	// and returns the number of records flipped. Zero live records is not
	// an error.
	RevokeAllForSubject(ctx context.Context, subjectID string) (int64, error)

	// PurgeExpired removes records whose expiry is at or before now and
	// returns the number removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
