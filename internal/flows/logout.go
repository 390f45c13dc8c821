package flows

import (
	"context"
	"errors"

	"github.com/authward/authward/token"
)

// LogoutFailureKind classifies logout failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureStore
)

// LogoutResult reports what a logout call actually did. Revoked is false
// when the call was an idempotent no-op (record missing or already spent).
type LogoutResult struct {
	Failure   LogoutFailureKind
	Err       error
	SubjectID string
	Revoked   bool
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	ParseRefresh        func(tokenStr string) (*token.Claims, error)
	RevokeRecord        func(ctx context.Context, tokenValue string) (bool, error)
	RevokeAllForSubject func(ctx context.Context, subjectID string) (int64, error)
	NotFound            error
}

// RunLogout revokes the record behind a refresh token. Missing and already
// revoked records are success: logout is idempotent. A token that does not
// parse can have no record to revoke, so it is the same no-op success.
func RunLogout(ctx context.Context, refreshToken string, deps LogoutDeps) LogoutResult {
	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		return LogoutResult{}
	}

	claimed, err := deps.RevokeRecord(ctx, refreshToken)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return LogoutResult{SubjectID: claims.SubjectID()}
		}
		return LogoutResult{
			Failure:   LogoutFailureStore,
			Err:       err,
			SubjectID: claims.SubjectID(),
		}
	}

	return LogoutResult{
		SubjectID: claims.SubjectID(),
		Revoked:   claimed,
	}
}

// RunLogoutAll revokes every live record for the subject and returns the
// number revoked. Zero is success: a subject with no live tokens is
// already logged out everywhere.
func RunLogoutAll(ctx context.Context, subjectID string, deps LogoutDeps) (int64, error) {
	return deps.RevokeAllForSubject(ctx, subjectID)
}
