package flows

import (
	"context"
	"errors"
	"time"

	"github.com/authward/authward/store"
	"github.com/authward/authward/token"
)

// RefreshFailureKind classifies refresh flow failures for root-level
// mapping. Token, Reuse, and Subject kinds all collapse to the same caller
// error; the distinction exists only for metrics and audit.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureToken
	RefreshFailureReuse
	RefreshFailureSubject
	RefreshFailureStore
	RefreshFailureIssue
)

// RefreshResult carries the rotated token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	SubjectID    string
	RecordID     string
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh rotation dependencies.
type RefreshDeps struct {
	ParseRefresh       func(tokenStr string) (*token.Claims, error)
	FindRecord         func(ctx context.Context, tokenValue string) (*store.Record, error)
	RevokeRecord       func(ctx context.Context, tokenValue string) (bool, error)
	GetUserByID        func(ctx context.Context, subjectID string) (UserRecord, bool, error)
	AccountStatusError func(status uint8) error
	Now                func() time.Time
	NotFound           error

	Issue func(ctx context.Context, user UserRecord) IssueResult
}

var errRecordMismatch = errors.New("token subject does not match record")

// RunRefresh executes refresh rotation: parse, look up the record, check
// validity and subject standing, claim the old record, then issue a new
// pair. The old record is claimed before issuance so a failed issuance
// never leaves two live tokens.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureToken, Err: err}
	}

	rec, err := deps.FindRecord(ctx, refreshToken)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return RefreshResult{
				Failure:   RefreshFailureToken,
				Err:       err,
				SubjectID: claims.SubjectID(),
			}
		}
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: claims.SubjectID(),
		}
	}

	if rec.SubjectID != claims.SubjectID() {
		return RefreshResult{
			Failure:   RefreshFailureToken,
			Err:       errRecordMismatch,
			SubjectID: claims.SubjectID(),
			RecordID:  rec.ID,
		}
	}

	// A revoked record presented again is the reuse signal: the value was
	// already spent by a rotation or logout.
	if rec.Revoked {
		return RefreshResult{
			Failure:   RefreshFailureReuse,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}
	if !rec.Valid(deps.Now()) {
		return RefreshResult{
			Failure:   RefreshFailureToken,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}

	user, found, err := deps.GetUserByID(ctx, rec.SubjectID)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}
	if !found {
		return RefreshResult{
			Failure:   RefreshFailureSubject,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}
	if statusErr := deps.AccountStatusError(user.Status); statusErr != nil {
		return RefreshResult{
			Failure:   RefreshFailureSubject,
			Err:       statusErr,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}

	claimed, err := deps.RevokeRecord(ctx, refreshToken)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return RefreshResult{
				Failure:   RefreshFailureToken,
				Err:       err,
				SubjectID: rec.SubjectID,
				RecordID:  rec.ID,
			}
		}
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}
	if !claimed {
		// Lost the rotation race: a concurrent caller spent this token
		// between our validity check and the claim.
		return RefreshResult{
			Failure:   RefreshFailureReuse,
			SubjectID: rec.SubjectID,
			RecordID:  rec.ID,
		}
	}

	issued := deps.Issue(ctx, user)
	if issued.Failure != IssueFailureNone {
		return RefreshResult{
			Failure:   RefreshFailureIssue,
			Err:       issued.Err,
			SubjectID: rec.SubjectID,
			RecordID:  issued.RecordID,
		}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		SubjectID:    rec.SubjectID,
		RecordID:     issued.RecordID,
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
	}
}
