package flows

import (
	"context"
	"time"

	"github.com/authward/authward/store"
)

// IssueFailureKind classifies issuance failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureSignAccess
	IssueFailureSignRefresh
	IssueFailureSave
)

// IssueResult carries the issued token pair or failure metadata.
type IssueResult struct {
	Failure      IssueFailureKind
	Err          error
	SubjectID    string
	RecordID     string
	AccessToken  string
	RefreshToken string
}

// IssueDeps captures issuance dependencies.
type IssueDeps struct {
	SignAccess  func(subjectID, email, role string) (string, error)
	SignRefresh func(subjectID, email, role string) (string, error)
	NewRecordID func() string
	RefreshTTL  func() time.Duration
	Now         func() time.Time
	SaveRecord  func(context.Context, *store.Record) error
}

// RunIssue signs an access/refresh pair for the user and persists the
// refresh record. It is the only place a record is created: every other
// flow routes issuance through here.
func RunIssue(ctx context.Context, user UserRecord, deps IssueDeps) IssueResult {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	access, err := deps.SignAccess(user.SubjectID, user.Identifier, user.Role)
	if err != nil {
		return IssueResult{
			Failure:   IssueFailureSignAccess,
			Err:       err,
			SubjectID: user.SubjectID,
		}
	}

	refresh, err := deps.SignRefresh(user.SubjectID, user.Identifier, user.Role)
	if err != nil {
		return IssueResult{
			Failure:   IssueFailureSignRefresh,
			Err:       err,
			SubjectID: user.SubjectID,
		}
	}

	now := deps.Now()
	rec := &store.Record{
		ID:         deps.NewRecordID(),
		TokenValue: refresh,
		SubjectID:  user.SubjectID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(deps.RefreshTTL()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := deps.SaveRecord(ctx, rec); err != nil {
		return IssueResult{
			Failure:   IssueFailureSave,
			Err:       err,
			SubjectID: user.SubjectID,
			RecordID:  rec.ID,
		}
	}

	return IssueResult{
		Failure:      IssueFailureNone,
		SubjectID:    user.SubjectID,
		RecordID:     rec.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
