package flows

import (
	"context"
	"errors"
)

// RegisterFailureKind classifies registration failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureValidation
	RegisterFailureHash
	RegisterFailureDuplicate
	RegisterFailureDirectory
	RegisterFailureIssue
)

// RegisterResult carries the created subject and its first token pair, or
// failure metadata.
type RegisterResult struct {
	Failure      RegisterFailureKind
	Err          error
	SubjectID    string
	RecordID     string
	AccessToken  string
	RefreshToken string
}

// RegisterDeps captures registration flow dependencies.
type RegisterDeps struct {
	HashPassword func(password string) (string, error)
	CreateUser   func(ctx context.Context, identifier, passwordHash, role string) (UserRecord, error)
	Duplicate    error

	Issue func(ctx context.Context, user UserRecord) IssueResult
}

// RunRegister creates an account in the directory and issues its first
// token pair.
func RunRegister(ctx context.Context, identifier, password, role string, deps RegisterDeps) RegisterResult {
	if identifier == "" || role == "" {
		return RegisterResult{Failure: RegisterFailureValidation}
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	user, err := deps.CreateUser(ctx, identifier, hash, role)
	if err != nil {
		if deps.Duplicate != nil && errors.Is(err, deps.Duplicate) {
			return RegisterResult{Failure: RegisterFailureDuplicate, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureDirectory, Err: err}
	}

	issued := deps.Issue(ctx, user)
	if issued.Failure != IssueFailureNone {
		return RegisterResult{
			Failure:   RegisterFailureIssue,
			Err:       issued.Err,
			SubjectID: user.SubjectID,
		}
	}

	return RegisterResult{
		Failure:      RegisterFailureNone,
		SubjectID:    user.SubjectID,
		RecordID:     issued.RecordID,
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
	}
}
