package flows

import (
	"context"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureCredentials
	LoginFailureDisabled
	LoginFailureDirectory
	LoginFailureIssue
)

// LoginResult carries the issued token pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	SubjectID    string
	RecordID     string
	AccessToken  string
	RefreshToken string
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	GetUserByIdentifier func(ctx context.Context, identifier string) (UserRecord, bool, error)
	VerifyPassword      func(password, hash string) (bool, error)
	DummyVerify         func(password string)
	AccountStatusError  func(status uint8) error

	PasswordUpgradeOnLogin bool
	PasswordNeedsUpgrade   func(hash string) (bool, error)
	HashPassword           func(password string) (string, error)
	UpdatePasswordHash     func(ctx context.Context, subjectID, hash string) error
	Warn                   func(string, ...any)

	Issue func(ctx context.Context, user UserRecord) IssueResult
}

// RunLogin verifies credentials against the user directory and issues a
// token pair. Unknown identifiers and wrong passwords produce the same
// failure kind, and the unknown-identifier path still burns a hash
// verification so the two are not separable by timing.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) LoginResult {
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	if identifier == "" || password == "" {
		return LoginResult{Failure: LoginFailureCredentials}
	}

	user, found, err := deps.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return LoginResult{Failure: LoginFailureDirectory, Err: err}
	}
	if !found {
		deps.DummyVerify(password)
		return LoginResult{Failure: LoginFailureCredentials}
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{
			Failure:   LoginFailureCredentials,
			Err:       err,
			SubjectID: user.SubjectID,
		}
	}

	if statusErr := deps.AccountStatusError(user.Status); statusErr != nil {
		return LoginResult{
			Failure:   LoginFailureDisabled,
			Err:       statusErr,
			SubjectID: user.SubjectID,
		}
	}

	if deps.PasswordUpgradeOnLogin {
		if needsUpgrade, err := deps.PasswordNeedsUpgrade(user.PasswordHash); err == nil && needsUpgrade {
			if upgradedHash, err := deps.HashPassword(password); err == nil {
				if err := deps.UpdatePasswordHash(ctx, user.SubjectID, upgradedHash); err != nil {
					deps.Warn("authward: password hash upgrade update failed")
				}
			} else {
				deps.Warn("authward: password hash upgrade generation failed")
			}
		}
	}
	password = ""

	issued := deps.Issue(ctx, user)
	if issued.Failure != IssueFailureNone {
		return LoginResult{
			Failure:   LoginFailureIssue,
			Err:       issued.Err,
			SubjectID: user.SubjectID,
			RecordID:  issued.RecordID,
		}
	}

	return LoginResult{
		Failure:      LoginFailureNone,
		SubjectID:    user.SubjectID,
		RecordID:     issued.RecordID,
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
	}
}
