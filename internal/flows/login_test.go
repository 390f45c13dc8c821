package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/authward/authward/store"
)

const (
	statusActive   uint8 = 0
	statusDisabled uint8 = 1
)

var errTestDisabled = errors.New("account disabled")

func statusError(status uint8) error {
	if status == statusDisabled {
		return errTestDisabled
	}
	return nil
}

func okIssue() func(context.Context, UserRecord) IssueResult {
	return func(_ context.Context, user UserRecord) IssueResult {
		return IssueResult{
			SubjectID:    user.SubjectID,
			RecordID:     "rec-1",
			AccessToken:  "access",
			RefreshToken: "refresh",
		}
	}
}

func baseLoginDeps(users map[string]UserRecord) LoginDeps {
	return LoginDeps{
		GetUserByIdentifier: func(_ context.Context, identifier string) (UserRecord, bool, error) {
			u, ok := users[identifier]
			return u, ok, nil
		},
		VerifyPassword: func(password, hash string) (bool, error) {
			return "hash:"+password == hash, nil
		},
		DummyVerify:        func(string) {},
		AccountStatusError: statusError,
		Issue:              okIssue(),
	}
}

func TestRunLoginSuccess(t *testing.T) {
	deps := baseLoginDeps(map[string]UserRecord{
		"a@x.com": {SubjectID: "u-1", Identifier: "a@x.com", Role: "member", PasswordHash: "hash:pw-123456"},
	})

	res := RunLogin(context.Background(), "a@x.com", "pw-123456", deps)
	if res.Failure != LoginFailureNone {
		t.Fatalf("failure = %d, err = %v", res.Failure, res.Err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.SubjectID != "u-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	var dummyCalls int
	deps := baseLoginDeps(map[string]UserRecord{
		"a@x.com": {SubjectID: "u-1", PasswordHash: "hash:pw-123456", Status: statusActive},
	})
	deps.DummyVerify = func(string) { dummyCalls++ }

	unknown := RunLogin(context.Background(), "ghost@x.com", "pw-123456", deps)
	wrongPw := RunLogin(context.Background(), "a@x.com", "nope", deps)

	if unknown.Failure != LoginFailureCredentials || wrongPw.Failure != LoginFailureCredentials {
		t.Fatalf("failures = %d, %d, want credentials for both", unknown.Failure, wrongPw.Failure)
	}
	if dummyCalls != 1 {
		t.Fatalf("dummy verify calls = %d, want 1", dummyCalls)
	}
}

func TestRunLoginDisabledAccount(t *testing.T) {
	deps := baseLoginDeps(map[string]UserRecord{
		"a@x.com": {SubjectID: "u-1", PasswordHash: "hash:pw-123456", Status: statusDisabled},
	})

	res := RunLogin(context.Background(), "a@x.com", "pw-123456", deps)
	if res.Failure != LoginFailureDisabled {
		t.Fatalf("failure = %d, want disabled", res.Failure)
	}
	if !errors.Is(res.Err, errTestDisabled) {
		t.Fatalf("err = %v, want disabled sentinel", res.Err)
	}
}

func TestRunLoginEmptyInputs(t *testing.T) {
	deps := baseLoginDeps(nil)
	deps.GetUserByIdentifier = func(context.Context, string) (UserRecord, bool, error) {
		t.Fatal("directory must not be consulted for empty inputs")
		return UserRecord{}, false, nil
	}

	for _, tc := range [][2]string{{"", "pw-123456"}, {"a@x.com", ""}} {
		res := RunLogin(context.Background(), tc[0], tc[1], deps)
		if res.Failure != LoginFailureCredentials {
			t.Fatalf("failure = %d, want credentials", res.Failure)
		}
	}
}

func TestRunLoginUpgradesWeakHash(t *testing.T) {
	var updatedHash string
	deps := baseLoginDeps(map[string]UserRecord{
		"a@x.com": {SubjectID: "u-1", PasswordHash: "hash:pw-123456"},
	})
	deps.PasswordUpgradeOnLogin = true
	deps.PasswordNeedsUpgrade = func(string) (bool, error) { return true, nil }
	deps.HashPassword = func(password string) (string, error) { return "newhash:" + password, nil }
	deps.UpdatePasswordHash = func(_ context.Context, subjectID, hash string) error {
		if subjectID != "u-1" {
			t.Fatalf("upgrade targeted %q", subjectID)
		}
		updatedHash = hash
		return nil
	}

	res := RunLogin(context.Background(), "a@x.com", "pw-123456", deps)
	if res.Failure != LoginFailureNone {
		t.Fatalf("failure = %d, err = %v", res.Failure, res.Err)
	}
	if updatedHash != "newhash:pw-123456" {
		t.Fatalf("updated hash = %q", updatedHash)
	}
}

func TestRunIssueClaimsAndRecord(t *testing.T) {
	var saved *store.Record
	now := time.Now().UTC().Truncate(time.Second)
	deps := IssueDeps{
		SignAccess: func(subjectID, email, role string) (string, error) {
			return "access:" + subjectID, nil
		},
		SignRefresh: func(subjectID, email, role string) (string, error) {
			return "refresh:" + subjectID, nil
		},
		NewRecordID: func() string { return "rec-9" },
		RefreshTTL:  func() time.Duration { return time.Hour },
		Now:         func() time.Time { return now },
		SaveRecord: func(_ context.Context, rec *store.Record) error {
			saved = rec
			return nil
		},
	}

	res := RunIssue(context.Background(), UserRecord{SubjectID: "u-1", Identifier: "a@x.com", Role: "member"}, deps)
	if res.Failure != IssueFailureNone {
		t.Fatalf("failure = %d, err = %v", res.Failure, res.Err)
	}
	if saved == nil {
		t.Fatal("no record saved")
	}
	if saved.TokenValue != res.RefreshToken {
		t.Fatal("record token value does not match issued refresh token")
	}
	if !saved.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiresAt = %v", saved.ExpiresAt)
	}
	if saved.Revoked {
		t.Fatal("new record saved revoked")
	}
}

func TestRunIssueSaveFailure(t *testing.T) {
	deps := IssueDeps{
		SignAccess:  func(string, string, string) (string, error) { return "a", nil },
		SignRefresh: func(string, string, string) (string, error) { return "r", nil },
		NewRecordID: func() string { return "rec-9" },
		RefreshTTL:  func() time.Duration { return time.Hour },
		SaveRecord: func(context.Context, *store.Record) error {
			return errors.New("store down")
		},
	}

	res := RunIssue(context.Background(), UserRecord{SubjectID: "u-1"}, deps)
	if res.Failure != IssueFailureSave {
		t.Fatalf("failure = %d, want save", res.Failure)
	}
	if res.AccessToken != "" || res.RefreshToken != "" {
		t.Fatal("tokens leaked from failed issuance")
	}
}
