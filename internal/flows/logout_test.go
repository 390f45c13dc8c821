package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/authward/authward/token"
)

func logoutDeps(revoke func(context.Context, string) (bool, error)) LogoutDeps {
	return LogoutDeps{
		ParseRefresh: func(tokenStr string) (*token.Claims, error) {
			if tokenStr == "garbage" {
				return nil, errors.New("bad signature")
			}
			c := &token.Claims{}
			c.Subject = "u-1"
			return c, nil
		},
		RevokeRecord: revoke,
		NotFound:     errTestNotFound,
	}
}

func TestRunLogoutRevokes(t *testing.T) {
	deps := logoutDeps(func(context.Context, string) (bool, error) { return true, nil })

	res := RunLogout(context.Background(), "refresh-u1", deps)
	if res.Failure != LogoutFailureNone || !res.Revoked || res.SubjectID != "u-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunLogoutIdempotent(t *testing.T) {
	// Already revoked.
	deps := logoutDeps(func(context.Context, string) (bool, error) { return false, nil })
	res := RunLogout(context.Background(), "refresh-u1", deps)
	if res.Failure != LogoutFailureNone || res.Revoked {
		t.Fatalf("unexpected result for revoked record: %+v", res)
	}

	// Record gone entirely.
	deps = logoutDeps(func(context.Context, string) (bool, error) { return false, errTestNotFound })
	res = RunLogout(context.Background(), "refresh-u1", deps)
	if res.Failure != LogoutFailureNone || res.Revoked {
		t.Fatalf("unexpected result for missing record: %+v", res)
	}
}

func TestRunLogoutBadToken(t *testing.T) {
	// An unparsable token can have no record behind it, so this is the
	// same no-op success as a missing record.
	deps := logoutDeps(func(context.Context, string) (bool, error) {
		t.Fatal("store must not be touched for unparsable tokens")
		return false, nil
	})

	res := RunLogout(context.Background(), "garbage", deps)
	if res.Failure != LogoutFailureNone || res.Err != nil || res.Revoked {
		t.Fatalf("unexpected result for unparsable token: %+v", res)
	}
}

func TestRunLogoutStoreError(t *testing.T) {
	errDown := errors.New("store down")
	deps := logoutDeps(func(context.Context, string) (bool, error) { return false, errDown })

	res := RunLogout(context.Background(), "refresh-u1", deps)
	if res.Failure != LogoutFailureStore || !errors.Is(res.Err, errDown) {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunLogoutAll(t *testing.T) {
	deps := LogoutDeps{
		RevokeAllForSubject: func(_ context.Context, subjectID string) (int64, error) {
			if subjectID != "u-1" {
				t.Fatalf("subject = %q", subjectID)
			}
			return 4, nil
		},
	}

	n, err := RunLogoutAll(context.Background(), "u-1", deps)
	if err != nil || n != 4 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
}
