package authward

import (
	"errors"
	"testing"

	"github.com/authward/authward/token"
)

func TestRequireRole(t *testing.T) {
	claims := &token.Claims{Role: "admin"}

	if err := RequireRole(claims, "admin"); err != nil {
		t.Fatalf("matching role: %v", err)
	}
	if err := RequireRole(claims, "user"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("mismatched role: got %v, want ErrPermissionDenied", err)
	}
	if err := RequireRole(nil, "admin"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("nil claims: got %v, want ErrPermissionDenied", err)
	}
}

func TestRequireAnyRole(t *testing.T) {
	claims := &token.Claims{Role: "editor"}

	if err := RequireAnyRole(claims, "admin", "editor"); err != nil {
		t.Fatalf("role in set: %v", err)
	}
	if err := RequireAnyRole(claims, "admin", "viewer"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("role not in set: got %v, want ErrPermissionDenied", err)
	}
	if err := RequireAnyRole(claims); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("empty set: got %v, want ErrPermissionDenied", err)
	}
}
