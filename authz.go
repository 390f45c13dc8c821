package authward

import "github.com/authward/authward/token"

// RequireRole checks that validated claims carry the required role. It is
// the explicit capability check callers place after ValidateAccessToken at
// their boundary; nil claims always fail.
func RequireRole(claims *token.Claims, role string) error {
	if claims == nil {
		return ErrPermissionDenied
	}
	if claims.Role != role {
		return ErrPermissionDenied
	}
	return nil
}

// RequireAnyRole checks that validated claims carry at least one of the
// given roles.
func RequireAnyRole(claims *token.Claims, roles ...string) error {
	if claims == nil {
		return ErrPermissionDenied
	}
	for _, role := range roles {
		if claims.Role == role {
			return nil
		}
	}
	return ErrPermissionDenied
}
