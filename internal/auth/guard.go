package auth

import (
	"errors"                          // Sentinel errors
	"payment_tracker/internal/domain" // Role definitions
)

// ErrForbidden is returned when an authenticated principal is not permitted
// to perform the requested action on the target.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated identity derived from a verified token.
type Principal struct {
	UserID string // Subject identifier
	Role   string // Role claim
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// PrincipalFromClaims derives the principal encoded in verified token claims
func PrincipalFromClaims(c *Claims) Principal {
	return Principal{UserID: c.UserID, Role: c.Role}
}

// RequireAdmin passes only principals holding the admin role
func RequireAdmin(p Principal) error {
	// Check if user role is admin
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrAdmin passes the owner of the target account or any admin.
// Every per-account operation applies this same rule.
func RequireSelfOrAdmin(p Principal, targetUserID string) error {
	if p.UserID == targetUserID || p.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
