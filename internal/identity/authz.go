package identity

import "github.com/ariefcatur/go-storefront/internal/apperr"

// RequireAdmin gates catalogue writes and order status changes.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return apperr.E(apperr.PermissionDenied, "admin access required")
	}
	return nil
}

// RequireOwnerOrAdmin gates reads of user-owned records such as orders.
func RequireOwnerOrAdmin(p Principal, ownerID string) error {
	if p.IsAdmin() || (p.UserID != "" && p.UserID == ownerID) {
		return nil
	}
	return apperr.E(apperr.PermissionDenied, "access denied")
}
