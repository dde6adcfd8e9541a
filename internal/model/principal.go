package model

// Role values carried in the access token's "role" claim. Identity
// issuance happens in an external service; this enum only mirrors the
// roles that service hands out.
const (
	RoleGuest = "GUEST"
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// Principal is the authenticated identity behind a request. It is
// extracted once at the HTTP boundary and passed explicitly into every
// service operation, so no code below the handlers reads identity out
// of a request context.
type Principal struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the principal holds the platform admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// ValidRole reports whether s is one of the roles the token issuer hands out.
func ValidRole(s string) bool {
	switch s {
	case RoleGuest, RoleOwner, RoleAdmin:
		return true
	}
	return false
}
