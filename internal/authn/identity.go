// Package authn issues and verifies the JWTs shared by every service and
// holds the single role predicate used for authorization.
package authn

import "slices"

const (
	RoleCustomer       = "customer"
	RoleAdmin          = "admin"
	RoleProductManager = "product_manager"
	// RoleService is only carried by tokens the sales service derives for downstream calls.
	RoleService = "service"
)

type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Authorize reports whether identity holds one of roles. No roles means any
// authenticated identity is allowed.
func Authorize(identity Identity, roles ...string) bool {
	if identity.Username == "" {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, identity.Role)
}

// IsSelfOr allows the owner of username or any of roles.
func IsSelfOr(identity Identity, username string, roles ...string) bool {
	if identity.Username != "" && identity.Username == username {
		return true
	}
	return len(roles) > 0 && Authorize(identity, roles...)
}

// ValidRole reports whether role may be assigned to a stored account.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleAdmin, RoleProductManager:
		return true
	}
	return false
}
