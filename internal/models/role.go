// Package models contains the domain structures shared by the services,
// the storage layer and the HTTP handlers.
package models

import (
	"fmt"
	"strings"
)

// Role is the normalized access role of a user account.
type Role string

const (
	// RoleClient is the default role of self-registered end users.
	RoleClient Role = "CLIENT"
	// RoleAdmin administers a single publisher; it always carries an editor id.
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin is unrestricted.
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole normalizes the historical role spellings into a Role.
// Both upper-snake and hyphenated forms are accepted in any case,
// so "SUPER_ADMIN" and "super-admin" denote the same role.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch normalized {
	case string(RoleClient):
		return RoleClient, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleSuperAdmin):
		return RoleSuperAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// In reports whether r is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
