package auth

import (
	"fmt"
	"strings"

	"jobkonnect.org/internal/errs"
)

// Role of an identity. It is fixed at registration.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
)

// ParseRole accepts the two known roles, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: role must be job_seeker or employer", errs.ErrValidation)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

// HasRole reports whether the user holds any of roles.
func (u CurrentUser) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// RequireRole returns an errs.ErrForbidden error unless user holds one of roles.
func RequireRole(user CurrentUser, roles ...Role) error {
	if user.HasRole(roles...) {
		return nil
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return fmt.Errorf("%w: requires role %s", errs.ErrForbidden, strings.Join(names, " or "))
}
