// Package accounts registers and authenticates job seekers and employers.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
)

// Profile holds the role-specific part of an identity. The concrete type
// decides the role, so an identity can never carry the other role's fields.
type Profile interface {
	Role() auth.Role
	validate() error
}

// JobSeekerProfile is the profile of a job_seeker identity.
type JobSeekerProfile struct {
	FirstName string
	LastName  string
}

func (JobSeekerProfile) Role() auth.Role { return auth.RoleJobSeeker }

func (p JobSeekerProfile) validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("%w: first_name and last_name are required for job seekers", errs.ErrValidation)
	}
	return nil
}

// EmployerProfile is the profile of an employer identity.
type EmployerProfile struct {
	CompanyName string
	Website     string
	ContactInfo string
}

func (EmployerProfile) Role() auth.Role { return auth.RoleEmployer }

func (p EmployerProfile) validate() error {
	if strings.TrimSpace(p.CompanyName) == "" || strings.TrimSpace(p.Website) == "" {
		return fmt.Errorf("%w: company_name and website are required for employers", errs.ErrValidation)
	}
	return nil
}

// Identity is a registered user.
type Identity struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is derived from the profile variant.
func (i Identity) Role() auth.Role {
	if i.Profile == nil {
		return ""
	}
	return i.Profile.Role()
}

// CurrentUser returns the token-facing view of the identity.
func (i Identity) CurrentUser() auth.CurrentUser {
	return auth.CurrentUser{ID: i.ID, Username: i.Username, Role: i.Role()}
}

// Store persists identities. Implementations return errs.ErrConflict for a
// duplicate username or email and errs.ErrNotFound for missing rows.
type Store interface {
	CreateIdentity(ctx context.Context, identity Identity) (Identity, error)
	GetIdentity(ctx context.Context, id int64) (Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	ListIdentities(ctx context.Context) ([]Identity, error)
}
