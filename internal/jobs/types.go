// Package jobs manages job listings published by employers.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobkonnect.org/internal/errs"
)

// Type is the employment type of a listing.
type Type string

const (
	FullTime Type = "full-time"
	PartTime Type = "part-time"
	Contract Type = "contract"
)

// DateLayout is the wire format of ApplicationDeadline.
const DateLayout = "2006-01-02"

// ParseType accepts the three known job types.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case FullTime, PartTime, Contract:
		return t, nil
	default:
		return "", fmt.Errorf("%w: job_type must be one of full-time, part-time, contract", errs.ErrValidation)
	}
}

// Listing is a job posted by an employer.
type Listing struct {
	ID                      int64
	EmployerID              int64
	Title                   string
	Description             string
	Requirements            string
	Salary                  string
	Location                string
	JobType                 Type
	ApplicationDeadline     *time.Time
	SkillsRequired          string
	PreferredQualifications string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Store persists listings. Implementations return errs.ErrNotFound for missing
// rows and errs.ErrConflict when deleting a listing that still has applications.
type Store interface {
	CreateListing(ctx context.Context, l Listing) (Listing, error)
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)
	ListListingsByEmployer(ctx context.Context, employerID int64) ([]Listing, error)
	UpdateListing(ctx context.Context, l Listing) (Listing, error)
	DeleteListing(ctx context.Context, id int64) error
}
