// Package applications handles job applications and their review status.
package applications

import (
	"context"
	"io"
	"time"

	"jobkonnect.org/internal/jobs"
)

// Application is a job seeker's submission to a listing.
type Application struct {
	ID                int64
	JobID             int64
	EmployerID        int64
	UserID            int64
	Resume            string
	CoverLetter       string
	Status            Status
	Name              string
	SchoolName        string
	Portfolio         string
	Skills            string
	YearsOfExperience *int
	SubmittedAt       time.Time
	UpdatedAt         time.Time
}

// Upload is a file attached to a submission.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Submission is the input of Apply.
type Submission struct {
	Name              string `validate:"max=100"`
	SchoolName        string `validate:"max=255"`
	Portfolio         string `validate:"max=255"`
	Skills            string
	YearsOfExperience *int `validate:"omitempty,gte=0,lte=100"`
	// Status defaults to submitted when empty.
	Status      string
	Resume      *Upload
	CoverLetter *Upload
}

// Store persists applications. Implementations return errs.ErrNotFound for
// missing rows.
type Store interface {
	CreateApplication(ctx context.Context, a Application) (Application, error)
	GetApplication(ctx context.Context, id int64) (Application, error)
	ListApplicationsByEmployer(ctx context.Context, employerID int64) ([]Application, error)
	ListApplicationsByApplicant(ctx context.Context, userID int64) ([]Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status Status, updatedAt time.Time) (Application, error)
	DeleteApplication(ctx context.Context, id int64) error
}

// JobFinder resolves the listing an application targets.
type JobFinder interface {
	Get(ctx context.Context, id int64) (jobs.Listing, error)
}

// FileStore saves uploaded documents and returns their public URL. Delete
// of a missing name is not an error.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
