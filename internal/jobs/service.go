package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
)

// Draft is the client-supplied content of a listing, used for create and for
// full replacement on update.
type Draft struct {
	Title                   string `validate:"required,max=100"`
	Description             string `validate:"required"`
	Requirements            string `validate:"required"`
	Salary                  string `validate:"max=50"`
	Location                string `validate:"required,max=100"`
	JobType                 string `validate:"required"`
	ApplicationDeadline     string
	SkillsRequired          string `validate:"required"`
	PreferredQualifications string
}

type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, validate: validator.New(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create publishes a listing owned by user, who must be an employer.
func (s *Service) Create(ctx context.Context, user auth.CurrentUser, d Draft) (Listing, error) {
	if err := auth.RequireRole(user, auth.RoleEmployer); err != nil {
		return Listing{}, err
	}
	l, err := s.fromDraft(d)
	if err != nil {
		return Listing{}, err
	}
	now := s.now().UTC()
	l.EmployerID = user.ID
	l.CreatedAt = now
	l.UpdatedAt = now
	return s.store.CreateListing(ctx, l)
}

func (s *Service) Get(ctx context.Context, id int64) (Listing, error) {
	if id <= 0 {
		return Listing{}, fmt.Errorf("%w: job not found", errs.ErrNotFound)
	}
	return s.store.GetListing(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Listing, error) {
	return s.store.ListListings(ctx)
}

func (s *Service) ListByEmployer(ctx context.Context, employerID int64) ([]Listing, error) {
	return s.store.ListListingsByEmployer(ctx, employerID)
}

// Update replaces every editable field of the listing. Only the owning
// employer may update it.
func (s *Service) Update(ctx context.Context, user auth.CurrentUser, id int64, d Draft) (Listing, error) {
	current, err := s.owned(ctx, user, id)
	if err != nil {
		return Listing{}, err
	}
	l, err := s.fromDraft(d)
	if err != nil {
		return Listing{}, err
	}
	l.ID = current.ID
	l.EmployerID = current.EmployerID
	l.CreatedAt = current.CreatedAt
	l.UpdatedAt = s.now().UTC()
	return s.store.UpdateListing(ctx, l)
}

// Delete removes a listing owned by user.
func (s *Service) Delete(ctx context.Context, user auth.CurrentUser, id int64) error {
	if _, err := s.owned(ctx, user, id); err != nil {
		return err
	}
	return s.store.DeleteListing(ctx, id)
}

func (s *Service) owned(ctx context.Context, user auth.CurrentUser, id int64) (Listing, error) {
	if err := auth.RequireRole(user, auth.RoleEmployer); err != nil {
		return Listing{}, err
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if l.EmployerID != user.ID {
		return Listing{}, fmt.Errorf("%w: job belongs to another employer", errs.ErrForbidden)
	}
	return l, nil
}

func (s *Service) fromDraft(d Draft) (Listing, error) {
	d = trimDraft(d)
	if err := s.validate.Struct(d); err != nil {
		return Listing{}, validationError(err)
	}
	jobType, err := ParseType(d.JobType)
	if err != nil {
		return Listing{}, err
	}
	l := Listing{
		Title:                   d.Title,
		Description:             d.Description,
		Requirements:            d.Requirements,
		Salary:                  d.Salary,
		Location:                d.Location,
		JobType:                 jobType,
		SkillsRequired:          d.SkillsRequired,
		PreferredQualifications: d.PreferredQualifications,
	}
	if d.ApplicationDeadline != "" {
		deadline, err := time.Parse(DateLayout, d.ApplicationDeadline)
		if err != nil {
			return Listing{}, fmt.Errorf("%w: application_deadline must be a YYYY-MM-DD date", errs.ErrValidation)
		}
		l.ApplicationDeadline = &deadline
	}
	return l, nil
}

func trimDraft(d Draft) Draft {
	trim := strings.TrimSpace
	d.Title = trim(d.Title)
	d.Description = trim(d.Description)
	d.Requirements = trim(d.Requirements)
	d.Salary = trim(d.Salary)
	d.Location = trim(d.Location)
	d.JobType = trim(d.JobType)
	d.ApplicationDeadline = trim(d.ApplicationDeadline)
	d.SkillsRequired = trim(d.SkillsRequired)
	d.PreferredQualifications = trim(d.PreferredQualifications)
	return d
}

var fieldNames = map[string]string{
	"Title":          "title",
	"Description":    "description",
	"Requirements":   "requirements",
	"Salary":         "salary",
	"Location":       "location",
	"JobType":        "job_type",
	"SkillsRequired": "skills_required",
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	fe := verrs[0]
	if fe.Tag() == "max" {
		return fmt.Errorf("%w: %s must be at most %s characters", errs.ErrValidation, fieldNames[fe.Field()], fe.Param())
	}
	return fmt.Errorf("%w: %s is required", errs.ErrValidation, fieldNames[fe.Field()])
}
