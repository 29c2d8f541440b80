package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
	"jobkonnect.org/internal/storage"
)

type Service struct {
	store    Store
	jobs     JobFinder
	files    FileStore
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

func NewService(store Store, jobs JobFinder, files FileStore, opts ...Option) *Service {
	s := &Service{store: store, jobs: jobs, files: files, validate: validator.New(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply stores the uploads and records an application of user to jobID. The
// employer of the application is copied from the listing.
func (s *Service) Apply(ctx context.Context, user auth.CurrentUser, jobID int64, sub Submission) (Application, error) {
	if err := auth.RequireRole(user, auth.RoleJobSeeker); err != nil {
		return Application{}, fmt.Errorf("%w: only job seekers can apply for jobs", errs.ErrForbidden)
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return Application{}, err
	}
	if sub.Resume == nil || sub.CoverLetter == nil {
		return Application{}, fmt.Errorf("%w: resume and cover_letter are required", errs.ErrValidation)
	}

	status := StatusSubmitted
	if sub.Status != "" {
		if status, err = ParseStatus(sub.Status); err != nil {
			return Application{}, err
		}
	}
	if err := s.validate.Struct(sub); err != nil {
		return Application{}, validationError(err)
	}

	resumeName, err := storage.ValidateUpload(sub.Resume.Filename)
	if err != nil {
		return Application{}, fmt.Errorf("resume: %w", err)
	}
	coverName, err := storage.ValidateUpload(sub.CoverLetter.Filename)
	if err != nil {
		return Application{}, fmt.Errorf("cover_letter: %w", err)
	}
	resumeURL, err := s.files.Save(ctx, resumeName, sub.Resume.Content)
	if err != nil {
		return Application{}, fmt.Errorf("%w: save resume: %v", errs.ErrPersistence, err)
	}
	coverURL, err := s.files.Save(ctx, coverName, sub.CoverLetter.Content)
	if err != nil {
		s.discard(ctx, resumeName)
		return Application{}, fmt.Errorf("%w: save cover letter: %v", errs.ErrPersistence, err)
	}

	now := s.now().UTC()
	app, err := s.store.CreateApplication(ctx, Application{
		JobID:             job.ID,
		EmployerID:        job.EmployerID,
		UserID:            user.ID,
		Resume:            resumeURL,
		CoverLetter:       coverURL,
		Status:            status,
		Name:              sub.Name,
		SchoolName:        sub.SchoolName,
		Portfolio:         sub.Portfolio,
		Skills:            sub.Skills,
		YearsOfExperience: sub.YearsOfExperience,
		SubmittedAt:       now,
		UpdatedAt:         now,
	})
	if err != nil {
		s.discard(ctx, resumeName, coverName)
		return Application{}, err
	}
	return app, nil
}

// discard removes the uploads a failed submission has written. It runs even
// when the request context is already cancelled.
func (s *Service) discard(ctx context.Context, names ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, name := range names {
		if err := s.files.Delete(ctx, name); err != nil {
			obs.Logger().Warn().Err(err).Str("component", "applications.Apply").Str("file", name).Msg("failed to remove upload")
		}
	}
}

var fieldNames = map[string]string{
	"Name":              "name",
	"SchoolName":        "school_name",
	"Portfolio":         "portfolio",
	"YearsOfExperience": "years_of_experience",
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", errs.ErrValidation, fieldNames[fe.Field()], fe.Param())
	default:
		return fmt.Errorf("%w: %s must be between 0 and 100", errs.ErrValidation, fieldNames[fe.Field()])
	}
}

// List returns the applications an employer received or a job seeker sent.
func (s *Service) List(ctx context.Context, user auth.CurrentUser) ([]Application, error) {
	switch user.Role {
	case auth.RoleEmployer:
		return s.store.ListApplicationsByEmployer(ctx, user.ID)
	case auth.RoleJobSeeker:
		return s.store.ListApplicationsByApplicant(ctx, user.ID)
	default:
		return nil, fmt.Errorf("%w: unknown role", errs.ErrForbidden)
	}
}

// Get returns an application to its applicant or its employer. Existence is
// checked before participation.
func (s *Service) Get(ctx context.Context, user auth.CurrentUser, id int64) (Application, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if user.ID != app.UserID && user.ID != app.EmployerID {
		return Application{}, fmt.Errorf("%w: not a participant of this application", errs.ErrForbidden)
	}
	return app, nil
}

// UpdateStatus sets the status of an application owned by the employer user.
func (s *Service) UpdateStatus(ctx context.Context, user auth.CurrentUser, id int64, status string) (Application, error) {
	app, err := s.ownedByEmployer(ctx, user, id)
	if err != nil {
		return Application{}, err
	}
	next, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}
	if !CanTransition(app.Status, next) {
		return Application{}, fmt.Errorf("%w: cannot move application from %s to %s", errs.ErrValidation, app.Status, next)
	}
	return s.store.UpdateApplicationStatus(ctx, id, next, s.now().UTC())
}

// Delete removes an application owned by the employer user.
func (s *Service) Delete(ctx context.Context, user auth.CurrentUser, id int64) error {
	if _, err := s.ownedByEmployer(ctx, user, id); err != nil {
		return err
	}
	return s.store.DeleteApplication(ctx, id)
}

func (s *Service) ownedByEmployer(ctx context.Context, user auth.CurrentUser, id int64) (Application, error) {
	if err := auth.RequireRole(user, auth.RoleEmployer); err != nil {
		return Application{}, fmt.Errorf("%w: only employers can manage applications", errs.ErrForbidden)
	}
	app, err := s.find(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.EmployerID != user.ID {
		return Application{}, fmt.Errorf("%w: application belongs to another employer", errs.ErrForbidden)
	}
	return app, nil
}

func (s *Service) find(ctx context.Context, id int64) (Application, error) {
	if id <= 0 {
		return Application{}, fmt.Errorf("%w: application not found", errs.ErrNotFound)
	}
	return s.store.GetApplication(ctx, id)
}
