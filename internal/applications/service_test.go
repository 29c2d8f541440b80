package applications_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/jobs"
	"jobkonnect.org/internal/store/memory"
)

type recordingFiles struct {
	saved  map[string]string
	failOn string
}

func (r *recordingFiles) Save(_ context.Context, name string, rd io.Reader) (string, error) {
	if name == r.failOn {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	r.saved[name] = string(data)
	return "/uploads/" + name, nil
}

func (r *recordingFiles) Delete(_ context.Context, name string) error {
	delete(r.saved, name)
	return nil
}

type failingStore struct {
	*memory.Store
}

func (failingStore) CreateApplication(context.Context, applications.Application) (applications.Application, error) {
	return applications.Application{}, fmt.Errorf("%w: db down", errs.ErrPersistence)
}

type fixture struct {
	svc      *applications.Service
	store    *memory.Store
	jobs     *jobs.Service
	files    *recordingFiles
	employer auth.CurrentUser
	rival    auth.CurrentUser
	alice    auth.CurrentUser
	mallory  auth.CurrentUser
	job      jobs.Listing
	now      *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	mk := func(username string, profile accounts.Profile) auth.CurrentUser {
		id, err := store.CreateIdentity(ctx, accounts.Identity{Username: username, Email: username + "@mail.test", Profile: profile})
		require.NoError(t, err)
		return id.CurrentUser()
	}
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	f := &fixture{
		store:    store,
		files:    &recordingFiles{saved: map[string]string{}},
		employer: mk("bob", accounts.EmployerProfile{CompanyName: "Acme", Website: "acme.test"}),
		rival:    mk("eve", accounts.EmployerProfile{CompanyName: "Evil", Website: "evil.test"}),
		alice:    mk("alice", accounts.JobSeekerProfile{FirstName: "Alice", LastName: "L"}),
		mallory:  mk("mallory", accounts.JobSeekerProfile{FirstName: "Mal", LastName: "Lory"}),
		now:      &now,
	}
	clock := func() time.Time { return *f.now }
	f.jobs = jobs.NewService(store, jobs.WithClock(clock))
	f.svc = applications.NewService(store, f.jobs, f.files, applications.WithClock(clock))

	job, err := f.jobs.Create(ctx, f.employer, jobs.Draft{
		Title: "Backend Engineer", Description: "APIs", Requirements: "Go",
		Location: "Remote", JobType: "full-time", SkillsRequired: "go",
	})
	require.NoError(t, err)
	f.job = job
	return f
}

func submission() applications.Submission {
	years := 3
	return applications.Submission{
		Name:              "Alice L",
		Skills:            "go, sql",
		YearsOfExperience: &years,
		Resume:            &applications.Upload{Filename: "alice resume.pdf", Content: strings.NewReader("resume")},
		CoverLetter:       &applications.Upload{Filename: "../cover.docx", Content: strings.NewReader("cover")},
	}
}

func (f *fixture) apply(t *testing.T, user auth.CurrentUser) applications.Application {
	t.Helper()
	app, err := f.svc.Apply(context.Background(), user, f.job.ID, submission())
	require.NoError(t, err)
	return app
}

func TestApplyScenario(t *testing.T) {
	f := newFixture(t)

	app := f.apply(t, f.alice)
	assert.Equal(t, applications.StatusSubmitted, app.Status)
	assert.Equal(t, f.alice.ID, app.UserID)
	assert.Equal(t, f.employer.ID, app.EmployerID)
	assert.Equal(t, f.job.ID, app.JobID)
	assert.Equal(t, "/uploads/alice_resume.pdf", app.Resume)
	assert.Equal(t, "/uploads/cover.docx", app.CoverLetter)
	assert.Equal(t, "resume", f.files.saved["alice_resume.pdf"])
	assert.Equal(t, *f.now, app.SubmittedAt)
	assert.Equal(t, app.SubmittedAt, app.UpdatedAt)
	require.NotNil(t, app.YearsOfExperience)
	assert.Equal(t, 3, *app.YearsOfExperience)
}

func TestApplyEmployerMatchesListingForManyJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owners := []auth.CurrentUser{f.employer, f.rival}

	for i := 0; i < 10; i++ {
		owner := owners[i%2]
		job, err := f.jobs.Create(ctx, owner, jobs.Draft{
			Title: fmt.Sprintf("Job %d", i), Description: "d", Requirements: "r",
			Location: "l", JobType: "part-time", SkillsRequired: "s",
		})
		require.NoError(t, err)

		app, err := f.svc.Apply(ctx, f.alice, job.ID, submission())
		require.NoError(t, err)
		assert.Equal(t, job.EmployerID, app.EmployerID)
	}
}

func TestApplyRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, f.employer, f.job.ID, submission())
	assert.ErrorIs(t, err, errs.ErrForbidden, "employers cannot apply")

	_, err = f.svc.Apply(ctx, f.alice, f.job.ID+100, submission())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	missing := submission()
	missing.CoverLetter = nil
	_, err = f.svc.Apply(ctx, f.alice, f.job.ID, missing)
	assert.ErrorIs(t, err, errs.ErrValidation)

	badType := submission()
	badType.Resume = &applications.Upload{Filename: "resume.exe", Content: strings.NewReader("x")}
	_, err = f.svc.Apply(ctx, f.alice, f.job.ID, badType)
	assert.ErrorIs(t, err, errs.ErrValidation)

	badStatus := submission()
	badStatus.Status = "hired"
	_, err = f.svc.Apply(ctx, f.alice, f.job.ID, badStatus)
	assert.ErrorIs(t, err, errs.ErrValidation)

	negative := submission()
	years := -1
	negative.YearsOfExperience = &years
	_, err = f.svc.Apply(ctx, f.alice, f.job.ID, negative)
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.Empty(t, f.files.saved, "rejected submissions must not store files")
}

func TestApplyRejectsOversizedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]func(*applications.Submission){
		"name":        func(s *applications.Submission) { s.Name = strings.Repeat("n", 101) },
		"school_name": func(s *applications.Submission) { s.SchoolName = strings.Repeat("s", 256) },
		"portfolio":   func(s *applications.Submission) { s.Portfolio = "https://" + strings.Repeat("p", 250) },
		"years_of_experience": func(s *applications.Submission) {
			years := 1<<32 + 5
			s.YearsOfExperience = &years
		},
	}
	for field, mutate := range cases {
		sub := submission()
		mutate(&sub)
		_, err := f.svc.Apply(ctx, f.alice, f.job.ID, sub)
		require.ErrorIs(t, err, errs.ErrValidation, field)
		assert.Contains(t, err.Error(), field)
	}

	atLimit := submission()
	atLimit.Name = strings.Repeat("n", 100)
	years := 100
	atLimit.YearsOfExperience = &years
	_, err := f.svc.Apply(ctx, f.alice, f.job.ID, atLimit)
	require.NoError(t, err)
}

func TestApplyRemovesUploadsWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	svc := applications.NewService(failingStore{f.store}, f.jobs, f.files)

	_, err := svc.Apply(context.Background(), f.alice, f.job.ID, submission())
	require.ErrorIs(t, err, errs.ErrPersistence)
	assert.Empty(t, f.files.saved, "uploads of a failed submission must be removed")

	sent, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestApplyRemovesResumeWhenCoverLetterFails(t *testing.T) {
	f := newFixture(t)
	f.files.saved["cover.docx"] = "from an earlier application"
	f.files.failOn = "cover.docx"

	_, err := f.svc.Apply(context.Background(), f.alice, f.job.ID, submission())
	require.ErrorIs(t, err, errs.ErrPersistence)
	assert.NotContains(t, f.files.saved, "alice_resume.pdf")
	assert.Equal(t, "from an earlier application", f.files.saved["cover.docx"], "unwritten names are left alone")
}

func TestApplyWithExplicitStatusRoundTrips(t *testing.T) {
	for _, st := range applications.Statuses {
		f := newFixture(t)
		sub := submission()
		sub.Status = string(st)

		created, err := f.svc.Apply(context.Background(), f.alice, f.job.ID, sub)
		require.NoError(t, err)

		got, err := f.svc.Get(context.Background(), f.alice, created.ID)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
		assert.False(t, got.SubmittedAt.After(got.UpdatedAt))
	}
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.apply(t, f.alice)
	f.apply(t, f.mallory)

	received, err := f.svc.List(ctx, f.employer)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	sent, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, f.alice.ID, sent[0].UserID)

	none, err := f.svc.List(ctx, f.rival)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetChecksExistenceThenParticipation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, f.alice)

	_, err := f.svc.Get(ctx, f.alice, app.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.employer, app.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.mallory, app.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.Get(ctx, f.rival, app.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.Get(ctx, f.mallory, app.ID+100)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, f.alice)

	_, err := f.svc.UpdateStatus(ctx, f.alice, app.ID, "accepted")
	assert.ErrorIs(t, err, errs.ErrForbidden, "job seekers cannot change status")

	_, err = f.svc.UpdateStatus(ctx, f.rival, app.ID, "accepted")
	assert.ErrorIs(t, err, errs.ErrForbidden, "other employers cannot change status")

	_, err = f.svc.UpdateStatus(ctx, f.employer, app.ID+100, "accepted")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, f.employer, app.ID, "hired")
	assert.ErrorIs(t, err, errs.ErrValidation)

	path := []applications.Status{
		applications.StatusUnderReview,
		applications.StatusAccepted,
		applications.StatusSubmitted,
		applications.StatusRejected,
		applications.StatusRejected,
	}
	prev := app.UpdatedAt
	for _, st := range path {
		*f.now = f.now.Add(time.Minute)
		updated, err := f.svc.UpdateStatus(ctx, f.employer, app.ID, string(st))
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
		assert.True(t, updated.UpdatedAt.After(prev), "updated_at refreshes on every write")
		assert.Equal(t, app.SubmittedAt, updated.SubmittedAt)
		prev = updated.UpdatedAt
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, f.alice)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.alice, app.ID), errs.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.rival, app.ID), errs.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.employer, app.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.employer, app.ID), errs.ErrNotFound)
}
