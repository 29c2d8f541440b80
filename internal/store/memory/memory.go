// Package memory is an in-process implementation of the account, job and
// application stores. It enforces the same uniqueness and reference rules as
// the Postgres schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/jobs"
)

type Store struct {
	mu sync.RWMutex

	identities   map[int64]accounts.Identity
	listings     map[int64]jobs.Listing
	applications map[int64]applications.Application

	nextIdentity    int64
	nextListing     int64
	nextApplication int64
}

var (
	_ accounts.Store     = (*Store)(nil)
	_ jobs.Store         = (*Store)(nil)
	_ applications.Store = (*Store)(nil)
)

func New() *Store {
	return &Store{
		identities:   make(map[int64]accounts.Identity),
		listings:     make(map[int64]jobs.Listing),
		applications: make(map[int64]applications.Application),
	}
}

func (s *Store) CreateIdentity(_ context.Context, identity accounts.Identity) (accounts.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.identities {
		if strings.EqualFold(existing.Username, identity.Username) {
			return accounts.Identity{}, fmt.Errorf("%w: username already taken", errs.ErrConflict)
		}
		if strings.EqualFold(existing.Email, identity.Email) {
			return accounts.Identity{}, fmt.Errorf("%w: email already registered", errs.ErrConflict)
		}
	}
	s.nextIdentity++
	identity.ID = s.nextIdentity
	s.identities[identity.ID] = identity
	return identity, nil
}

func (s *Store) GetIdentity(_ context.Context, id int64) (accounts.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[id]
	if !ok {
		return accounts.Identity{}, fmt.Errorf("%w: user not found", errs.ErrNotFound)
	}
	return identity, nil
}

func (s *Store) GetIdentityByEmail(_ context.Context, email string) (accounts.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, identity := range s.identities {
		if strings.EqualFold(identity.Email, email) {
			return identity, nil
		}
	}
	return accounts.Identity{}, fmt.Errorf("%w: user not found", errs.ErrNotFound)
}

func (s *Store) ListIdentities(_ context.Context) ([]accounts.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.identities, func(i accounts.Identity) int64 { return i.ID }, nil), nil
}

func (s *Store) CreateListing(_ context.Context, l jobs.Listing) (jobs.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[l.EmployerID]; !ok {
		return jobs.Listing{}, fmt.Errorf("%w: employer not found", errs.ErrNotFound)
	}
	s.nextListing++
	l.ID = s.nextListing
	s.listings[l.ID] = l
	return l, nil
}

func (s *Store) GetListing(_ context.Context, id int64) (jobs.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return jobs.Listing{}, fmt.Errorf("%w: job not found", errs.ErrNotFound)
	}
	return l, nil
}

func (s *Store) ListListings(_ context.Context) ([]jobs.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.listings, func(l jobs.Listing) int64 { return l.ID }, nil), nil
}

func (s *Store) ListListingsByEmployer(_ context.Context, employerID int64) ([]jobs.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.listings, func(l jobs.Listing) int64 { return l.ID }, func(l jobs.Listing) bool {
		return l.EmployerID == employerID
	}), nil
}

func (s *Store) UpdateListing(_ context.Context, l jobs.Listing) (jobs.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[l.ID]; !ok {
		return jobs.Listing{}, fmt.Errorf("%w: job not found", errs.ErrNotFound)
	}
	s.listings[l.ID] = l
	return l, nil
}

func (s *Store) DeleteListing(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return fmt.Errorf("%w: job not found", errs.ErrNotFound)
	}
	for _, app := range s.applications {
		if app.JobID == id {
			return fmt.Errorf("%w: job has applications", errs.ErrConflict)
		}
	}
	delete(s.listings, id)
	return nil
}

func (s *Store) CreateApplication(_ context.Context, a applications.Application) (applications.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.listings[a.JobID]
	if !ok {
		return applications.Application{}, fmt.Errorf("%w: job not found", errs.ErrNotFound)
	}
	if _, ok := s.identities[a.UserID]; !ok {
		return applications.Application{}, fmt.Errorf("%w: applicant not found", errs.ErrNotFound)
	}
	a.EmployerID = job.EmployerID
	s.nextApplication++
	a.ID = s.nextApplication
	s.applications[a.ID] = a
	return a, nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (applications.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[id]
	if !ok {
		return applications.Application{}, fmt.Errorf("%w: application not found", errs.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListApplicationsByEmployer(_ context.Context, employerID int64) ([]applications.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.applications, applicationID, func(a applications.Application) bool {
		return a.EmployerID == employerID
	}), nil
}

func (s *Store) ListApplicationsByApplicant(_ context.Context, userID int64) ([]applications.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.applications, applicationID, func(a applications.Application) bool {
		return a.UserID == userID
	}), nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id int64, status applications.Status, updatedAt time.Time) (applications.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return applications.Application{}, fmt.Errorf("%w: application not found", errs.ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	s.applications[id] = a
	return a, nil
}

func (s *Store) DeleteApplication(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[id]; !ok {
		return fmt.Errorf("%w: application not found", errs.ErrNotFound)
	}
	delete(s.applications, id)
	return nil
}

func applicationID(a applications.Application) int64 { return a.ID }

func sortedByID[T any](m map[int64]T, id func(T) int64, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
