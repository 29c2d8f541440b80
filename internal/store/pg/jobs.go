package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/jobs"
)

type jobRow struct {
	ID                      int64          `db:"id"`
	EmployerID              int64          `db:"employer_id"`
	Title                   string         `db:"title"`
	Description             string         `db:"description"`
	Requirements            string         `db:"requirements"`
	Salary                  sql.NullString `db:"salary"`
	Location                string         `db:"location"`
	JobType                 string         `db:"job_type"`
	ApplicationDeadline     sql.NullTime   `db:"application_deadline"`
	SkillsRequired          string         `db:"skills_required"`
	PreferredQualifications sql.NullString `db:"preferred_qualifications"`
	CreatedAt               time.Time      `db:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at"`
}

const jobColumns = `id, employer_id, title, description, requirements, salary, location, job_type,
	application_deadline, skills_required, preferred_qualifications, created_at, updated_at`

func toJobRow(l jobs.Listing) jobRow {
	row := jobRow{
		ID:                      l.ID,
		EmployerID:              l.EmployerID,
		Title:                   l.Title,
		Description:             l.Description,
		Requirements:            l.Requirements,
		Salary:                  nullString(l.Salary),
		Location:                l.Location,
		JobType:                 string(l.JobType),
		SkillsRequired:          l.SkillsRequired,
		PreferredQualifications: nullString(l.PreferredQualifications),
		CreatedAt:               l.CreatedAt,
		UpdatedAt:               l.UpdatedAt,
	}
	if l.ApplicationDeadline != nil {
		row.ApplicationDeadline = sql.NullTime{Time: *l.ApplicationDeadline, Valid: true}
	}
	return row
}

func (r jobRow) listing() jobs.Listing {
	l := jobs.Listing{
		ID:                      r.ID,
		EmployerID:              r.EmployerID,
		Title:                   r.Title,
		Description:             r.Description,
		Requirements:            r.Requirements,
		Salary:                  r.Salary.String,
		Location:                r.Location,
		JobType:                 jobs.Type(r.JobType),
		SkillsRequired:          r.SkillsRequired,
		PreferredQualifications: r.PreferredQualifications.String,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
	if r.ApplicationDeadline.Valid {
		d := r.ApplicationDeadline.Time.UTC()
		l.ApplicationDeadline = &d
	}
	return l
}

const insertJob = `insert into jobs (employer_id, title, description, requirements, salary, location, job_type,
	application_deadline, skills_required, preferred_qualifications, created_at, updated_at)
values (:employer_id, :title, :description, :requirements, :salary, :location, :job_type,
	:application_deadline, :skills_required, :preferred_qualifications, :created_at, :updated_at)
returning id`

func (s *Store) CreateListing(ctx context.Context, l jobs.Listing) (jobs.Listing, error) {
	query, args, err := s.db.BindNamed(insertJob, toJobRow(l))
	if err != nil {
		return jobs.Listing{}, mapError("CreateListing", "job", err)
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&l.ID); err != nil {
		if isForeignKeyViolation(err) {
			return jobs.Listing{}, fmt.Errorf("%w: employer %d not found", errs.ErrNotFound, l.EmployerID)
		}
		return jobs.Listing{}, mapError("CreateListing", "job", err)
	}
	return l, nil
}

func (s *Store) GetListing(ctx context.Context, id int64) (jobs.Listing, error) {
	var row jobRow
	if err := s.db.GetContext(ctx, &row, `select `+jobColumns+` from jobs where id = $1`, id); err != nil {
		return jobs.Listing{}, mapError("GetListing", "job", err)
	}
	return row.listing(), nil
}

func (s *Store) ListListings(ctx context.Context) ([]jobs.Listing, error) {
	return s.selectListings(ctx, "ListListings", `select `+jobColumns+` from jobs order by id`)
}

func (s *Store) ListListingsByEmployer(ctx context.Context, employerID int64) ([]jobs.Listing, error) {
	return s.selectListings(ctx, "ListListingsByEmployer",
		`select `+jobColumns+` from jobs where employer_id = $1 order by id`, employerID)
}

func (s *Store) selectListings(ctx context.Context, op, query string, args ...any) ([]jobs.Listing, error) {
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(op, "job", err)
	}
	out := make([]jobs.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.listing())
	}
	return out, nil
}

const updateJob = `update jobs set title = :title, description = :description, requirements = :requirements,
	salary = :salary, location = :location, job_type = :job_type, application_deadline = :application_deadline,
	skills_required = :skills_required, preferred_qualifications = :preferred_qualifications,
	updated_at = :updated_at
where id = :id
returning ` + jobColumns

func (s *Store) UpdateListing(ctx context.Context, l jobs.Listing) (jobs.Listing, error) {
	query, args, err := s.db.BindNamed(updateJob, toJobRow(l))
	if err != nil {
		return jobs.Listing{}, mapError("UpdateListing", "job", err)
	}
	var row jobRow
	if err := s.db.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return jobs.Listing{}, mapError("UpdateListing", "job", err)
	}
	return row.listing(), nil
}

func (s *Store) DeleteListing(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from jobs where id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: job %d has applications", errs.ErrConflict, id)
		}
		return mapError("DeleteListing", "job", err)
	}
	return expectOne(res, "DeleteListing", "job")
}

func expectOne(res sql.Result, op, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s not found", errs.ErrNotFound, entity)
	}
	return nil
}
