package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/dbx"
	"jobkonnect.org/internal/errs"
)

type applicationRow struct {
	ID                int64          `db:"id"`
	JobID             int64          `db:"job_id"`
	EmployerID        int64          `db:"employer_id"`
	UserID            int64          `db:"user_id"`
	Resume            sql.NullString `db:"resume"`
	CoverLetter       sql.NullString `db:"cover_letter"`
	Status            string         `db:"status"`
	Name              sql.NullString `db:"name"`
	SchoolName        sql.NullString `db:"school_name"`
	Portfolio         sql.NullString `db:"portfolio"`
	Skills            sql.NullString `db:"skills"`
	YearsOfExperience sql.NullInt32  `db:"years_of_experience"`
	SubmittedAt       time.Time      `db:"submitted_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

const applicationColumns = `id, job_id, employer_id, user_id, resume, cover_letter, status, name,
	school_name, portfolio, skills, years_of_experience, submitted_at, updated_at`

func toApplicationRow(a applications.Application) applicationRow {
	row := applicationRow{
		ID:          a.ID,
		JobID:       a.JobID,
		EmployerID:  a.EmployerID,
		UserID:      a.UserID,
		Resume:      nullString(a.Resume),
		CoverLetter: nullString(a.CoverLetter),
		Status:      string(a.Status),
		Name:        nullString(a.Name),
		SchoolName:  nullString(a.SchoolName),
		Portfolio:   nullString(a.Portfolio),
		Skills:      nullString(a.Skills),
		SubmittedAt: a.SubmittedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.YearsOfExperience != nil {
		row.YearsOfExperience = sql.NullInt32{Int32: int32(*a.YearsOfExperience), Valid: true}
	}
	return row
}

func (r applicationRow) application() applications.Application {
	a := applications.Application{
		ID:          r.ID,
		JobID:       r.JobID,
		EmployerID:  r.EmployerID,
		UserID:      r.UserID,
		Resume:      r.Resume.String,
		CoverLetter: r.CoverLetter.String,
		Status:      applications.Status(r.Status),
		Name:        r.Name.String,
		SchoolName:  r.SchoolName.String,
		Portfolio:   r.Portfolio.String,
		Skills:      r.Skills.String,
		SubmittedAt: r.SubmittedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.YearsOfExperience.Valid {
		years := int(r.YearsOfExperience.Int32)
		a.YearsOfExperience = &years
	}
	return a
}

const insertApplication = `insert into applications (job_id, employer_id, user_id, resume, cover_letter, status,
	name, school_name, portfolio, skills, years_of_experience, submitted_at, updated_at)
values (:job_id, :employer_id, :user_id, :resume, :cover_letter, :status,
	:name, :school_name, :portfolio, :skills, :years_of_experience, :submitted_at, :updated_at)
returning id`

// CreateApplication copies employer_id from the listing inside the insert
// transaction, so it always matches the job's current owner.
func (s *Store) CreateApplication(ctx context.Context, a applications.Application) (applications.Application, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tx.GetContext(ctx, &a.EmployerID,
			`select employer_id from jobs where id = $1 for share`, a.JobID); err != nil {
			return mapError("CreateApplication", "job", err)
		}
		query, args, err := tx.BindNamed(insertApplication, toApplicationRow(a))
		if err != nil {
			return mapError("CreateApplication", "application", err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&a.ID); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: applicant %d not found", errs.ErrNotFound, a.UserID)
			}
			return mapError("CreateApplication", "application", err)
		}
		return nil
	})
	if err != nil {
		if !classified(err) {
			err = mapError("CreateApplication", "application", err)
		}
		return applications.Application{}, err
	}
	return a, nil
}

func (s *Store) GetApplication(ctx context.Context, id int64) (applications.Application, error) {
	var row applicationRow
	err := s.db.GetContext(ctx, &row, `select `+applicationColumns+` from applications where id = $1`, id)
	if err != nil {
		return applications.Application{}, mapError("GetApplication", "application", err)
	}
	return row.application(), nil
}

func (s *Store) ListApplicationsByEmployer(ctx context.Context, employerID int64) ([]applications.Application, error) {
	return s.selectApplications(ctx, "ListApplicationsByEmployer",
		`select `+applicationColumns+` from applications where employer_id = $1 order by id`, employerID)
}

func (s *Store) ListApplicationsByApplicant(ctx context.Context, userID int64) ([]applications.Application, error) {
	return s.selectApplications(ctx, "ListApplicationsByApplicant",
		`select `+applicationColumns+` from applications where user_id = $1 order by id`, userID)
}

func (s *Store) selectApplications(ctx context.Context, op, query string, args ...any) ([]applications.Application, error) {
	var rows []applicationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(op, "application", err)
	}
	out := make([]applications.Application, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.application())
	}
	return out, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, status applications.Status, updatedAt time.Time) (applications.Application, error) {
	var row applicationRow
	err := s.db.QueryRowxContext(ctx,
		`update applications set status = $1, updated_at = $2 where id = $3 returning `+applicationColumns,
		string(status), updatedAt, id).StructScan(&row)
	if err != nil {
		return applications.Application{}, mapError("UpdateApplicationStatus", "application", err)
	}
	return row.application(), nil
}

func (s *Store) DeleteApplication(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from applications where id = $1`, id)
	if err != nil {
		return mapError("DeleteApplication", "application", err)
	}
	return expectOne(res, "DeleteApplication", "application")
}
