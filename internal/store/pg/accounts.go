package pg

import (
	"context"
	"database/sql"
	"time"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/auth"
)

type userRow struct {
	ID           int64          `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"`
	Phone        string         `db:"phone_number"`
	Address      sql.NullString `db:"address"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	CompanyName  sql.NullString `db:"company_name"`
	Website      sql.NullString `db:"website"`
	ContactInfo  sql.NullString `db:"contact_info"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

const userColumns = `id, username, email, password_hash, role, phone_number, address,
	first_name, last_name, company_name, website, contact_info, created_at, updated_at`

func toUserRow(i accounts.Identity) userRow {
	row := userRow{
		ID:           i.ID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         string(i.Role()),
		Phone:        i.Phone,
		Address:      nullString(i.Address),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
	switch p := i.Profile.(type) {
	case accounts.JobSeekerProfile:
		row.FirstName = nullString(p.FirstName)
		row.LastName = nullString(p.LastName)
	case accounts.EmployerProfile:
		row.CompanyName = nullString(p.CompanyName)
		row.Website = nullString(p.Website)
		row.ContactInfo = nullString(p.ContactInfo)
	}
	return row
}

func (r userRow) identity() accounts.Identity {
	i := accounts.Identity{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone,
		Address:      r.Address.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if auth.Role(r.Role) == auth.RoleEmployer {
		i.Profile = accounts.EmployerProfile{
			CompanyName: r.CompanyName.String,
			Website:     r.Website.String,
			ContactInfo: r.ContactInfo.String,
		}
	} else {
		i.Profile = accounts.JobSeekerProfile{FirstName: r.FirstName.String, LastName: r.LastName.String}
	}
	return i
}

const insertUser = `insert into users (username, email, password_hash, role, phone_number, address,
	first_name, last_name, company_name, website, contact_info, created_at, updated_at)
values (:username, :email, :password_hash, :role, :phone_number, :address,
	:first_name, :last_name, :company_name, :website, :contact_info, :created_at, :updated_at)
returning id`

func (s *Store) CreateIdentity(ctx context.Context, identity accounts.Identity) (accounts.Identity, error) {
	query, args, err := s.db.BindNamed(insertUser, toUserRow(identity))
	if err != nil {
		return accounts.Identity{}, mapError("CreateIdentity", "user", err)
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&identity.ID); err != nil {
		return accounts.Identity{}, mapError("CreateIdentity", "user", err)
	}
	return identity, nil
}

func (s *Store) GetIdentity(ctx context.Context, id int64) (accounts.Identity, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `select `+userColumns+` from users where id = $1`, id)
	if err != nil {
		return accounts.Identity{}, mapError("GetIdentity", "user", err)
	}
	return row.identity(), nil
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (accounts.Identity, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `select `+userColumns+` from users where lower(email) = lower($1)`, email)
	if err != nil {
		return accounts.Identity{}, mapError("GetIdentityByEmail", "user", err)
	}
	return row.identity(), nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]accounts.Identity, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `select `+userColumns+` from users order by id`); err != nil {
		return nil, mapError("ListIdentities", "user", err)
	}
	out := make([]accounts.Identity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.identity())
	}
	return out, nil
}
