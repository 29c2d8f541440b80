package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var constraintMessages = map[string]string{
	"users_username_key": "username already taken",
	"users_email_key":    "email already registered",
}

// mapError translates driver errors into errs kinds. notFound describes the
// missing entity for sql.ErrNoRows.
func mapError(op, notFound string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s not found", errs.ErrNotFound, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			msg, ok := constraintMessages[pgErr.ConstraintName]
			if !ok {
				msg = "duplicate value"
			}
			return fmt.Errorf("%w: %s", errs.ErrConflict, msg)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s is still referenced", errs.ErrConflict, notFound)
		}
	}
	obs.Logger().Error().Err(err).Str("component", "pg."+op).Msg("query failed")
	return fmt.Errorf("%w: %s", errs.ErrPersistence, op)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// classified reports whether err already carries an errs kind.
func classified(err error) bool {
	return errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrPersistence)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
