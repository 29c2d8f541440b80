package auth

import (
	"fmt"

	"jobkonnect.org/internal/errs"
)

// Token errors all wrap errs.ErrUnauthenticated.
var (
	ErrTokenMissing   = fmt.Errorf("%w: token is missing", errs.ErrUnauthenticated)
	ErrTokenMalformed = fmt.Errorf("%w: invalid token", errs.ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token has expired", errs.ErrUnauthenticated)
)
