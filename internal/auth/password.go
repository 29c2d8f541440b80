package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
)

// HashPassword hashes plaintext password using bcrypt with a fresh salt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf("%w: password is required", errs.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be at most 72 bytes", errs.ErrValidation)
		}
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is
// logged and treated as a mismatch.
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false
	default:
		obs.Logger().Warn().Err(err).Str("component", "auth.VerifyPassword").Msg("stored password hash is malformed")
		return false
	}
}
