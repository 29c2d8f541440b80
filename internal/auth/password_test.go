package auth

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
)

func TestHashPasswordSaltsEachCall(t *testing.T) {
	h1, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same plaintext")
	}
	if !VerifyPassword(h1, "s3cret!") || !VerifyPassword(h2, "s3cret!") {
		t.Fatalf("both hashes must verify")
	}
	if VerifyPassword(h1, "S3cret!") {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashPasswordRejectsInvalidInput(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("x", 73)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for long password, got %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutput(&buf)
	defer restore()

	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatalf("malformed hash must not verify")
	}
	if !strings.Contains(buf.String(), "malformed") {
		t.Fatalf("expected a warning to be logged, got %q", buf.String())
	}
}
