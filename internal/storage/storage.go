// Package storage saves uploaded application documents on local disk or in
// an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"jobkonnect.org/internal/errs"
)

// AllowedExtensions are the accepted document types.
var AllowedExtensions = []string{".pdf", ".docx"}

// ErrNotExist is returned by Open for an unknown name.
var ErrNotExist = fmt.Errorf("%w: file not found", errs.ErrNotFound)

// Store saves and reads back uploads by sanitized name. Saving an existing
// name replaces the previous content. Deleting a missing name succeeds.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (url string, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// SanitizeFilename reduces name to a safe base name: non-ASCII is folded or
// dropped, path separators and whitespace become underscores, anything
// outside [A-Za-z0-9._-] is removed and leading or trailing dots and
// underscores are trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.' || c == '_' || c == '-':
			b.WriteRune(c)
		}
	}
	return strings.Trim(b.String(), "._")
}

// ValidateUpload sanitizes name and checks its extension.
func ValidateUpload(name string) (string, error) {
	clean := SanitizeFilename(name)
	if clean == "" {
		return "", fmt.Errorf("%w: file name is empty or invalid", errs.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(clean))
	if !lo.Contains(AllowedExtensions, ext) {
		return "", fmt.Errorf("%w: file type %q is not allowed, use one of %s", errs.ErrValidation, ext, strings.Join(AllowedExtensions, ", "))
	}
	return clean, nil
}

func checkName(name string) error {
	if name == "" || name != SanitizeFilename(name) {
		return errors.New("storage: name must be sanitized")
	}
	return nil
}
