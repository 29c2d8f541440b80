package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobkonnect.org/internal/errs"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":            "resume.pdf",
		"My Resume 2024.pdf":    "My_Resume_2024.pdf",
		"../../etc/passwd":      "etc_passwd",
		`..\..\windows\win.ini`: "windows_win.ini",
		"café résumé.docx":      "cafe_resume.docx",
		".hidden.pdf":           "hidden.pdf",
		"  spaced  out  .pdf":   "spaced_out_.pdf",
		"名前.pdf":                "pdf",
		"":                      "",
		"...":                   "",
		"weird$%chars!.pdf":     "weirdchars.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestValidateUpload(t *testing.T) {
	name, err := ValidateUpload("../Alice CV.PDF")
	require.NoError(t, err)
	assert.Equal(t, "Alice_CV.PDF", name)

	for _, bad := range []string{"", "../", "notes.txt", "archive.pdf.exe", "pdf"} {
		_, err := ValidateUpload(bad)
		assert.True(t, errors.Is(err, errs.ErrValidation), "expected validation error for %q, got %v", bad, err)
	}
}

func TestLocalStoreSaveAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := store.Save(ctx, "resume.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/resume.pdf", url)

	_, err = store.Save(ctx, "resume.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, "resume.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data), "same name overwrites")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestLocalStoreRejectsUnsanitizedNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.pdf", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Open(context.Background(), "../escape.pdf")
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = store.Open(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "resume.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "resume.pdf"))

	_, err = store.Open(ctx, "resume.pdf")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.NoError(t, store.Delete(ctx, "resume.pdf"), "deleting a missing file succeeds")
	assert.Error(t, store.Delete(ctx, "../escape.pdf"))
}
