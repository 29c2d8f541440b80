package httpapi

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

func (a *API) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	rc, err := a.files.Open(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	_, _ = io.Copy(w, rc)
}
