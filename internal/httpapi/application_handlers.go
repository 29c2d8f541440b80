package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/audit"
	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
)

const multipartMemory = 8 << 20

type statusRequest struct {
	Status string `json:"status"`
}

func (a *API) apply(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	jobID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		handleError(w, r, fmt.Errorf("%w: multipart form expected: %v", errs.ErrValidation, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	sub, closeFiles, err := submissionFromForm(r)
	defer closeFiles()
	if err != nil {
		handleError(w, r, err)
		return
	}

	app, err := a.svc.Applications.Apply(r.Context(), user, jobID, sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	obs.ObserveApplication("submitted")
	_ = audit.LogEvent(r.Context(), "application.submitted", map[string]any{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"employer_id":    app.EmployerID,
	})
	writeJSON(w, http.StatusCreated, newApplicationView(app))
}

// submissionFromForm reads the applicant fields and the two documents. The
// returned func closes any opened files and is safe to call on error.
func submissionFromForm(r *http.Request) (applications.Submission, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	sub := applications.Submission{
		Name:       strings.TrimSpace(r.FormValue("name")),
		SchoolName: strings.TrimSpace(r.FormValue("school_name")),
		Portfolio:  strings.TrimSpace(r.FormValue("portfolio")),
		Skills:     strings.TrimSpace(r.FormValue("skills")),
		Status:     strings.TrimSpace(r.FormValue("status")),
	}
	if raw := strings.TrimSpace(r.FormValue("years_of_experience")); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return sub, closeAll, fmt.Errorf("%w: years_of_experience must be an integer", errs.ErrValidation)
		}
		sub.YearsOfExperience = &years
	}

	for _, field := range []struct {
		name string
		dst  **applications.Upload
	}{
		{"resume", &sub.Resume},
		{"cover_letter", &sub.CoverLetter},
	} {
		f, hdr, err := r.FormFile(field.name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return sub, closeAll, fmt.Errorf("%w: %s: %v", errs.ErrValidation, field.name, err)
		}
		opened = append(opened, f)
		*field.dst = &applications.Upload{Filename: hdr.Filename, Content: f}
	}
	return sub, closeAll, nil
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	apps, err := a.svc.Applications.List(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(apps, newApplicationView))
}

func (a *API) getApplication(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	app, err := a.svc.Applications.Get(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newApplicationView(app))
}

func (a *API) updateApplication(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	app, err := a.svc.Applications.UpdateStatus(r.Context(), user, id, req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	obs.ObserveApplication("status_updated")
	_ = audit.LogEvent(r.Context(), "application.status_updated", map[string]any{
		"application_id": app.ID,
		"status":         string(app.Status),
	})
	writeJSON(w, http.StatusOK, newApplicationView(app))
}

func (a *API) deleteApplication(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := a.svc.Applications.Delete(r.Context(), user, id); err != nil {
		handleError(w, r, err)
		return
	}
	obs.ObserveApplication("deleted")
	_ = audit.LogEvent(r.Context(), "application.deleted", map[string]any{"application_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"message": "application deleted successfully"})
}
