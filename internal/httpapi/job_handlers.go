package httpapi

import (
	"net/http"

	"jobkonnect.org/internal/audit"
	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/jobs"
)

type jobRequest struct {
	Title                   string `json:"title"`
	Description             string `json:"description"`
	Requirements            string `json:"requirements"`
	Salary                  string `json:"salary"`
	Location                string `json:"location"`
	JobType                 string `json:"job_type"`
	ApplicationDeadline     string `json:"application_deadline"`
	SkillsRequired          string `json:"skills_required"`
	PreferredQualifications string `json:"preferred_qualifications"`
}

func (req jobRequest) draft() jobs.Draft {
	return jobs.Draft{
		Title:                   req.Title,
		Description:             req.Description,
		Requirements:            req.Requirements,
		Salary:                  req.Salary,
		Location:                req.Location,
		JobType:                 req.JobType,
		ApplicationDeadline:     req.ApplicationDeadline,
		SkillsRequired:          req.SkillsRequired,
		PreferredQualifications: req.PreferredQualifications,
	}
}

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	listings, err := a.svc.Jobs.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(listings, newJobView))
}

func (a *API) listEmployerJobs(w http.ResponseWriter, r *http.Request) {
	employerID, err := pathID(r, "employer_id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	listings, err := a.svc.Jobs.ListByEmployer(r.Context(), employerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(listings, newJobView))
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	listing, err := a.svc.Jobs.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobView(listing))
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	listing, err := a.svc.Jobs.Create(r.Context(), user, req.draft())
	if err != nil {
		handleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "job.created", map[string]any{"job_id": listing.ID})
	writeJSON(w, http.StatusCreated, newJobView(listing))
}

func (a *API) updateJob(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	listing, err := a.svc.Jobs.Update(r.Context(), user, id, req.draft())
	if err != nil {
		handleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "job.updated", map[string]any{"job_id": listing.ID})
	writeJSON(w, http.StatusOK, newJobView(listing))
}

func (a *API) deleteJob(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := a.svc.Jobs.Delete(r.Context(), user, id); err != nil {
		handleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "job.deleted", map[string]any{"job_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"message": "job deleted successfully"})
}
