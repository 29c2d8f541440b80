package httpapi

import (
	"time"

	"github.com/samber/lo"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/jobs"
)

// userView never carries the password hash.
type userView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Website     string    `json:"website,omitempty"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newUserView(i accounts.Identity) userView {
	v := userView{
		ID:          i.ID,
		Username:    i.Username,
		Email:       i.Email,
		Role:        string(i.Role()),
		PhoneNumber: i.Phone,
		Address:     i.Address,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	switch p := i.Profile.(type) {
	case accounts.JobSeekerProfile:
		v.FirstName, v.LastName = p.FirstName, p.LastName
	case accounts.EmployerProfile:
		v.CompanyName, v.Website, v.ContactInfo = p.CompanyName, p.Website, p.ContactInfo
	}
	return v
}

type jobView struct {
	ID                      int64     `json:"id"`
	EmployerID              int64     `json:"employer_id"`
	Title                   string    `json:"title"`
	Description             string    `json:"description"`
	Requirements            string    `json:"requirements"`
	Salary                  string    `json:"salary,omitempty"`
	Location                string    `json:"location"`
	JobType                 string    `json:"job_type"`
	ApplicationDeadline     *string   `json:"application_deadline"`
	SkillsRequired          string    `json:"skills_required"`
	PreferredQualifications string    `json:"preferred_qualifications,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func newJobView(l jobs.Listing) jobView {
	v := jobView{
		ID:                      l.ID,
		EmployerID:              l.EmployerID,
		Title:                   l.Title,
		Description:             l.Description,
		Requirements:            l.Requirements,
		Salary:                  l.Salary,
		Location:                l.Location,
		JobType:                 string(l.JobType),
		SkillsRequired:          l.SkillsRequired,
		PreferredQualifications: l.PreferredQualifications,
		CreatedAt:               l.CreatedAt,
		UpdatedAt:               l.UpdatedAt,
	}
	if l.ApplicationDeadline != nil {
		v.ApplicationDeadline = lo.ToPtr(l.ApplicationDeadline.Format(jobs.DateLayout))
	}
	return v
}

type applicationView struct {
	ID                int64     `json:"id"`
	JobID             int64     `json:"job_id"`
	EmployerID        int64     `json:"employer_id"`
	UserID            int64     `json:"user_id"`
	Resume            string    `json:"resume"`
	CoverLetter       string    `json:"cover_letter"`
	Status            string    `json:"status"`
	Name              string    `json:"name,omitempty"`
	SchoolName        string    `json:"school_name,omitempty"`
	Portfolio         string    `json:"portfolio,omitempty"`
	Skills            string    `json:"skills,omitempty"`
	YearsOfExperience *int      `json:"years_of_experience,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newApplicationView(a applications.Application) applicationView {
	return applicationView{
		ID:                a.ID,
		JobID:             a.JobID,
		EmployerID:        a.EmployerID,
		UserID:            a.UserID,
		Resume:            a.Resume,
		CoverLetter:       a.CoverLetter,
		Status:            string(a.Status),
		Name:              a.Name,
		SchoolName:        a.SchoolName,
		Portfolio:         a.Portfolio,
		Skills:            a.Skills,
		YearsOfExperience: a.YearsOfExperience,
		SubmittedAt:       a.SubmittedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func mapViews[T, V any](items []T, fn func(T) V) []V {
	return lo.Map(items, func(item T, _ int) V { return fn(item) })
}
