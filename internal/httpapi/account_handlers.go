package httpapi

import (
	"errors"
	"net/http"
	"time"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/audit"
	"jobkonnect.org/internal/errs"
	"jobkonnect.org/internal/obs"
)

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	ContactInfo string `json:"contact_info"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User            userView `json:"user"`
	Token           string   `json:"token"`
	TokenExpiration string   `json:"token_expiration"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	identity, err := a.svc.Accounts.Register(r.Context(), accounts.Registration{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.PhoneNumber,
		Address:     req.Address,
		Role:        req.Role,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Website:     req.Website,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.registered", map[string]any{
		"user_id": identity.ID,
		"role":    string(identity.Role()),
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    newUserView(identity),
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := a.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthenticated) {
			obs.ObserveLogin("failure")
			_ = audit.LogEvent(r.Context(), "user.login_failed", nil)
		}
		handleError(w, r, err)
		return
	}

	obs.ObserveLogin("success")
	_ = audit.LogEvent(r.Context(), "user.login", map[string]any{
		"user_id":    session.Identity.ID,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
	writeJSON(w, http.StatusOK, loginResponse{
		User:            newUserView(session.Identity),
		Token:           session.Token,
		TokenExpiration: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	identity, err := a.svc.Accounts.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(identity))
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	identities, err := a.svc.Accounts.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(identities, newUserView))
}
