package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/netip"
	"time"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/jobs"
	"jobkonnect.org/internal/obs"
	"jobkonnect.org/internal/storage"
)

const serviceName = "jobkonnect-api"

// ReadyProbe checks readiness by pinging the database, when there is one.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// TokenVerifier validates access tokens presented by clients.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Accounts     *accounts.Service
	Jobs         *jobs.Service
	Applications *applications.Service
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe readinessChecker
	version    string
	tokens     TokenVerifier
	svc        Services
	files      storage.Store
	health     *HealthServer

	rateBurst      int
	ratePerSec     int
	trustedProxies []netip.Prefix
	maxUploadBytes int64
}

type Option func(*API)

func WithRateLimit(burst, perSecond int) Option {
	return func(a *API) {
		a.rateBurst = burst
		a.ratePerSec = perSecond
	}
}

// WithTrustedProxies makes the rate limiter key on X-Forwarded-For for
// requests arriving from the given networks.
func WithTrustedProxies(p []netip.Prefix) Option {
	return func(a *API) { a.trustedProxies = p }
}

// WithMaxUploadBytes caps the size of multipart application bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxUploadBytes = n
		}
	}
}

// WithHealthServer lets /readyz refresh the gRPC health status.
func WithHealthServer(h *HealthServer) Option {
	return func(a *API) { a.health = h }
}

func New(rp ReadyProbe, version string, tokens TokenVerifier, svc Services, files storage.Store, opts ...Option) *API {
	a := &API{
		mux:            http.NewServeMux(),
		readyProbe:     rp,
		version:        version,
		tokens:         tokens,
		svc:            svc,
		files:          files,
		rateBurst:      20,
		ratePerSec:     10,
		maxUploadBytes: 16 << 20,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())
	a.mux.HandleFunc("GET /{$}", a.Welcome)

	a.mux.HandleFunc("POST /api/user/register", a.register)
	a.mux.HandleFunc("POST /api/user/login", a.login)
	a.mux.HandleFunc("GET /api/user/{id}", a.getUser)
	a.mux.HandleFunc("GET /api/users", a.listUsers)

	a.mux.HandleFunc("GET /api/jobs", a.listJobs)
	a.mux.Handle("POST /api/jobs", a.authenticated(RequireRole(auth.RoleEmployer)(http.HandlerFunc(a.createJob))))
	a.mux.HandleFunc("GET /api/jobs/{id}", a.getJob)
	a.mux.Handle("PUT /api/jobs/{id}", a.authenticated(http.HandlerFunc(a.updateJob)))
	a.mux.Handle("DELETE /api/jobs/{id}", a.authenticated(http.HandlerFunc(a.deleteJob)))
	a.mux.HandleFunc("GET /api/jobs/employer/{employer_id}", a.listEmployerJobs)
	a.mux.Handle("POST /api/jobs/{id}/apply", a.authenticated(RequireRole(auth.RoleJobSeeker)(http.HandlerFunc(a.apply))))

	a.mux.Handle("GET /api/applications", a.authenticated(http.HandlerFunc(a.listApplications)))
	a.mux.Handle("GET /api/application/{id}", a.authenticated(http.HandlerFunc(a.getApplication)))
	a.mux.Handle("PUT /api/application/{id}", a.authenticated(http.HandlerFunc(a.updateApplication)))
	a.mux.Handle("DELETE /api/application/{id}", a.authenticated(http.HandlerFunc(a.deleteApplication)))

	a.mux.HandleFunc("GET /uploads/{filename}", a.serveUpload)

	return a
}

// Handler returns the fully wrapped handler for the HTTP server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = RateLimit(h, a.rateBurst, a.ratePerSec, a.trustedProxies)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to JobKonnect",
	})
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	var err error
	if a.health != nil {
		err = a.health.Refresh(r.Context())
	} else {
		err = a.readyProbe.Check(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
