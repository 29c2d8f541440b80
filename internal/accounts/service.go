package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/errs"
)

// Registration is the input of Register. Fields belonging to the other role
// are ignored.
type Registration struct {
	Username    string `validate:"required,max=50"`
	Email       string `validate:"required,email,max=100"`
	Password    string `validate:"required"`
	Phone       string `validate:"required,max=15"`
	Address     string `validate:"max=255"`
	Role        string `validate:"required"`
	FirstName   string `validate:"max=50"`
	LastName    string `validate:"max=50"`
	CompanyName string `validate:"max=100"`
	Website     string `validate:"max=255"`
	ContactInfo string `validate:"max=255"`
}

// Session is a successful login.
type Session struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer signs tokens for an identity.
type TokenIssuer interface {
	Issue(id int64, username string, role auth.Role) (string, time.Time, error)
}

// Service implements registration, login and identity lookups.
type Service struct {
	store    Store
	tokens   TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the registration, hashes the password and stores the identity.
func (s *Service) Register(ctx context.Context, reg Registration) (Identity, error) {
	reg = normalize(reg)
	if err := s.validate.Struct(reg); err != nil {
		return Identity{}, validationError(err)
	}
	role, err := auth.ParseRole(reg.Role)
	if err != nil {
		return Identity{}, err
	}

	var profile Profile
	switch role {
	case auth.RoleJobSeeker:
		profile = JobSeekerProfile{FirstName: reg.FirstName, LastName: reg.LastName}
	case auth.RoleEmployer:
		profile = EmployerProfile{CompanyName: reg.CompanyName, Website: reg.Website, ContactInfo: reg.ContactInfo}
	}
	if err := profile.validate(); err != nil {
		return Identity{}, err
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return Identity{}, err
	}

	now := s.now().UTC()
	return s.store.CreateIdentity(ctx, Identity{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Phone:        reg.Phone,
		Address:      reg.Address,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login checks the email and password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}

	identity, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Session{}, errInvalidCredentials
		}
		return Session{}, err
	}
	if !auth.VerifyPassword(identity.PasswordHash, password) {
		return Session{}, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(identity.ID, identity.Username, identity.Role())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Identity: identity, Token: token, ExpiresAt: expiresAt}, nil
}

// Get returns the identity with id.
func (s *Service) Get(ctx context.Context, id int64) (Identity, error) {
	if id <= 0 {
		return Identity{}, fmt.Errorf("%w: user not found", errs.ErrNotFound)
	}
	return s.store.GetIdentity(ctx, id)
}

// List returns every identity ordered by id.
func (s *Service) List(ctx context.Context) ([]Identity, error) {
	return s.store.ListIdentities(ctx)
}

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", errs.ErrUnauthenticated)

func normalize(reg Registration) Registration {
	trim := strings.TrimSpace
	reg.Username = trim(reg.Username)
	reg.Email = strings.ToLower(trim(reg.Email))
	reg.Phone = trim(reg.Phone)
	reg.Address = trim(reg.Address)
	reg.Role = trim(reg.Role)
	reg.FirstName = trim(reg.FirstName)
	reg.LastName = trim(reg.LastName)
	reg.CompanyName = trim(reg.CompanyName)
	reg.Website = trim(reg.Website)
	reg.ContactInfo = trim(reg.ContactInfo)
	return reg
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	fe := verrs[0]
	field := fieldNames[fe.Field()]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", errs.ErrValidation, field)
	case "email":
		return fmt.Errorf("%w: %s must be a valid email address", errs.ErrValidation, field)
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", errs.ErrValidation, field, fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", errs.ErrValidation, field)
	}
}

var fieldNames = map[string]string{
	"Username":    "username",
	"Email":       "email",
	"Password":    "password",
	"Phone":       "phone_number",
	"Address":     "address",
	"Role":        "role",
	"FirstName":   "first_name",
	"LastName":    "last_name",
	"CompanyName": "company_name",
	"Website":     "website",
	"ContactInfo": "contact_info",
}
