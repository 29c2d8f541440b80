package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobkonnect.org/internal/errs"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", WithClock(clock.Now), WithIssuer("test-issuer"))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewTokenService(secret); !errors.Is(err, ErrMissingSecret) {
			t.Fatalf("secret %q: expected ErrMissingSecret, got %v", secret, err)
		}
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, expiresAt, err := svc.Issue(42, "alice", RoleJobSeeker)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if want := clock.t.Add(time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Role != RoleJobSeeker {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "test-issuer" || claims.Subject != "42" || claims.ID == "" {
		t.Fatalf("registered claims not populated: %+v", claims.RegisteredClaims)
	}
	if u := claims.CurrentUser(); u.ID != 42 || u.Role != RoleJobSeeker {
		t.Fatalf("unexpected current user: %+v", u)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	svc := newTestService(t, clock)

	token, _, err := svc.Issue(7, "bob", RoleEmployer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.t = start.Add(59 * time.Minute)
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should be valid at T+59m: %v", err)
	}

	clock.t = start.Add(time.Hour)
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at exactly T+60m, got %v", err)
	}

	clock.t = start.Add(61 * time.Minute)
	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at T+61m, got %v", err)
	}
	if !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("token errors must wrap ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	if _, err := svc.Verify("  "); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	other, err := NewTokenService("other-secret", WithClock(clock.Now), WithIssuer("test-issuer"))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	foreign, _, err := other.Issue(1, "mallory", RoleEmployer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	good, _, err := svc.Issue(1, "alice", RoleJobSeeker)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(good, ".")
	foreignParts := strings.Split(foreign, ".")
	tampered := parts[0] + "." + foreignParts[1] + "." + parts[2]

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"tampered":     tampered,
		"two segments": parts[0] + "." + parts[1],
	}
	for name, token := range cases {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("%s: expected ErrTokenMalformed, got %v", name, err)
		}
	}
}

func TestVerifyPinsAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	claims := Claims{
		UserID:   1,
		Username: "mallory",
		Role:     RoleEmployer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(clock.t),
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Verify(none); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}
	if _, err := svc.Verify(hs512); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("HS512 must be rejected, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuerA, _ := NewTokenService("shared", WithClock(clock.Now), WithIssuer("a"))
	issuerB, _ := NewTokenService("shared", WithClock(clock.Now), WithIssuer("b"))

	token, _, err := issuerA.Issue(3, "carol", RoleJobSeeker)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuerB.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for foreign issuer, got %v", err)
	}
}

func TestIssueValidatesInput(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	if _, _, err := svc.Issue(0, "x", RoleEmployer); err == nil {
		t.Fatalf("expected error for zero id")
	}
	if _, _, err := svc.Issue(1, "x", Role("admin")); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
