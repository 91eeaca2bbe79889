package session

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/ktanaka/todo/internal/platform/errors"
)

func newTestKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return public, private
}

func signToken(t *testing.T, private ed25519.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(private)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func testConfig(public ed25519.PublicKey, now time.Time) Config {
	return Config{
		Issuer:   "https://id.example.com",
		Audience: "todo",
		Key:      public,
		Now:      func() time.Time { return now },
	}
}

func validClaims(now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    "https://id.example.com",
		Audience:  jwt.ClaimStrings{"todo"},
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return r
}

func TestPrincipalFromValidCookie(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	public, private := newTestKeys(t)
	verifier, err := NewCookieVerifier(testConfig(public, now))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token := signToken(t, private, validClaims(now))
	principal, err := verifier.Principal(requestWithCookie(token))
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if principal != "user-1" {
		t.Fatalf("principal = %q, want %q", principal, "user-1")
	}
}

func TestPrincipalMissingCookie(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	public, _ := newTestKeys(t)
	verifier, err := NewCookieVerifier(testConfig(public, now))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	_, err = verifier.Principal(httptest.NewRequest(http.MethodGet, "/todos", nil))
	if !stderrors.Is(err, apperrors.New(apperrors.CodeUnauthenticated, "")) {
		t.Fatalf("error = %v, want UNAUTHENTICATED", err)
	}
}

func TestPrincipalRejectsBadTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	public, private := newTestKeys(t)
	_, otherPrivate := newTestKeys(t)
	verifier, err := NewCookieVerifier(testConfig(public, now))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	expired := validClaims(now)
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	wrongIssuer := validClaims(now)
	wrongIssuer.Issuer = "https://rogue.example.com"

	wrongAudience := validClaims(now)
	wrongAudience.Audience = jwt.ClaimStrings{"other-app"}

	noSubject := validClaims(now)
	noSubject.Subject = ""

	notYetValid := validClaims(now)
	notYetValid.NotBefore = jwt.NewNumericDate(now.Add(time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", signToken(t, otherPrivate, validClaims(now))},
		{"expired", signToken(t, private, expired)},
		{"wrong issuer", signToken(t, private, wrongIssuer)},
		{"wrong audience", signToken(t, private, wrongAudience)},
		{"no subject", signToken(t, private, noSubject)},
		{"not yet valid", signToken(t, private, notYetValid)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := verifier.Principal(requestWithCookie(tc.token))
			if !stderrors.Is(err, apperrors.New(apperrors.CodeUnauthenticated, "")) {
				t.Fatalf("error = %v, want UNAUTHENTICATED", err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	public, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	t.Setenv("TODO_SESSION_ISSUER", "https://id.example.com")
	t.Setenv("TODO_SESSION_AUDIENCE", "todo")
	t.Setenv("TODO_SESSION_PUBLIC_KEY", base64.RawStdEncoding.EncodeToString(public))

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Issuer != "https://id.example.com" {
		t.Fatalf("issuer = %q", cfg.Issuer)
	}
	if cfg.Audience != "todo" {
		t.Fatalf("audience = %q", cfg.Audience)
	}
	if !cfg.Key.Equal(public) {
		t.Fatal("public key mismatch")
	}
}

func TestLoadConfigFromEnvRequiresKey(t *testing.T) {
	t.Setenv("TODO_SESSION_ISSUER", "https://id.example.com")
	t.Setenv("TODO_SESSION_AUDIENCE", "todo")
	t.Setenv("TODO_SESSION_PUBLIC_KEY", "")

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for missing public key")
	}
}
