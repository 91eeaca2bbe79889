// Package session resolves the authenticated principal for inbound requests.
//
// Session issuance (login, token minting, refresh) is owned by the identity
// provider; this package only verifies what it issued. The production
// verifier checks an ed25519-signed JWT carried in an HttpOnly cookie.
package session

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ktanaka/todo/internal/platform/config"
	apperrors "github.com/ktanaka/todo/internal/platform/errors"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "todo_session"

// Verifier resolves an authenticated principal from an inbound request.
type Verifier interface {
	// Principal returns the authenticated user identifier, or an
	// UNAUTHENTICATED domain error when the request has no valid session.
	Principal(r *http.Request) (string, error)
}

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer    string `env:"TODO_SESSION_ISSUER"`
	Audience  string `env:"TODO_SESSION_AUDIENCE"`
	PublicKey string `env:"TODO_SESSION_PUBLIC_KEY"`
}

// Config defines how session tokens are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// LoadConfigFromEnv reads session verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw sessionEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("TODO_SESSION_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("TODO_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("TODO_SESSION_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// CookieVerifier verifies session JWTs presented through the session cookie.
type CookieVerifier struct {
	cfg Config
}

// NewCookieVerifier creates a verifier for the given configuration.
func NewCookieVerifier(cfg Config) (*CookieVerifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return nil, errors.New("session verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CookieVerifier{cfg: cfg}, nil
}

// Principal extracts and verifies the session cookie, returning the subject.
func (v *CookieVerifier) Principal(r *http.Request) (string, error) {
	if v == nil {
		return "", errUnauthenticated()
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", errUnauthenticated()
	}
	return v.VerifyToken(strings.TrimSpace(cookie.Value))
}

// VerifyToken validates a raw session token and returns its subject.
func (v *CookieVerifier) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", errUnauthenticated()
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (any, error) {
		return v.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", errUnauthenticated()
	}

	if claims.Issuer == "" || claims.Issuer != v.cfg.Issuer {
		return "", errUnauthenticated()
	}
	if !audienceContains(claims.Audience, v.cfg.Audience) {
		return "", errUnauthenticated()
	}
	if claims.ExpiresAt == nil {
		return "", errUnauthenticated()
	}
	now := v.cfg.Now().UTC()
	if !claims.ExpiresAt.Time.UTC().After(now) {
		return "", errUnauthenticated()
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time.UTC()) {
		return "", errUnauthenticated()
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", errUnauthenticated()
	}
	return subject, nil
}

func errUnauthenticated() error {
	return apperrors.New(apperrors.CodeUnauthenticated, "authentication required")
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.RawStdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}

var _ Verifier = (*CookieVerifier)(nil)
