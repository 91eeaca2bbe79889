// Package sessiontoken mints development session tokens.
//
// Production tokens come from the identity provider; this tool exists so a
// local server can be exercised without one.
package sessiontoken

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Params describes the token to mint.
type Params struct {
	PrivateKey string // base64-encoded ed25519 private key
	Issuer     string
	Audience   string
	UserID     string
	TTL        time.Duration
	Now        func() time.Time
}

// Run signs a session token and writes it to out.
func Run(out io.Writer, params Params) error {
	if out == nil {
		return errors.New("output is required")
	}
	userID := strings.TrimSpace(params.UserID)
	if userID == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(params.Issuer) == "" {
		return errors.New("issuer is required")
	}
	if strings.TrimSpace(params.Audience) == "" {
		return errors.New("audience is required")
	}
	keyBytes, err := decodeBase64(strings.TrimSpace(params.PrivateKey))
	if err != nil {
		return fmt.Errorf("decode private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now
	if params.Now != nil {
		now = params.Now
	}

	issuedAt := now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    params.Issuer,
		Audience:  jwt.ClaimStrings{params.Audience},
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(ed25519.PrivateKey(keyBytes))
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	if _, err := fmt.Fprintln(out, token); err != nil {
		return err
	}
	return nil
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.RawStdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
