// Package credential issues and verifies the bearer tokens that identify
// vault callers. Tokens are HMAC-signed JWTs; the subject claim carries
// the caller address and the scopes claim carries operator grants.
package credential

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
)

// ScopeAdmin marks a token that may call operator endpoints.
const ScopeAdmin = "vault.admin"

// credentialEnv holds raw env values before post-parse validation.
type credentialEnv struct {
	Issuer   string `env:"CROWDVAULT_AUTH_ISSUER"`
	Audience string `env:"CROWDVAULT_AUTH_AUDIENCE"`
	HMACKey  string `env:"CROWDVAULT_AUTH_HMAC_KEY"`
}

// Config defines how credentials are signed and verified.
type Config struct {
	Issuer   string
	Audience string
	Key      []byte
	Now      func() time.Time
}

// Claims captures a validated credential.
type Claims struct {
	// Subject is the caller address.
	Subject   string
	Scopes    []string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
}

// HasScope reports whether the credential carries the given scope.
func (c Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes,omitempty"`
}

// LoadConfigFromEnv reads credential signing configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw credentialEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse credential env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	hmacKey := strings.TrimSpace(raw.HMACKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("CROWDVAULT_AUTH_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("CROWDVAULT_AUTH_AUDIENCE is required")
	}
	if hmacKey == "" {
		return Config{}, fmt.Errorf("CROWDVAULT_AUTH_HMAC_KEY is required")
	}
	key, err := hex.DecodeString(hmacKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode credential hmac key: %w", err)
	}
	if len(key) < 32 {
		return Config{}, fmt.Errorf("credential hmac key must be at least 32 bytes")
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      key,
		Now:      now,
	}, nil
}

// Issue signs a credential for the subject with the given scopes and TTL.
func Issue(cfg Config, subject, jwtID string, scopes []string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(jwtID) == "" {
		return "", fmt.Errorf("jwt id is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be greater than zero")
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) == 0 {
		return "", fmt.Errorf("credential signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	now := cfg.Now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jwtID,
		},
		Scopes: scopes,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Verify validates a credential token and returns its claims.
func Verify(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeCredentialMissing, "credential is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) == 0 {
		return Claims{}, errors.New("credential verifier is not configured")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.New(
			apperrors.CodeCredentialInvalid,
			"credential issuer mismatch",
		).WithMetadata(map[string]string{"Field": "issuer"})
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.New(
			apperrors.CodeCredentialInvalid,
			"credential audience mismatch",
		).WithMetadata(map[string]string{"Field": "audience"})
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential subject is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential not active yet")
	}

	claims := Claims{
		Subject:   parsed.Subject,
		Scopes:    parsed.Scopes,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrSignatureInvalid) {
		return apperrors.New(apperrors.CodeCredentialInvalid, "credential signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeCredentialInvalid, "credential alg is invalid")
	}
	return apperrors.New(apperrors.CodeCredentialInvalid, "credential is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}
