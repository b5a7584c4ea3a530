package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrExpiredAPIKey = errors.New("api key has expired")

// APIKeyInfo describes what a legacy Supabase JWT key claims about itself.
// Newer opaque keys (sb_publishable_..., sb_secret_...) carry no claims.
type APIKeyInfo struct {
	JWT        bool
	Role       string
	Issuer     string
	ProjectRef string
	ExpiresAt  time.Time
}

type supabaseKeyClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Ref  string `json:"ref"`
}

// InspectAPIKey reads the claims of a JWT-shaped key without verifying its
// signature; only the backend holds the secret. Expired keys are rejected.
func InspectAPIKey(key string, now time.Time) (APIKeyInfo, error) {
	key = strings.TrimSpace(key)
	if strings.Count(key, ".") != 2 {
		return APIKeyInfo{}, nil
	}

	var claims supabaseKeyClaims
	if _, _, err := jwt.NewParser().ParseUnverified(key, &claims); err != nil {
		return APIKeyInfo{}, fmt.Errorf("parse api key: %w", err)
	}

	info := APIKeyInfo{
		JWT:        true,
		Role:       claims.Role,
		Issuer:     claims.Issuer,
		ProjectRef: claims.Ref,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(info.ExpiresAt) {
			return info, ErrExpiredAPIKey
		}
	}
	return info, nil
}

// ServiceRole reports whether the key bypasses row level security.
func (i APIKeyInfo) ServiceRole() bool {
	return i.Role == "service_role"
}
