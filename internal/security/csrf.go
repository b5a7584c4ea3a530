package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const (
	CSRFCookieName = "staffdesk_csrf"
	CSRFFieldName  = "csrf_token"
	csrfTokenBytes = 32
)

// NewCSRFToken returns a random URL-safe token.
func NewCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// EnsureCSRFCookie returns the token already held by the browser or issues a
// new one as a cookie.
func EnsureCSRFCookie(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && validTokenShape(c.Value) {
		return c.Value, nil
	}
	token, err := NewCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token, nil
}

// VerifyCSRF compares the submitted form token with the cookie copy
// (double-submit). The form must already be parsed.
func VerifyCSRF(r *http.Request) bool {
	c, err := r.Cookie(CSRFCookieName)
	if err != nil || !validTokenShape(c.Value) {
		return false
	}
	submitted := strings.TrimSpace(r.FormValue(CSRFFieldName))
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(c.Value)) == 1
}

func validTokenShape(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil && len(raw) == csrfTokenBytes
}
