// utils/session.go
package utils

import (
	"net/http"
	"os"
	"time"
)

// SessionCookieName carries the authenticated account identifier. There is
// no server-side session record; the cookie is the whole session.
const SessionCookieName = "userId"

const sessionMaxAge = 7 * 24 * time.Hour

// NewSessionCookie encodes the account identifier into the session cookie.
func NewSessionCookie(userID string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    userID,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   isProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns an expired cookie that removes the session.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

// DecodeSessionCookie extracts the account identifier from a request.
// A missing or empty cookie means unauthenticated, never an error.
func DecodeSessionCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func isProduction() bool {
	return os.Getenv("ENV") == "production"
}
