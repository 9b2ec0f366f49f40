package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie identifying anonymous actors.
const SessionCookieName = "flag_session"

// sessionMaxAge keeps anonymous flaggings reachable for a year.
const sessionMaxAge = 365 * 24 * time.Hour

// NewSessionID returns a fresh anonymous session id.
func NewSessionID() string {
	return uuid.NewString()
}

// SessionFromRequest returns the anonymous session id carried by r, if any
// valid one is present.
func SessionFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	u, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// SessionCookie builds the cookie that stores sessionID.
func SessionCookie(sessionID string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
