package common

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const SessionCookieName = "sid"

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionId,
		Domain:   cookieDomain(r.Host),
		SameSite: http.SameSiteNoneMode,
		HttpOnly: true,
		MaxAge:   2592000,
		Path:     "/",
	})
}

// cookieDomain drops the port and any leading dot from a request host.
func cookieDomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, ".")
}

// HandleSessionCookie returns the caller's session id, issuing a new one
// when the request carries none or an invalid one.
func HandleSessionCookie(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}
	sessionId := uuid.New().String()
	setSessionCookie(w, r, sessionId)
	return sessionId
}
