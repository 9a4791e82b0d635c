package utils

import (
	"net/http"
	"time"
)

// CreateDraftClientIDCookieHeader returns the upgrade response header that
// lets a drafter reclaim their seat after reconnecting.
func CreateDraftClientIDCookieHeader(clientID, cookieName string, ttl time.Duration) http.Header {
	var clientIDHeader = http.Header{}
	clientIdCookie := &http.Cookie{
		Name:     cookieName,
		Value:    clientID,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if v := clientIdCookie.String(); v != "" {
		clientIDHeader.Add("Set-Cookie", v)
	}
	return clientIDHeader
}

// HasDraftClientIDCookie reports the client id a request carries, if any.
func HasDraftClientIDCookie(r *http.Request, cookieName string) (bool, string) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return false, ""
	}
	return true, cookie.Value
}
