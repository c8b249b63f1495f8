package security

import (
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "session_id"
	TokenCookieName   = "auth-token"
)

// CookieManager centralizes cookie attributes so every auth cookie carries
// the same domain, secure and same-site policy.
type CookieManager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieManager(domain string, secure bool, sameSite string) *CookieManager {
	mode := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		mode = http.SameSiteNoneMode
	}
	return &CookieManager{Domain: domain, Secure: secure, SameSite: mode}
}

// SetAuthCookies writes the session and bearer-token cookies with the
// given lifetime.
func (m *CookieManager) SetAuthCookies(w http.ResponseWriter, sessionID, token string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
	})
}

// ClearAuthCookies expires both auth cookies.
func (m *CookieManager) ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, TokenCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   m.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.Secure,
			SameSite: m.SameSite,
		})
	}
}

// GetCookie returns the named cookie value or "".
func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
