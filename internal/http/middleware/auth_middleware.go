package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/session"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the resolved identity attached to authenticated requests.
type Principal struct {
	UserID    uint
	Email     string
	Role      authz.Role
	SessionID string
	Source    string // "session" or "bearer"
}

// AuthMiddleware resolves the caller's identity. The redis session cookie is
// checked first; a bearer token (Authorization header, then the auth-token
// cookie) is the fallback. Requests with neither get 401.
func AuthMiddleware(sessions *session.Manager, tokens *security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, ok := resolveSession(r, sessions); ok {
				observability.RecordTokenValidation(r.Context(), "ok", "session")
				serveWithPrincipal(next, w, r, principal)
				return
			}
			if principal, ok := resolveBearer(r, tokens); ok {
				observability.RecordTokenValidation(r.Context(), "ok", "bearer")
				serveWithPrincipal(next, w, r, principal)
				return
			}
			observability.RecordTokenValidation(r.Context(), "unauthenticated", "none")
			response.Error(w, r, http.StatusUnauthorized, "No valid authentication found")
		})
	}
}

func resolveSession(r *http.Request, sessions *session.Manager) (*Principal, bool) {
	sessionID := security.GetCookie(r, security.SessionCookieName)
	if sessionID == "" {
		return nil, false
	}
	rec, err := sessions.Resolve(r.Context(), sessionID)
	if err != nil || rec == nil {
		return nil, false
	}
	role := rec.ParsedRole()
	if !role.Valid() {
		return nil, false
	}
	return &Principal{
		UserID:    rec.UserID,
		Email:     rec.Email,
		Role:      role,
		SessionID: sessionID,
		Source:    "session",
	}, true
}

func resolveBearer(r *http.Request, tokens *security.TokenManager) (*Principal, bool) {
	raw := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		raw = strings.TrimSpace(auth[7:])
	}
	if raw == "" {
		raw = security.GetCookie(r, security.TokenCookieName)
	}
	if raw == "" {
		return nil, false
	}
	claims, err := tokens.Verify(raw)
	if err != nil {
		return nil, false
	}
	role := authz.ParseRole(claims.Role)
	if !role.Valid() {
		return nil, false
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, false
	}
	return &Principal{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
		Source: "bearer",
	}, true
}

func serveWithPrincipal(next http.Handler, w http.ResponseWriter, r *http.Request, principal *Principal) {
	next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
}

// WithPrincipal attaches an already-resolved identity to ctx. Handlers are
// normally fed by AuthMiddleware; this is for tests and internal callers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}
