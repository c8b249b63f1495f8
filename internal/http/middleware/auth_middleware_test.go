package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/session"
)

func newAuthFixture(t *testing.T) (*session.Manager, *security.TokenManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := session.NewManager(client, time.Hour)
	tokens := security.NewTokenManager("storefront-test", "storefront-api", "0123456789abcdef0123456789abcdef", time.Hour)
	return sessions, tokens
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestAuthMiddlewareResolvesSessionCookie(t *testing.T) {
	sessions, tokens := newAuthFixture(t)

	sessionID, err := sessions.Create(context.Background(), session.Record{UserID: 5, Email: "a@example.com", Role: "MANAGER"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got *Principal
	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != 5 || got.Role != authz.RoleManager || got.Source != "session" {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if got.SessionID != sessionID {
		t.Fatalf("expected session id carried on principal")
	}
}

func TestAuthMiddlewareFallsBackToBearerHeader(t *testing.T) {
	sessions, tokens := newAuthFixture(t)

	token, err := tokens.Sign(9, "b@example.com", authz.RoleAdmin)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var got *Principal
	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != 9 || got.Role != authz.RoleAdmin || got.Source != "bearer" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestAuthMiddlewareFallsBackToTokenCookie(t *testing.T) {
	sessions, tokens := newAuthFixture(t)

	token, err := tokens.Sign(3, "c@example.com", authz.RoleUser)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var got *Principal
	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.AddCookie(&http.Cookie{Name: security.TokenCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != 3 || got.Source != "bearer" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestAuthMiddlewarePrefersSessionOverBearer(t *testing.T) {
	sessions, tokens := newAuthFixture(t)

	sessionID, _ := sessions.Create(context.Background(), session.Record{UserID: 1, Email: "s@example.com", Role: "USER"})
	token, _ := tokens.Sign(2, "t@example.com", authz.RoleAdmin)

	var got *Principal
	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: sessionID})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil || got.UserID != 1 || got.Source != "session" {
		t.Fatalf("expected session identity to win, got %+v", got)
	}
}

func TestAuthMiddlewareRejectsUnauthenticated(t *testing.T) {
	sessions, tokens := newAuthFixture(t)

	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	cases := []func(*http.Request){
		func(r *http.Request) {}, // no credentials at all
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "unknown-session"})
		},
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: security.TokenCookieName, Value: "garbage"})
		},
	}
	for i, prep := range cases {
		req := httptest.NewRequest("GET", "/api/v1/orders", nil)
		prep(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("case %d: expected 401, got %d", i, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "No valid authentication found" {
			t.Fatalf("case %d: unexpected error message %q", i, msg)
		}
	}
}

func TestAuthMiddlewareRejectsExpiredSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewManager(client, time.Minute)
	tokens := security.NewTokenManager("storefront-test", "storefront-api", "0123456789abcdef0123456789abcdef", time.Hour)

	sessionID, _ := sessions.Create(context.Background(), session.Record{UserID: 1, Email: "x@example.com", Role: "USER"})
	mr.FastForward(2 * time.Minute)

	handler := AuthMiddleware(sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", rec.Code)
	}
}
