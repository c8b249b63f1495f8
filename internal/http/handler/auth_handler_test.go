package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/service"
)

func newAuthHandlerForTest(authSvc *stubAuthService, userSvc *stubUserService) *AuthHandler {
	cookies := security.NewCookieManager("", false, "lax")
	return NewAuthHandler(authSvc, userSvc, cookies, time.Hour)
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterSetsBothAuthCookies(t *testing.T) {
	authSvc := &stubAuthService{
		registerResult: &service.LoginResult{
			User:      &domain.User{ID: 1, Email: "new@example.com", Role: "USER"},
			SessionID: "sess-abc",
			Token:     "token-abc",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	h := newAuthHandlerForTest(authSvc, &stubUserService{})

	req := httptest.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"email":"new@example.com","name":"New","password":"Str0ngPass"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	session := cookieByName(rec, security.SessionCookieName)
	if session == nil || session.Value != "sess-abc" || !session.HttpOnly {
		t.Fatalf("unexpected session cookie: %+v", session)
	}
	token := cookieByName(rec, security.TokenCookieName)
	if token == nil || token.Value != "token-abc" {
		t.Fatalf("unexpected token cookie: %+v", token)
	}
}

func TestRegisterConflictOnDuplicateEmail(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{registerErr: service.ErrEmailTaken}, &stubUserService{})

	req := httptest.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"email":"dup@example.com","name":"Dup","password":"Str0ngPass"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{}, &stubUserService{})

	req := httptest.NewRequest("POST", "/api/v1/auth/register", strings.NewReader("not-json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{loginErr: service.ErrInvalidCredentials}, &stubUserService{})

	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "invalid credentials" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{loginErr: service.ErrAccountDisabled}, &stubUserService{})

	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"Str0ngPass"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestLogoutDestroysSessionAndClearsCookies(t *testing.T) {
	authSvc := &stubAuthService{}
	h := newAuthHandlerForTest(authSvc, &stubUserService{})

	req := asUser(httptest.NewRequest("POST", "/api/v1/auth/logout", nil), 7, authz.RoleUser)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(authSvc.loggedOut) != 1 || authSvc.loggedOut[0] != "sess-1" {
		t.Fatalf("expected session sess-1 destroyed, got %v", authSvc.loggedOut)
	}
	session := cookieByName(rec, security.SessionCookieName)
	if session == nil || session.MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", session)
	}
}

func TestMeReturnsFreshProfile(t *testing.T) {
	userSvc := &stubUserService{users: map[uint]*domain.User{
		7: {ID: 7, Email: "me@example.com", Role: "MANAGER"},
	}}
	h := newAuthHandlerForTest(&stubAuthService{}, userSvc)

	req := asUser(httptest.NewRequest("GET", "/api/v1/auth/me", nil), 7, authz.RoleUser)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"MANAGER"`) {
		t.Fatalf("expected fresh role from repository, got %s", rec.Body.String())
	}
}

func TestMeWithoutPrincipal(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{}, &stubUserService{})

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest("GET", "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Unauthorized" {
		t.Fatalf("unexpected message %q", msg)
	}
}
