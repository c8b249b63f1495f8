package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/service"
)

type AuthHandler struct {
	authSvc    service.AuthServiceInterface
	userSvc    service.UserServiceInterface
	cookieMgr  *security.CookieManager
	sessionTTL time.Duration
}

func NewAuthHandler(authSvc service.AuthServiceInterface, userSvc service.UserServiceInterface, cookieMgr *security.CookieManager, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc, cookieMgr: cookieMgr, sessionTTL: sessionTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Email:    body.Email,
		Name:     body.Name,
		Password: body.Password,
	})
	if err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			response.Error(w, r, http.StatusConflict, err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	h.cookieMgr.SetAuthCookies(w, result.SessionID, result.Token, h.sessionTTL)
	observability.Audit(r, observability.AuditInput{
		EventName:   "auth.register",
		ActorUserID: strconvUserID(result.User.ID),
		TargetType:  "user",
		TargetID:    strconvUserID(result.User.ID),
		Action:      "register",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			response.Error(w, r, http.StatusForbidden, err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.cookieMgr.SetAuthCookies(w, result.SessionID, result.Token, h.sessionTTL)
	observability.Audit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: strconvUserID(result.User.ID),
		TargetType:  "user",
		TargetID:    strconvUserID(result.User.ID),
		Action:      "login",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "logout", status, time.Since(start))
	}()

	p, ok := principal(r)
	if !ok {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.authSvc.Logout(r.Context(), p.SessionID); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusInternalServerError, "logout failed")
		return
	}

	h.cookieMgr.ClearAuthCookies(w)
	observability.Audit(r, observability.AuditInput{
		EventName:   "auth.logout",
		ActorUserID: actorIDString(p),
		TargetType:  "user",
		TargetID:    actorIDString(p),
		Action:      "logout",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the caller's own profile, looked up fresh so stale session
// data (e.g. a role changed since login) is not echoed back.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.userSvc.GetByID(r.Context(), p.UserID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to load profile")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func strconvUserID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
