package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

type AdminHandler struct {
	userSvc   service.UserServiceInterface
	reportSvc service.ReportServiceInterface
}

func NewAdminHandler(userSvc service.UserServiceInterface, reportSvc service.ReportServiceInterface) *AdminHandler {
	return &AdminHandler{userSvc: userSvc, reportSvc: reportSvc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.userSvc.ListPaged(r.Context(), repository.UserListQuery{
		PageRequest: pageReq,
		Email:       strings.TrimSpace(r.URL.Query().Get("email")),
		Role:        strings.TrimSpace(r.URL.Query().Get("role")),
		Status:      strings.TrimSpace(r.URL.Query().Get("status")),
	})
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to list users")
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

// UpdateUserRole changes a user's role. The route guard has already
// checked users:manage; the service enforces the self-change and
// admin-target rules on top of that.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	targetID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	updated, err := h.userSvc.ChangeRole(r.Context(), p.UserID, targetID, body.Role)
	if err != nil {
		outcome, reason := "failure", "error"
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			reason = "unknown_role"
			response.Error(w, r, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, service.ErrOwnRoleChange):
			outcome, reason = "denied", "own_role"
			response.Error(w, r, http.StatusForbidden, "Cannot modify your own role")
		case errors.Is(err, service.ErrAdminRoleChange):
			outcome, reason = "denied", "admin_target"
			response.Error(w, r, http.StatusForbidden, "Cannot modify admin user roles")
		case errors.Is(err, repository.ErrUserNotFound):
			reason = "not_found"
			response.Error(w, r, http.StatusNotFound, "user not found")
		default:
			response.Error(w, r, http.StatusInternalServerError, "failed to update role")
		}
		observability.Audit(r, observability.AuditInput{
			EventName:   "admin.user.role_change",
			ActorUserID: actorIDString(p),
			TargetType:  "user",
			TargetID:    strconvUserID(targetID),
			Action:      "role_change",
			Outcome:     outcome,
			Reason:      reason,
		})
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:   "admin.user.role_change",
		ActorUserID: actorIDString(p),
		TargetType:  "user",
		TargetID:    strconvUserID(targetID),
		Action:      "role_change",
		Outcome:     "success",
		Reason:      "role_set_" + strings.ToLower(updated.Role),
	})
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *AdminHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.Sales(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to build sales report")
		return
	}
	response.JSON(w, r, http.StatusOK, report)
}
