package handler

import (
	"net/http"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
)

type NavigationHandler struct {
	checker *authz.Checker
}

func NewNavigationHandler(checker *authz.Checker) *NavigationHandler {
	return &NavigationHandler{checker: checker}
}

// Items returns the admin navigation entries the caller's role may see,
// in display order. An empty list is a valid answer for plain users.
func (h *NavigationHandler) Items(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items := h.checker.AccessibleNavItems(p.Role)
	observability.RecordNavigationItems(r.Context(), string(p.Role), len(items))
	response.JSON(w, r, http.StatusOK, map[string]any{"items": items})
}
