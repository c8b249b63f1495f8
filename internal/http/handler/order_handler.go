package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

type OrderHandler struct {
	svc     service.OrderServiceInterface
	checker *authz.Checker
}

func NewOrderHandler(svc service.OrderServiceInterface, checker *authz.Checker) *OrderHandler {
	return &OrderHandler{svc: svc, checker: checker}
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	input := service.CheckoutInput{}
	for _, item := range body.Items {
		input.Items = append(input.Items, service.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.svc.Checkout(r.Context(), p.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidQuantity):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			response.Error(w, r, http.StatusConflict, err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "checkout failed")
		}
		return
	}
	response.JSON(w, r, http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.ListForUser(r.Context(), p.UserID, pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to list orders")
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

// GetByID lets owners read their own orders; staff with orders:update may
// read any order.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.svc.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(w, r, http.StatusNotFound, "order not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to load order")
		return
	}
	if order.UserID != p.UserID && !h.checker.HasPermission(p.Role, authz.ResourceOrders, authz.ActionUpdate) {
		// A foreign order is reported as missing rather than forbidden to
		// avoid leaking order numbers.
		response.Error(w, r, http.StatusNotFound, "order not found")
		return
	}
	response.JSON(w, r, http.StatusOK, order)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.ListAll(r.Context(), repository.OrderListQuery{
		PageRequest: pageReq,
		Status:      strings.TrimSpace(r.URL.Query().Get("status")),
	})
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "failed to list orders")
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

// Cancel releases a pending order. Owners may cancel their own orders;
// staff with orders:update may cancel any.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.svc.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(w, r, http.StatusNotFound, "order not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to load order")
		return
	}
	if order.UserID != p.UserID && !h.checker.HasPermission(p.Role, authz.ResourceOrders, authz.ActionUpdate) {
		response.Error(w, r, http.StatusNotFound, "order not found")
		return
	}

	cancelled, err := h.svc.Cancel(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotCancelable) {
			response.Error(w, r, http.StatusConflict, err.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to cancel order")
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:   "order.cancelled",
		ActorUserID: actorIDString(p),
		TargetType:  "order",
		TargetID:    strconvUserID(orderID),
		Action:      "cancel",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, cancelled)
}

// Fulfill moves a paid order to fulfilled, for staff acting outside the
// background worker.
func (h *OrderHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	orderID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.svc.Fulfill(r.Context(), orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(w, r, http.StatusConflict, "order is not awaiting fulfillment")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "failed to fulfill order")
		return
	}

	p, _ := principal(r)
	observability.Audit(r, observability.AuditInput{
		EventName:   "order.fulfilled",
		ActorUserID: actorIDString(p),
		TargetType:  "order",
		TargetID:    strconvUserID(orderID),
		Action:      "fulfill",
		Outcome:     "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "fulfilled"})
}
