package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

const (
	webhookSignatureHeader = "X-Webhook-Signature"
	maxWebhookBodyBytes    = 64 << 10
)

type WebhookHandler struct {
	svc *service.WebhookService
}

func NewWebhookHandler(svc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// Payment receives payment provider callbacks. The raw body is needed for
// signature verification, so it is read before any decoding.
func (h *WebhookHandler) Payment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "failed to read body")
		return
	}

	err = h.svc.Process(r.Context(), body, r.Header.Get(webhookSignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			response.Error(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrMalformedEvent),
			errors.Is(err, service.ErrMissingOrderNumber),
			errors.Is(err, service.ErrUnknownEventType):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrOrderNotFound):
			response.Error(w, r, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			// The provider retries on 5xx; a repeated event for an already
			// paid order is acknowledged instead.
			response.JSON(w, r, http.StatusOK, map[string]string{"status": "ignored"})
		default:
			response.Error(w, r, http.StatusInternalServerError, "webhook processing failed")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "accepted"})
}
