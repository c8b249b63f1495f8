package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/brightcart/storefront-backend/internal/observability"
)

var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedEvent     = errors.New("malformed webhook event")
	ErrUnknownEventType   = errors.New("unknown webhook event type")
	ErrMissingOrderNumber = errors.New("webhook event missing order number")
)

// PaymentEvent is the payload the payment provider posts to the webhook.
type PaymentEvent struct {
	Type        string `json:"type"`
	OrderNumber string `json:"order_number"`
	PaymentRef  string `json:"payment_ref"`
}

type WebhookService struct {
	secret []byte
	orders OrderServiceInterface
}

func NewWebhookService(secret string, orders OrderServiceInterface) *WebhookService {
	return &WebhookService{secret: []byte(secret), orders: orders}
}

// VerifySignature checks the hex-encoded HMAC-SHA256 of the raw body.
func (s *WebhookService) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Process verifies and applies a payment event.
func (s *WebhookService) Process(ctx context.Context, body []byte, signature string) error {
	if !s.VerifySignature(body, signature) {
		observability.RecordWebhookEvent(ctx, "payment", "bad_signature")
		return ErrInvalidSignature
	}

	var event PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		observability.RecordWebhookEvent(ctx, "payment", "malformed")
		return ErrMalformedEvent
	}

	switch event.Type {
	case "payment.succeeded":
		if event.OrderNumber == "" {
			observability.RecordWebhookEvent(ctx, "payment", "malformed")
			return ErrMissingOrderNumber
		}
		if _, err := s.orders.MarkPaid(ctx, event.OrderNumber, event.PaymentRef); err != nil {
			observability.RecordWebhookEvent(ctx, "payment", "error")
			return err
		}
		observability.RecordWebhookEvent(ctx, "payment", "accepted")
		return nil
	default:
		observability.RecordWebhookEvent(ctx, "payment", "ignored")
		return ErrUnknownEventType
	}
}
