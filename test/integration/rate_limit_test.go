package integration

import (
	"net/http"
	"testing"

	"github.com/brightcart/storefront-backend/internal/config"
)

func TestLoginRateLimit(t *testing.T) {
	env := newStorefrontServer(t, func(cfg *config.Config) {
		cfg.AuthRateLimitPerMin = 1
	})
	client := newClient(t)

	body := map[string]string{"email": "nobody@example.com", "password": "wrong"}
	resp, _ := doJSON(t, client, http.MethodPost, env.baseURL+"/api/v1/auth/login", body, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("first login attempt: status %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, client, http.MethodPost, env.baseURL+"/api/v1/auth/login", body, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second login attempt: status %d, body %v", resp.StatusCode, payload)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestReadinessEndpoint(t *testing.T) {
	env := newStorefrontServer(t, nil)

	resp, payload := doJSON(t, http.DefaultClient, http.MethodGet, env.baseURL+"/health/ready", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readiness: status %d, body %v", resp.StatusCode, payload)
	}
	if payload["status"] != "ready" {
		t.Fatalf("expected ready, got %v", payload["status"])
	}
	checks, _ := payload["checks"].([]any)
	if len(checks) != 2 {
		t.Fatalf("expected db and redis checks, got %v", payload["checks"])
	}
}
