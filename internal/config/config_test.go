package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		Env:                       "test",
		HTTPPort:                  "8080",
		DatabaseURL:               "postgres://localhost/storefront_test",
		JWTSecret:                 strings.Repeat("a", 32),
		AuthTokenTTL:              168 * time.Hour,
		SessionTTL:                168 * time.Hour,
		AuthRateLimitPerMin:       30,
		APIRateLimitPerMin:        120,
		WorkerConcurrency:         5,
		ReportCacheTTL:            5 * time.Minute,
		PaymentWebhookSecret:      "whsec_test",
		OTELExporterOTLPEndpoint:  "localhost:4317",
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsShortJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWTSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.DatabaseURL = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateRejectsExcessiveTokenTTL(t *testing.T) {
	cfg := validTestConfig()
	cfg.AuthTokenTTL = 90 * 24 * time.Hour
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AUTH_TOKEN_TTL") {
		t.Fatalf("expected AUTH_TOKEN_TTL error, got %v", err)
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := validTestConfig()
	cfg.DatabaseURL = ""
	cfg.PaymentWebhookSecret = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") || !strings.Contains(err.Error(), "PAYMENT_WEBHOOK_SECRET") {
		t.Fatalf("expected both errors reported, got %v", err)
	}
}
