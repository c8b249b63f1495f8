package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/database"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/health"
	"github.com/brightcart/storefront-backend/internal/http/handler"
	"github.com/brightcart/storefront-backend/internal/http/router"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/service"
	"github.com/brightcart/storefront-backend/internal/session"
)

const (
	testAdminEmail    = "admin@example.com"
	testPassword      = "Valid#Pass1234"
	testWebhookSecret = "whsec_integration"
)

type stubStorage struct{}

func (stubStorage) UploadProductImage(_ context.Context, productID uint, _ io.Reader, _ int64, _ string) (string, error) {
	return fmt.Sprintf("products/%d/image.png", productID), nil
}

func (stubStorage) DeleteProductImage(context.Context, uint, string) error { return nil }

func (stubStorage) GenerateImageURL(_ context.Context, objectKey string) (string, error) {
	return "http://media.test/" + objectKey, nil
}

type recordingScheduler struct {
	mu       sync.Mutex
	orderIDs []uint
}

func (s *recordingScheduler) EnqueueFulfillment(_ context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderIDs = append(s.orderIDs, orderID)
	return nil
}

func (s *recordingScheduler) enqueued() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.orderIDs...)
}

type testEnv struct {
	baseURL   string
	db        *gorm.DB
	scheduler *recordingScheduler
	cfg       *config.Config
}

// newStorefrontServer wires the full stack against sqlite and miniredis
// and returns a running test server.
func newStorefrontServer(t *testing.T, override func(*config.Config)) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{
		Env:                  "test",
		HTTPPort:             "0",
		JWTIssuer:            "storefront-backend",
		JWTAudience:          "storefront-api",
		JWTSecret:            "integration-test-secret-0123456789abcdef",
		AuthTokenTTL:         time.Hour,
		SessionTTL:           time.Hour,
		CookieSameSite:       "lax",
		APIRateLimitPerMin:   1000,
		AuthRateLimitPerMin:  1000,
		BootstrapAdminEmail:  testAdminEmail,
		PaymentWebhookSecret: testWebhookSecret,
		ReportCacheTTL:       time.Minute,
	}
	if override != nil {
		override(cfg)
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	sessions := session.NewManager(redisClient, cfg.SessionTTL)
	tokens := security.NewTokenManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.AuthTokenTTL)
	cookies := security.NewCookieManager("", false, cfg.CookieSameSite)
	checker := authz.NewChecker(authz.DefaultTable())
	scheduler := &recordingScheduler{}

	authSvc := service.NewAuthService(cfg, userRepo, sessions, tokens)
	userSvc := service.NewUserService(userRepo)
	catalogSvc := service.NewCatalogService(productRepo, stubStorage{})
	orderSvc := service.NewOrderService(orderRepo, productRepo, scheduler)
	reportSvc := service.NewReportService(orderRepo, redisClient, cfg.ReportCacheTTL)
	webhookSvc := service.NewWebhookService(cfg.PaymentWebhookSecret, orderSvc)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authSvc, userSvc, cookies, cfg.SessionTTL),
		ProductHandler:    handler.NewProductHandler(catalogSvc),
		OrderHandler:      handler.NewOrderHandler(orderSvc, checker),
		AdminHandler:      handler.NewAdminHandler(userSvc, reportSvc),
		NavigationHandler: handler.NewNavigationHandler(checker),
		WebhookHandler:    handler.NewWebhookHandler(webhookSvc),
		Sessions:          sessions,
		Tokens:            tokens,
		Checker:           checker,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		Readiness:         health.NewProbeRunner(time.Second, 0, health.NewDBChecker(db), health.NewRedisChecker(redisClient)),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return &testEnv{baseURL: ts.URL, db: db, scheduler: scheduler, cfg: cfg}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	payload := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
	}
	return resp, payload
}

func registerUser(t *testing.T, env *testEnv, client *http.Client, email string) map[string]any {
	t.Helper()
	resp, payload := doJSON(t, client, http.MethodPost, env.baseURL+"/api/v1/auth/register", map[string]string{
		"email":    email,
		"name":     "Test " + email,
		"password": testPassword,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, resp.StatusCode, payload)
	}
	return payload
}

func loginUser(t *testing.T, env *testEnv, client *http.Client, email string) map[string]any {
	t.Helper()
	resp, payload := doJSON(t, client, http.MethodPost, env.baseURL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": testPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d, body %v", email, resp.StatusCode, payload)
	}
	return payload
}

// promoteUser changes a role directly in the database. Callers must log
// in again afterwards because the session still carries the old role.
func promoteUser(t *testing.T, env *testEnv, email string, role authz.Role) {
	t.Helper()
	res := env.db.Model(&domain.User{}).Where("email = ?", email).Update("role", string(role))
	if res.Error != nil {
		t.Fatalf("promote %s: %v", email, res.Error)
	}
	if res.RowsAffected != 1 {
		t.Fatalf("promote %s: expected one row, got %d", email, res.RowsAffected)
	}
}

func seedProduct(t *testing.T, env *testEnv, name string, price float64, stock int) *domain.Product {
	t.Helper()
	product := &domain.Product{Name: name, Description: "integration seed", Price: price, Stock: stock}
	if err := env.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func errMessage(payload map[string]any) string {
	msg, _ := payload["error"].(string)
	return msg
}
