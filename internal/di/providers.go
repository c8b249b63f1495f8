package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/app"
	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/database"
	"github.com/brightcart/storefront-backend/internal/health"
	"github.com/brightcart/storefront-backend/internal/http/handler"
	"github.com/brightcart/storefront-backend/internal/http/middleware"
	"github.com/brightcart/storefront-backend/internal/http/router"
	"github.com/brightcart/storefront-backend/internal/jobs"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/service"
	"github.com/brightcart/storefront-backend/internal/session"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewProductRepository,
	repository.NewOrderRepository,
)

var SecuritySet = wire.NewSet(
	provideTokenManager,
	provideCookieManager,
	provideSessionManager,
	provideChecker,
)

var JobsSet = wire.NewSet(
	provideJobsClient,
	wire.Bind(new(service.FulfillmentScheduler), new(*jobs.Client)),
)

var ServiceSet = wire.NewSet(
	service.NewAuthService,
	service.NewUserService,
	service.NewCatalogService,
	service.NewOrderService,
	provideStorageService,
	provideReportService,
	provideWebhookService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.UserServiceInterface), new(*service.UserService)),
	wire.Bind(new(service.CatalogServiceInterface), new(*service.CatalogService)),
	wire.Bind(new(service.OrderServiceInterface), new(*service.OrderService)),
	wire.Bind(new(service.ReportServiceInterface), new(*service.ReportService)),
	wire.Bind(new(service.StorageService), new(*service.MinIOStorageService)),
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	handler.NewProductHandler,
	handler.NewOrderHandler,
	handler.NewAdminHandler,
	handler.NewNavigationHandler,
	handler.NewWebhookHandler,
	provideAPIRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies the schema and seed data without starting the
// HTTP server. Used by the migrate tool.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	report, err := database.Seed(m.db, m.cfg.BootstrapAdminEmail, m.cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}
	fmt.Printf("migration complete: %s\n", report.Summary())
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if _, err := database.Seed(db, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		return nil, err
	}
	return db, nil
}

// provideRedisClient always constructs a client: sessions and the report
// cache need redis even when distributed rate limiting is off.
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideTokenManager(cfg *config.Config) *security.TokenManager {
	return security.NewTokenManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.AuthTokenTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func provideSessionManager(cfg *config.Config, client redis.UniversalClient) *session.Manager {
	return session.NewManager(client, cfg.SessionTTL)
}

func provideChecker() *authz.Checker {
	return authz.NewChecker(authz.DefaultTable())
}

func provideJobsClient(cfg *config.Config) *jobs.Client {
	return jobs.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideStorageService(cfg *config.Config) (*service.MinIOStorageService, error) {
	return service.NewMinIOStorageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
}

func provideReportService(cfg *config.Config, orders repository.OrderRepository, client redis.UniversalClient) *service.ReportService {
	return service.NewReportService(orders, client, cfg.ReportCacheTTL)
}

func provideWebhookService(cfg *config.Config, orders service.OrderServiceInterface) *service.WebhookService {
	return service.NewWebhookService(cfg.PaymentWebhookSecret, orders)
}

func provideAuthHandler(authSvc service.AuthServiceInterface, userSvc service.UserServiceInterface, cookieMgr *security.CookieManager, cfg *config.Config) *handler.AuthHandler {
	return handler.NewAuthHandler(authSvc, userSvc, cookieMgr, cfg.SessionTTL)
}

func provideAPIRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.APIRateLimiterFunc {
	if cfg.RateLimitRedisEnabled {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute, "api").Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RateLimitRedisEnabled {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":auth")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute, "auth").Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	navigationHandler *handler.NavigationHandler,
	webhookHandler *handler.WebhookHandler,
	sessions *session.Manager,
	tokens *security.TokenManager,
	checker *authz.Checker,
	apiLimiter router.APIRateLimiterFunc,
	authLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		ProductHandler:    productHandler,
		OrderHandler:      orderHandler,
		AdminHandler:      adminHandler,
		NavigationHandler: navigationHandler,
		WebhookHandler:    webhookHandler,
		Sessions:          sessions,
		Tokens:            tokens,
		Checker:           checker,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimiter:    apiLimiter,
		AuthRateLimiter:   authLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(
		2*time.Second,
		5*time.Second,
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
	)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	jobsClient *jobs.Client,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, jobsClient)
}
