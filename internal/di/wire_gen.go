// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"github.com/brightcart/storefront-backend/internal/app"
	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/http/handler"
	"github.com/brightcart/storefront-backend/internal/http/router"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

// Injectors from wire.go:

func InitializeApp() (*app.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	runtime, err := provideObservabilityRuntime(configConfig)
	if err != nil {
		return nil, err
	}
	logger := provideAppLogger(configConfig, runtime)
	db, err := provideRuntimeDB(configConfig)
	if err != nil {
		return nil, err
	}
	userRepository := repository.NewUserRepository(db)
	universalClient := provideRedisClient(configConfig, logger)
	manager := provideSessionManager(configConfig, universalClient)
	tokenManager := provideTokenManager(configConfig)
	authService := service.NewAuthService(configConfig, userRepository, manager, tokenManager)
	userService := service.NewUserService(userRepository)
	cookieManager := provideCookieManager(configConfig)
	authHandler := provideAuthHandler(authService, userService, cookieManager, configConfig)
	productRepository := repository.NewProductRepository(db)
	minIOStorageService, err := provideStorageService(configConfig)
	if err != nil {
		return nil, err
	}
	catalogService := service.NewCatalogService(productRepository, minIOStorageService)
	productHandler := handler.NewProductHandler(catalogService)
	orderRepository := repository.NewOrderRepository(db)
	client := provideJobsClient(configConfig)
	orderService := service.NewOrderService(orderRepository, productRepository, client)
	checker := provideChecker()
	orderHandler := handler.NewOrderHandler(orderService, checker)
	reportService := provideReportService(configConfig, orderRepository, universalClient)
	adminHandler := handler.NewAdminHandler(userService, reportService)
	navigationHandler := handler.NewNavigationHandler(checker)
	webhookService := provideWebhookService(configConfig, orderService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	apiRateLimiterFunc := provideAPIRateLimiter(configConfig, universalClient)
	authRateLimiterFunc := provideAuthRateLimiter(configConfig, universalClient)
	probeRunner := provideReadinessProbeRunner(db, universalClient)
	dependencies := provideRouterDependencies(authHandler, productHandler, orderHandler, adminHandler, navigationHandler, webhookHandler, manager, tokenManager, checker, apiRateLimiterFunc, authRateLimiterFunc, probeRunner, configConfig)
	httpHandler := router.NewRouter(dependencies)
	server := provideHTTPServer(configConfig, httpHandler)
	appApp := provideApp(configConfig, logger, server, runtime, db, universalClient, client)
	return appApp, nil
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := provideOpenDB(configConfig)
	if err != nil {
		return nil, err
	}
	migrationRunner := NewMigrationRunner(configConfig, db)
	return migrationRunner, nil
}
