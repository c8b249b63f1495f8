package app

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/jobs"
	"github.com/brightcart/storefront-backend/internal/observability"
)

// App holds everything main needs to run the API server and shut it
// down in order: HTTP drain, observability flush, queue client, redis,
// database.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Jobs          *jobs.Client
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	jobsClient *jobs.Client,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		DB:            db,
		Redis:         redisClient,
		Jobs:          jobsClient,
	}
}
