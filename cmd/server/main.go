package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/api"
	"github.com/ndy40/racing-pointsheet/internal/api/handlers"
	"github.com/ndy40/racing-pointsheet/internal/api/middleware"
	"github.com/ndy40/racing-pointsheet/internal/pkg/logger"
	"github.com/ndy40/racing-pointsheet/internal/platform/auth"
	"github.com/ndy40/racing-pointsheet/internal/platform/config"
	"github.com/ndy40/racing-pointsheet/internal/platform/database"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	webhookRepo := repositories.NewWebhookRepository(db)
	subscriptionRepo := repositories.NewWebhookSubscriptionRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(webhookRepo, subscriptionRepo)
	healthHandler := handlers.NewHealthHandler(db)
	metricsHandler := handlers.NewMetricsHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	router := api.NewRouter(&api.Dependencies{
		WebhookHandler: webhookHandler,
		HealthHandler:  healthHandler,
		MetricsHandler: metricsHandler,
		AuthMiddleware: authMiddleware,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", addr).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
