package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pairbond/pairbond-server/internal/config"
	"github.com/pairbond/pairbond-server/internal/database"
	"github.com/pairbond/pairbond-server/internal/handler"
	"github.com/pairbond/pairbond-server/internal/jobs"
	"github.com/pairbond/pairbond-server/internal/middleware"
	"github.com/pairbond/pairbond-server/internal/redis"
	"github.com/pairbond/pairbond-server/internal/repository"
	"github.com/pairbond/pairbond-server/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	pairRepo := repository.NewPairRepository(db.DB)
	locationRepo := repository.NewLocationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	sessionRepo := repository.NewPairSessionRepository(db.DB)

	pairService := service.NewPairService(pairRepo)
	locationService := service.NewLocationService(pairRepo, locationRepo)
	notificationService := service.NewNotificationService(pairRepo, notificationRepo)
	sessionService := service.NewSessionService(sessionRepo, cfg.SessionTTL())

	sessionMiddleware := middleware.NewSessionMiddleware(sessionService)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin)
	publicRateLimitMiddleware := middleware.NewIPRateLimitMiddleware(
		middleware.NewRedisRateLimiter(redisClient.Client), cfg.RateLimitPublicPerMin, "pairs")

	pairHandler := handler.NewPairHandler(pairService, sessionService)
	locationHandler := handler.NewLocationHandler(locationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1/pairs", func(r chi.Router) {
		r.Use(publicRateLimitMiddleware.Handler)
		r.Mount("/", pairHandler.Routes())
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(sessionMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)

		r.Get("/pair", pairHandler.GetPair)
		r.Post("/logout", pairHandler.Logout)
		r.Put("/location", locationHandler.UpdateLocation)
		r.Get("/locations", locationHandler.GetLocations)
		r.Mount("/pulses", notificationHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(locationRepo, sessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
