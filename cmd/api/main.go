package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/orderhub/orderhub-api/internal/config"
	"github.com/orderhub/orderhub-api/internal/domain/catalog"
	"github.com/orderhub/orderhub-api/internal/domain/order"
	"github.com/orderhub/orderhub-api/internal/domain/payment"
	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/middleware"
	"github.com/orderhub/orderhub-api/internal/pkg/database"
	"github.com/orderhub/orderhub-api/internal/pkg/imaging"
	"github.com/orderhub/orderhub-api/internal/pkg/jwt"
	"github.com/orderhub/orderhub-api/internal/pkg/logger"
	pkgresponse "github.com/orderhub/orderhub-api/internal/pkg/response"
	"github.com/orderhub/orderhub-api/internal/pkg/storage"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting OrderHub API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	var store storage.Storage
	if cfg.S3AccessKey != "" {
		store, err = storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
			PublicURL:   cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
	} else {
		log.Warn().Msg("S3 not configured, storing uploads on local disk")
		store, err = storage.NewLocalStorage("./uploads", "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
	}

	uploader := upload.NewGateway(store, cfg.UploadTimeout)
	imageProcessor := imaging.NewProcessor(imaging.DefaultConfig())

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	orderRepo := order.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	var geoIndex order.GeoIndex
	if redisClient != nil {
		geoIndex = order.NewRedisGeoIndex(redisClient)
	}

	// ---------- Services ----------
	orderService := order.NewService(orderRepo, catalogRepo, userRepo, uploader, geoIndex)
	paymentService := payment.NewService(paymentRepo, userRepo, uploader)

	// ---------- Handlers ----------
	userHandler := user.NewHandler(userRepo)
	catalogHandler := catalog.NewHandler(catalogRepo, uploader, imageProcessor)
	orderHandler := order.NewHandler(orderService)
	paymentHandler := payment.NewHandler(paymentService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes(authMiddleware, middleware.RequireAdmin()))
		r.Mount("/products", catalogHandler.ProductRoutes(authMiddleware))
		r.Mount("/services", catalogHandler.ServiceRoutes(authMiddleware))
		r.Mount("/orders", orderHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
