package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/dealdirect/backend/config"
	"github.com/dcode-github/dealdirect/backend/controllers"
	"github.com/dcode-github/dealdirect/backend/images"
	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/middleware"
	"github.com/dcode-github/dealdirect/backend/routes"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/store/memstore"
	"github.com/dcode-github/dealdirect/backend/utils"
)

const cleanupBuffer = 256

type dataStore interface {
	services.TaxonomyStore
	services.ListingStore
	services.AccountStore
	services.UserStore
}

type cleanupWorker interface {
	services.FileCleaner
	Start()
	Close() error
}

func openStore(ctx context.Context, cfg *config.Config) (dataStore, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logrus.Warn("Using the in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	client, err := config.ConnectDB(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, nil, err
	}
	s, err := config.InitStore(ctx, client, cfg.Mongo.Database)
	if err != nil {
		config.CloseDBConnection(client)
		return nil, nil, err
	}
	return s, func() { config.CloseDBConnection(client) }, nil
}

func openCleanup(ctx context.Context, cfg *config.Config, uploads *images.DiskStore, logger logrus.FieldLogger) (cleanupWorker, func(), error) {
	if cfg.Redis.Addr == "" {
		return images.NewCleanupQueue(cleanupBuffer, uploads, logger), func() {}, nil
	}

	client, err := config.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Error("Error closing Redis connection")
		}
	}
	return images.NewRedisCleanupQueue(client, cfg.Redis.QueueKey, uploads, logger), closeClient, nil
}

func setupRouter(deps routes.Deps, logger logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	routes.Routes(router, deps)
	return router
}

func main() {
	config.LoadEnv()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.JSON)
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)

	ctx := context.Background()

	db, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to the database")
	}
	defer closeDB()

	uploads, err := images.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to prepare uploads directory")
	}

	cleanup, closeRedis, err := openCleanup(ctx, cfg, uploads, logger.WithField("component", "image-cleanup"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to start image cleanup")
	}
	defer closeRedis()
	cleanup.Start()

	tokens, err := utils.NewTokenManager(cfg.JWT.Key, cfg.JWT.TTL)
	if err != nil {
		logger.WithError(err).Fatal("Invalid JWT configuration")
	}

	auth := services.NewAuthService(db, tokens)
	if err := config.SeedAgent(ctx, cfg, auth, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed agent account")
	}

	router := setupRouter(routes.Deps{
		Taxonomy: services.NewTaxonomyService(db),
		Listings: services.NewListingService(db, cleanup),
		Query:    services.NewQueryEngine(db),
		Auth:     auth,
		Users:    services.NewUserService(db, tokens),
		Uploads:  uploads,
		Limits: controllers.UploadLimits{
			MaxImages: cfg.Uploads.MaxImages,
			MaxBytes:  cfg.MaxUploadBytes(),
		},
		URLs: controllers.ImageURLs{
			PublicBaseURL: cfg.Uploads.PublicBaseURL,
			TrustProxy:    cfg.Uploads.TrustProxy,
		},
	}, logger)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Error starting server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}
	if err := cleanup.Close(); err != nil {
		logger.WithError(err).Error("Error stopping image cleanup")
	}
	logger.Info("Server gracefully stopped")
}
