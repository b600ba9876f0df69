package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bizledger/cashbank/docs"
	"github.com/bizledger/cashbank/internal/app"
	"github.com/bizledger/cashbank/internal/config"
	"github.com/bizledger/cashbank/internal/database"
	"github.com/bizledger/cashbank/internal/logging"
)

// @title Cash & Bank Ledger API
// @version 1.0
// @description Cash and bank accounts, balance adjustments, transfers and the reconciliation dashboard.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.New(cfg.Log, os.Stdout)
	if cfg.JWT.SecretKey == "" {
		logger.Fatal("JWT_SECRET_KEY must be set")
	}

	docs.SwaggerInfo.Host = os.Getenv("SWAGGER_HOST")

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	redisClient := database.OpenRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	inject := app.BootstrapServices(cfg,
		app.WithDB(db),
		app.WithRedis(redisClient),
		app.WithLogger(logger),
	)

	var handler http.Handler
	if err := inject(func(h http.Handler) { handler = h }); err != nil {
		logger.WithError(err).Fatal("Failed to wire services")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
