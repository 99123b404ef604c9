package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/app"
	"github.com/plantpal/internal/config"
	"github.com/plantpal/internal/handler"
	"github.com/plantpal/internal/logging"
	"github.com/plantpal/internal/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	logger := logging.Must(os.Getenv("LOG_MODE"))
	if err == nil {
		logger = logging.Must(cfg.LogMode)
	}
	defer logger.Sync()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer application.Close()

	api := handler.NewAPI(handler.Dependencies{
		DB:         application.DB,
		Plants:     application.Plants,
		Companion:  application.Companion,
		Motivation: application.Motivation,
		System:     application.Settings,
		Logger:     logger,
	})
	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageEngine),
			zap.String("plant", application.Plants.Snapshot().PlantName),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
