package app

import (
	"context"
	"fmt"
	"io"

	"github.com/plantpal/internal/config"
	"github.com/plantpal/internal/db"
	"github.com/plantpal/internal/plant"
	"github.com/plantpal/internal/service"
	"github.com/plantpal/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired dependencies shared by the HTTP server and the CLI.
type App struct {
	DB         *gorm.DB
	Plants     *plant.Store
	Settings   *service.SystemSettingService
	AI         *service.AIService
	Companion  *service.CompanionService
	Motivation *service.MotivationService

	logger  *zap.Logger
	closers []io.Closer
}

// New wires config → database → persister → plant store → services.
func New(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{logger: logger}

	if storage.UsesDatabase(cfg.StorageEngine) {
		if err := db.Init(cfg.DatabaseDriver(), cfg.DatabaseDSN()); err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		a.DB = db.DB
		if sqlDB, err := a.DB.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		if err := db.EnsureUser(a.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure admin user: %w", err)
		}
	}

	persister, err := storage.NewByEngine(storage.Options{
		Engine:   cfg.StorageEngine,
		DB:       a.DB,
		DataFile: cfg.DataFile,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	if closer, ok := persister.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	a.Plants = plant.Open(ctx, persister, cfg.PlantName, plant.WithLogger(logger.Named("plant")))

	a.Settings = service.NewSystemSettingService(a.DB, service.SystemSettings{
		AIProvider:   cfg.AIProvider,
		LocalBaseURL: cfg.LocalLLMBaseURL,
		LocalModel:   cfg.LocalLLMModel,
		LocalAPIKey:  cfg.LocalLLMAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	})
	a.AI = service.NewAIService(a.Settings, cfg.AITimeout, logger.Named("ai"))
	a.Companion = service.NewCompanionService(a.AI, logger.Named("companion"))
	a.Motivation = service.NewMotivationService(a.AI, logger.Named("motivation"))

	logger.Info("app initialized",
		zap.String("storage", cfg.StorageEngine),
		zap.Bool("database", a.DB != nil),
	)
	return a, nil
}

// Close releases storage connections in reverse order of creation.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
