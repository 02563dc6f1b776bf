package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medreminder/internal/audit"
	"github.com/vcscsvcscs/medreminder/internal/azure"
	"github.com/vcscsvcscs/medreminder/internal/config"
	"github.com/vcscsvcscs/medreminder/internal/repository"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds what every database-backed command needs
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pool     *pgxpool.Pool
	location *time.Location

	medications  *repository.MedicationRepository
	logs         *repository.MedicationLogRepository
	settings     *repository.SettingsRepository
	achievements *repository.AchievementRepository
	reports      *repository.ReportRepository
	audit        *audit.Logger
}

// loadConfig reads the configuration and builds the logger
func loadConfig(envFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// newLogger builds a production logger in production and a development logger otherwise
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}
		zcfg.Level = level
	}

	switch cfg.Logging.Format {
	case "console":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		zcfg.Encoding = "json"
	}

	return zcfg.Build()
}

// newApp loads configuration, connects to the database and builds the repositories
func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, logger, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	loc, err := cfg.Reminder.Location()
	if err != nil {
		return nil, err
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}
	logger.Info("Successfully connected to database")

	return &app{
		cfg:          cfg,
		logger:       logger,
		pool:         pool,
		location:     loc,
		medications:  repository.NewMedicationRepository(pool, logger),
		logs:         repository.NewMedicationLogRepository(pool, logger),
		settings:     repository.NewSettingsRepository(pool, logger),
		achievements: repository.NewAchievementRepository(pool, logger),
		reports:      repository.NewReportRepository(pool, logger),
		audit:        audit.NewLogger(pool, logger),
	}, nil
}

// connect opens the pgx pool and pings it
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Close releases the pool and flushes the logger
func (a *app) Close() {
	a.pool.Close()
	_ = a.logger.Sync()
}

// dashboardService builds the dashboard and stats service
func (a *app) dashboardService() *service.DashboardService {
	return service.NewDashboardService(a.medications, a.logs, a.achievements, a.location, a.logger)
}

// blobStorage returns the blob store for one container. Without credentials the
// in-memory store is used and nothing survives a restart.
func (a *app) blobStorage(ctx context.Context, container string) (azure.BlobStorage, error) {
	storage := a.cfg.Azure.Storage
	if !storage.Enabled() {
		a.logger.Warn("Azure Storage not configured, using in-memory blob storage",
			zap.String("container", container),
		)
		return azure.NewMockBlobStorageClient(a.logger), nil
	}

	client, err := azure.NewBlobStorageClient(storage.AccountName, storage.AccountKey, container, storage.BlobEndpoint, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage for %s: %w", container, err)
	}
	if err := client.EnsureContainer(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure container %s: %w", container, err)
	}
	return client, nil
}

// chatClient returns the configured language model client, Azure first.
// Nil means medication info answers with an offline notice.
func chatClient(cfg *config.Config, logger *zap.Logger) (service.ChatCompleter, error) {
	if ai := cfg.Azure.OpenAI; ai.Endpoint != "" {
		client, err := azure.NewOpenAIClient(ai.Endpoint, ai.APIKey, ai.Deployment, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI client: %w", err)
		}
		return client, nil
	}
	if cfg.OpenAI.APIKey != "" {
		client, err := azure.NewPublicOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		return client, nil
	}

	logger.Warn("no language model configured, medication info is offline")
	return nil, nil
}
