package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pcforge-backend/internal/config"
	"pcforge-backend/internal/domain/compat"
	"pcforge-backend/internal/interfaces/http/rest"
	"pcforge-backend/internal/repository"
	"pcforge-backend/internal/repository/ddb"
	"pcforge-backend/internal/repository/memory"
	"pcforge-backend/internal/service/analytics"
	"pcforge-backend/internal/service/builds"
	"pcforge-backend/internal/service/catalog"
	"pcforge-backend/internal/service/social"
	"pcforge-backend/internal/service/users"
	"pcforge-backend/pkg/auth"
	"pcforge-backend/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, logLevel, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	logger.Info("configuration loaded",
		zap.String("environment", string(cfg.Environment)),
		zap.Strings("sources", cfg.LoadedFrom),
		zap.String("database", cfg.Database.Provider),
	)

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize repository", zap.Error(err))
	}

	tokens, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	if err != nil {
		logger.Fatal("failed to initialize token service", zap.Error(err))
	}

	evaluator := compat.NewEvaluator(compat.Policy{
		PSUHeadroomMargin:  cfg.Compat.PSUHeadroomMargin,
		RequiredCategories: compat.DefaultPolicy().RequiredCategories,
	})

	services := rest.Services{
		Users:     users.NewService(repo, tokens, logger),
		Catalog:   catalog.NewService(repo, logger, cfg.Features.EnableStockAlerts),
		Builds:    builds.NewService(repo, evaluator, logger),
		Social:    social.NewService(repo, logger),
		Analytics: analytics.NewService(repo, logger),
	}

	// The watcher doubles as the live config source for the router's
	// feature gates; reloads also retune the log level.
	watcher, werr := config.NewWatcher(cfg, logger)
	if werr != nil {
		logger.Warn("config hot reload unavailable", zap.Error(werr))
	}
	defer watcher.Stop()
	watcher.OnReload(func(next *config.Config) {
		if level, err := zapcore.ParseLevel(next.Logging.Level); err == nil {
			logLevel.SetLevel(level)
		}
	})

	var tracer *observability.TracerProvider
	if cfg.Tracing.Enabled {
		tracer, err = observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			Environment: string(cfg.Environment),
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	handler := rest.NewRouter(services, tokens, watcher, logger).Setup()
	if tracer != nil {
		handler = tracer.Middleware(handler)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", string(cfg.Environment)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if tracer != nil {
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

// newLogger builds the process logger. The returned atomic level stays
// adjustable so config reloads can retune verbosity at runtime.
func newLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	var zapCfg zap.Config
	if cfg.Logging.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zapCfg.Build()
	return logger, zapCfg.Level, err
}

func newRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Repository, error) {
	if cfg.Database.Provider == "memory" {
		logger.Warn("using in-memory repository; data is not persisted")
		return memory.New(), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Database.Region))
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Database.Endpoint != "" {
			o.BaseEndpoint = &cfg.Database.Endpoint
		}
	})
	return ddb.New(client, cfg.Database.TableName, logger), nil
}
