package main

import (
	"context"
	"fmt"

	"github.com/Totarae/openelex/internal/cache"
	"github.com/Totarae/openelex/internal/config"
	"github.com/Totarae/openelex/internal/database"
	"github.com/Totarae/openelex/internal/fetcher"
	"github.com/Totarae/openelex/internal/handlers"
	"github.com/Totarae/openelex/internal/metrics"
	"github.com/Totarae/openelex/internal/repositories"
	"github.com/Totarae/openelex/internal/router"
	"github.com/Totarae/openelex/internal/service"
	"github.com/Totarae/openelex/internal/storage"
	"github.com/Totarae/openelex/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// newBuilder возвращает сборщик зависимостей для задач, которым нужна сеть или хранилище
func newBuilder(cfg *config.Config, logger *zap.Logger) tasks.BuildFunc {
	return func(ctx context.Context) (*tasks.Runtime, error) {
		var closers []func()
		closeAll := func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
		fail := func(err error) (*tasks.Runtime, error) {
			closeAll()
			return nil, err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		var docCache fetcher.Cache
		c, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return fail(err)
		}
		if c != nil {
			docCache = c
			closers = append(closers, func() { _ = c.Close() })
			logger.Info("Redis cache enabled")
		}

		f := fetcher.New(fetcher.Options{
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.RequestBurst,
			Timeout:           cfg.RequestTimeout,
			UserAgent:         cfg.UserAgent,
		}, docCache, m, logger)

		path := cfg.FileStoragePath
		if cfg.Mode == config.ModeDatabase {
			path = "" // метаданные документов хранятся в БД
		}
		var store storage.Storage
		fileStore, err := storage.NewFileStore(path, logger)
		if err != nil {
			return fail(err)
		}
		store = fileStore

		if cfg.S3Bucket != "" {
			client, err := storage.NewS3Client(ctx, storage.S3Config{
				Bucket:   cfg.S3Bucket,
				Region:   cfg.S3Region,
				Endpoint: cfg.S3Endpoint,
				Prefix:   cfg.S3Prefix,
			})
			if err != nil {
				return fail(err)
			}
			store = storage.NewS3Archive(store, client, cfg.S3Bucket, cfg.S3Prefix, logger)
			logger.Info("S3 archive enabled", zap.String("bucket", cfg.S3Bucket))
		}

		var repo service.Repository
		if cfg.Mode == config.ModeDatabase {
			if cfg.ApplyMigrations {
				if err := database.Migrate(cfg.DatabaseDSN, logger); err != nil {
					return fail(fmt.Errorf("apply migrations: %w", err))
				}
			}
			db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, db.Close)
			repo = repositories.NewResultRepository(db.Pool)
		}

		svc := service.NewIngestService(f, store, repo, m, logger, cfg.Mode, cfg.PortalBaseURL)
		h := handlers.NewHandler(svc, cfg.PortalBaseURL, logger)

		return &tasks.Runtime{
			Service: svc,
			Handler: router.NewRouter(h, reg, logger),
			Close:   closeAll,
		}, nil
	}
}
