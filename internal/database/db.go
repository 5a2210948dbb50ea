package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB представляет подключение к БД
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

// NewDB создает новое подключение к БД
func NewDB(ctx context.Context, dsn string, logger *zap.Logger) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	db := &DB{Pool: pool, Logger: logger}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database", zap.String("host", config.ConnConfig.Host))
	return db, nil
}

// Ping проверяет соединение с БД
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (db *DB) Close() {
	db.Pool.Close()
}
