package database

import (
	"context"
	"fmt"
	"time"

	"mailsweep-backend/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens the gorm handle, sizes its pool and pings it.
func NewPostgresConnection(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	logger.Info("connecting to postgres",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName),
		zap.Bool("database_url", cfg.DatabaseURL != ""),
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewGormLogger(logger, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("postgres connection established")
	return db, nil
}
