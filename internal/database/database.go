// Package database opens the gorm connection, the Redis client and runs schema
// migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database and applies the pool settings
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log = logger.OrNop(log).Named("database")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		log.Info("connecting to database",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("user", cfg.User),
			zap.String("name", cfg.Name))
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		log.Info("opening sqlite database", zap.String("path", cfg.Name))
		dialector = sqlite.Open(cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, 200*time.Millisecond),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// one writer; also keeps an in-memory database alive across the pool
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("successfully connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}

// HealthCheck pings the underlying connection
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
