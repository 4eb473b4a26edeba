package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator wraps golang-migrate together with the connection it owns
type Migrator struct {
	*migrate.Migrate
}

// NewMigrator opens its own lib/pq connection to databaseURL; Close releases it
func NewMigrator(databaseURL string) (*Migrator, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver, err := migratepg.WithInstance(conn, &migratepg.Config{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return &Migrator{Migrate: m}, nil
}

// Close releases the source and the database connection
func (m *Migrator) Close() error {
	srcErr, dbErr := m.Migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Up applies all pending migrations; no change is not an error
func (m *Migrator) Up() error {
	if err := m.Migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Migrate brings the schema up to date. Postgres runs the embedded SQL migrations;
// SQLite, used for local runs and tests, is auto-migrated from the models.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, log *zap.Logger) error {
	log = logger.OrNop(log).Named("migrate")

	if db.Dialector.Name() == DriverSQLite {
		log.Info("using gorm auto-migration for sqlite")
		return AutoMigrate(db)
	}

	m, err := NewMigrator(cfg.URL())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Info("schema is up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// AutoMigrate creates the tables from the models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.AllModels()...)
}
