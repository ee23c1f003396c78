package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"
)

func gormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		// Relations are attached by the repositories; no FK constraints are
		// generated so conversion and deletes behave the same on both stores.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(log),
	}
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if IsPostgres(dsn) {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gormConfig(log))
	}

	log.Info("using SQLite for local development", zap.String("dsn", dsn))

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		gormConfig(log),
	)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; an in-memory database also lives and
	// dies with its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// ConnectMemory opens a private in-memory SQLite database.
func ConnectMemory() (*gorm.DB, error) {
	return Connect(":memory:", nil)
}

// Migrate creates or updates the tables for the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
