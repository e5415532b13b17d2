// Package database opens the gorm connection backing the repositories.
package database

import (
	"fmt"
	"time"

	"cardkeep/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to driver ("postgres" or "sqlite") at dsn and migrates the
// user, share and catalog tables.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(zap.L()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewLogger routes gorm's warnings and errors through zap. A missed lookup is
// an expected outcome for the repositories, so ErrRecordNotFound is not logged.
func NewLogger(l *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate creates or updates the tables this service owns. The cards table is
// migrated too so a fresh database can be seeded.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.ShareRecord{}, &models.Card{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
