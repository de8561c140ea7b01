package database

import (
	"fmt"
	"time"

	"signalrelay/src/database/migrations"
	"signalrelay/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the primary read/write database connection used by the application.
var DB *gorm.DB

// InitDB initializes the database connection and runs migrations.
// This should be called once at application startup (e.g. in main()).
func InitDB() error {

	config := GetConfig()

	var dialector gorm.Dialector
	if config.DatabaseURL != "" {
		dialector = postgres.Open(config.DatabaseURL)
	} else {
		// Zero-infrastructure mode: the event log lands in a local file.
		dialector = sqlite.Open(config.EventDBPath)
	}

	db, err := gorm.Open(dialector,
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	if config.DatabaseURL != "" {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
	} else {
		// SQLite serializes writers; one connection avoids lock errors.
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	// Assign to the global variable only after a successful connection.
	DB = db

	logrus.Info("[database] connection established")

	// Add here all models that belong to the write-side schema.
	if err := DB.AutoMigrate(
		&model.SignalEvent{},
		&model.Candle1m{},
		&model.Candle1h{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.Run(DB); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	logrus.Info("[database] migrations completed")

	return nil
}
