package database

import (
	"fmt"

	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm initializes GORM with the DSN from config.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate migrates all models.
func AutoMigrate() error {
	db, err := ConnectGorm()
	if err != nil {
		return err
	}
	return Migrate(db)
}

// Migrate runs the schema migration against an existing handle. Tests
// call this with their in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Worker{},
		&models.LanguageCertificate{},
		&models.Job{},
		&models.JobApplication{},
		&models.WorkerTrustProfile{},
		&models.ScoreEvent{},
		&models.CheckinRecord{},
		&models.ScannableCode{},
		&models.Notification{},
	)
}
