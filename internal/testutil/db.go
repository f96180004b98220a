package testutil

import (
	"fmt"
	"testing"

	"shiftwork_backend/database"
	"shiftwork_backend/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database, runs the full
// schema migration and installs the test configuration.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	SetupTestConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SetupTestConfig installs the default trust policy without touching
// config files or the environment.
func SetupTestConfig() {
	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Trust.CodeSecret = "test-code-secret"
	cfg.Trust.NoShowBanThreshold = 3
	cfg.Trust.NoShowWindowDays = 30
	cfg.Trust.CheckinGraceMinutes = 15
	cfg.Trust.GeofenceRadiusMeters = 0
	cfg.Trust.WorkerCodeTTLMinutes = 240
	cfg.Trust.OnTimeStreakLength = 5
	cfg.Trust.PenaltyFreezeDays = 7
	config.AppConfig = cfg
}
