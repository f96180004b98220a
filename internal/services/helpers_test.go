package services_test

import (
	"testing"
	"time"

	"shiftwork_backend/internal/app"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"
	"shiftwork_backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*gorm.DB, *services.ServiceContainer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return db, app.InitializeServices()
}

func seedWorker(t *testing.T, db *gorm.DB, score int) string {
	t.Helper()

	worker := &models.Worker{
		Name:               "Test Worker",
		Email:              uuid.NewString() + "@example.com",
		IsIdentityVerified: true,
	}
	require.NoError(t, db.Create(worker).Error)

	profile := &models.WorkerTrustProfile{
		WorkerID:         worker.ID,
		ReliabilityScore: score,
	}
	require.NoError(t, db.Create(profile).Error)

	return worker.ID
}

func seedJob(t *testing.T, db *gorm.DB, ownerID string, shiftStart, shiftEnd time.Time) *models.Job {
	t.Helper()

	job := &models.Job{
		OwnerID:    ownerID,
		Title:      "Evening service",
		Status:     models.JobStatusActive,
		ShiftStart: shiftStart,
		ShiftEnd:   shiftEnd,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func seedApplication(t *testing.T, db *gorm.DB, jobID, workerID string, status models.ApplicationStatus) *models.JobApplication {
	t.Helper()

	application := &models.JobApplication{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   status,
	}
	require.NoError(t, db.Create(application).Error)
	return application
}

func currentScore(t *testing.T, db *gorm.DB, workerID string) int {
	t.Helper()

	var profile models.WorkerTrustProfile
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&profile).Error)
	return profile.ReliabilityScore
}

func eventReasons(t *testing.T, db *gorm.DB, workerID string) []models.ScoreReason {
	t.Helper()

	var events []models.ScoreEvent
	require.NoError(t, db.Where("worker_id = ?", workerID).Order("created_at ASC, id ASC").Find(&events).Error)

	reasons := make([]models.ScoreReason, 0, len(events))
	for _, e := range events {
		reasons = append(reasons, e.Reason)
	}
	return reasons
}
