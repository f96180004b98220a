package services_test

import (
	"testing"
	"time"

	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"
	"shiftwork_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoShowBan_ThresholdReached(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	// Two no-shows: heavy penalties but no ban yet.
	for i := 0; i < 2; i++ {
		_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
		require.NoError(t, err)
	}

	status, err := container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.False(t, status.IsFrozen)
	assert.Equal(t, 2, status.NoShowCount)
	assert.True(t, status.CanApply)
	assert.Equal(t, 60, status.Score)

	// The third no-show in the window triggers the permanent ban.
	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, newScore)

	status, err = container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.True(t, status.IsFrozen)
	assert.Nil(t, status.FreezeUntil, "a ban has no expiry")
	require.NotNil(t, status.FreezeReason)
	assert.Equal(t, models.FreezeReasonNoShowBan, *status.FreezeReason)
	assert.Equal(t, 3, status.NoShowCount)
	assert.False(t, status.CanApply)
	assert.Equal(t, 0, status.Score)

	// The drop to zero is explained by a compensating ledger event.
	reasons := eventReasons(t, db, workerID)
	assert.Equal(t, []models.ScoreReason{
		models.ScoreReasonNoShow,
		models.ScoreReasonNoShow,
		models.ScoreReasonNoShow,
		models.ScoreReasonBanApplied,
	}, reasons)

	var banEvent models.ScoreEvent
	require.NoError(t, db.Where("worker_id = ? AND reason = ?", workerID, models.ScoreReasonBanApplied).First(&banEvent).Error)
	assert.Equal(t, 40, banEvent.PreviousScore)
	assert.Equal(t, 0, banEvent.NewScore)
	assert.Equal(t, -40, banEvent.ScoreDelta)
}

func TestNoShowBan_OldNoShowsOutsideWindow(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	// Two stale no-show events outside the trailing window.
	old := time.Now().AddDate(0, 0, -40)
	for i := 0; i < 2; i++ {
		event := &models.ScoreEvent{
			WorkerID:      workerID,
			Reason:        models.ScoreReasonNoShow,
			ScoreDelta:    -20,
			PreviousScore: 100,
			NewScore:      80,
		}
		require.NoError(t, db.Create(event).Error)
		require.NoError(t, db.Model(event).Update("created_at", old).Error)
	}

	// One recent no-show: 1 in window, no ban.
	_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
	require.NoError(t, err)

	status, err := container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.False(t, status.IsFrozen)
	assert.Equal(t, 1, status.NoShowCount)
}

func TestGetFreezeStatus_LazyUnfreeze(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 70)

	expired := time.Now().Add(-time.Hour)
	reason := models.FreezeReasonPenalty
	require.NoError(t, db.Model(&models.WorkerTrustProfile{}).
		Where("worker_id = ?", workerID).
		Updates(map[string]interface{}{
			"is_frozen":     true,
			"freeze_until":  expired,
			"freeze_reason": reason,
		}).Error)

	// The expired freeze is cleared on read and the clear is persisted.
	status, err := container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.False(t, status.IsFrozen)
	assert.Nil(t, status.FreezeUntil)
	assert.True(t, status.CanApply)

	var profile models.WorkerTrustProfile
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&profile).Error)
	assert.False(t, profile.IsFrozen)
	assert.Nil(t, profile.FreezeUntil)

	// Reading again is idempotent.
	status, err = container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.False(t, status.IsFrozen)
}

func TestGetFreezeStatus_ActiveFreezeStaysFrozen(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 70)

	require.NoError(t, container.FreezeService.FreezeWorker(db, workerID, 7, models.FreezeReasonPenalty))

	status, err := container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.True(t, status.IsFrozen)
	require.NotNil(t, status.FreezeUntil)
	assert.True(t, status.FreezeUntil.After(time.Now().AddDate(0, 0, 6)))
	assert.False(t, status.CanApply)
}

func TestGetFreezeStatus_UnknownWorker(t *testing.T) {
	db, container := setupServices(t)

	_, err := container.FreezeService.GetFreezeStatus(db, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrTrustProfileNotFound)
}

func TestNoShowBan_BanIsTerminalAndIdempotent(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	for i := 0; i < 3; i++ {
		_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
		require.NoError(t, err)
	}

	banned, err := container.FreezeService.EvaluateNoShowBan(db, workerID)
	require.NoError(t, err)
	assert.True(t, banned)

	// Re-evaluating an existing ban writes no second compensating event.
	var count int64
	require.NoError(t, db.Model(&models.ScoreEvent{}).
		Where("worker_id = ? AND reason = ?", workerID, models.ScoreReasonBanApplied).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// End-to-end spiral: 100 → 80 → 60 → 40 → banned at 0.
func TestScoreSpiral_EndToEnd(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	expected := []int{80, 60, 40}
	for i := 0; i < 2; i++ {
		score, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
		require.NoError(t, err)
		assert.Equal(t, expected[i], score)
	}

	// Third no-show: the delta lands on 40, the ban compensates to 0.
	score, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	status, err := container.FreezeService.GetFreezeStatus(db, workerID)
	require.NoError(t, err)
	assert.True(t, status.IsFrozen)
	assert.False(t, status.CanApply)
	assert.Equal(t, 0, status.Score)
}
