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

func TestApplyPenalty_AppendsEventAndUpdatesProjection(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonOwnerComplaint, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 95, newScore)
	assert.Equal(t, 95, currentScore(t, db, workerID))

	var event models.ScoreEvent
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&event).Error)
	assert.Equal(t, models.ScoreReasonOwnerComplaint, event.Reason)
	assert.Equal(t, -5, event.ScoreDelta)
	assert.Equal(t, 100, event.PreviousScore)
	assert.Equal(t, 95, event.NewScore)
}

func TestApplyPenalty_ClampsAtLowerBound(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 10)

	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonNoShow, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, newScore)

	var event models.ScoreEvent
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&event).Error)
	assert.Equal(t, 10, event.PreviousScore)
	assert.Equal(t, 0, event.NewScore)
}

func TestApplyPenalty_ClampsAtUpperBound(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonExcellentReview, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 100, newScore)
}

func TestApplyPenalty_UnknownWorker(t *testing.T) {
	db, container := setupServices(t)

	_, err := container.ScoreService.ApplyPenalty(db, uuid.NewString(), models.ScoreReasonNoShow, services.ScoreContext{})
	assert.ErrorIs(t, err, apperrors.ErrTrustProfileNotFound)
}

func TestApplyPenalty_RejectsInvalidReasons(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReason("made_up"), services.ScoreContext{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidScoreReason)

	// The compensating ban event is ledger-internal.
	_, err = container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonBanApplied, services.ScoreContext{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidScoreReason)

	assert.Empty(t, eventReasons(t, db, workerID))
}

func TestApplyPenalty_RecoveryAfterPenalizedCompletion(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 85)

	// Penalty drops the score below the recovery ceiling.
	_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonOwnerComplaint, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 80, currentScore(t, db, workerID))

	// Completing the next shift earns +1 completion plus +1 recovery.
	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonCompletion, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 82, newScore)
	assert.Equal(t, []models.ScoreReason{
		models.ScoreReasonOwnerComplaint,
		models.ScoreReasonCompletion,
		models.ScoreReasonRecovery,
	}, eventReasons(t, db, workerID))

	// A second completion without a new penalty earns no second recovery.
	newScore, err = container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonCompletion, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 83, newScore)
	assert.Equal(t, []models.ScoreReason{
		models.ScoreReasonOwnerComplaint,
		models.ScoreReasonCompletion,
		models.ScoreReasonRecovery,
		models.ScoreReasonCompletion,
	}, eventReasons(t, db, workerID))
}

func TestApplyPenalty_NoRecoveryAtHighScore(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 97)

	// −2 then +1: score stays at or above the ceiling, no recovery.
	_, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonEarlyCheckout, services.ScoreContext{})
	require.NoError(t, err)

	newScore, err := container.ScoreService.ApplyPenalty(db, workerID, models.ScoreReasonCompletion, services.ScoreContext{})
	require.NoError(t, err)
	assert.Equal(t, 96, newScore)
	assert.NotContains(t, eventReasons(t, db, workerID), models.ScoreReasonRecovery)
}

func TestApplyCancellation_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		hoursAhead time.Duration
		wantScore  int
		wantEvent  bool
		wantReason models.ScoreReason
	}{
		{"under 3h", 2 * time.Hour, 93, true, models.ScoreReasonLateCancel3h},
		{"under 12h", 10 * time.Hour, 95, true, models.ScoreReasonLateCancel12h},
		{"under 24h", 20 * time.Hour, 98, true, models.ScoreReasonLateCancel24h},
		{"30h ahead, no event", 30 * time.Hour, 100, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, container := setupServices(t)
			workerID := seedWorker(t, db, 100)

			now := time.Now()
			result, err := container.ScoreService.ApplyCancellation(db, workerID, now.Add(tt.hoursAhead), now, services.ScoreContext{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantEvent, result.Penalized)
			assert.Equal(t, tt.wantScore, result.NewScore)
			assert.Equal(t, tt.wantScore, currentScore(t, db, workerID))

			reasons := eventReasons(t, db, workerID)
			if tt.wantEvent {
				assert.Equal(t, []models.ScoreReason{tt.wantReason}, reasons)
			} else {
				assert.Empty(t, reasons)
			}
		})
	}
}

func TestGetScoreHistory(t *testing.T) {
	db, container := setupServices(t)
	workerID := seedWorker(t, db, 100)

	for _, reason := range []models.ScoreReason{
		models.ScoreReasonCompletion,
		models.ScoreReasonLateCheckin,
		models.ScoreReasonCompletion,
	} {
		_, err := container.ScoreService.ApplyPenalty(db, workerID, reason, services.ScoreContext{})
		require.NoError(t, err)
	}

	events, err := container.ScoreService.GetScoreHistory(db, workerID, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	all, err := container.ScoreService.GetScoreHistory(db, workerID, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 3)

	// Newest first.
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
	}

	_, err = container.ScoreService.GetScoreHistory(db, uuid.NewString(), 10)
	assert.ErrorIs(t, err, apperrors.ErrTrustProfileNotFound)
}

func TestCreateProfile(t *testing.T) {
	db, container := setupServices(t)

	workerID := uuid.NewString()
	profile, err := container.ScoreService.CreateProfile(db, workerID)
	require.NoError(t, err)
	assert.Equal(t, 100, profile.ReliabilityScore)
	assert.False(t, profile.IsFrozen)

	_, err = container.ScoreService.CreateProfile(db, workerID)
	assert.Error(t, err)
}
