package services_test

import (
	"fmt"
	"testing"
	"time"

	"shiftwork_backend/internal/auth"
	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"
	"shiftwork_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func workerScanner(workerID string) services.ScannerContext {
	return services.ScannerContext{ActorID: workerID, Role: models.UserRoleWorker}
}

func ownerScanner(ownerID string) services.ScannerContext {
	return services.ScannerContext{ActorID: ownerID, Role: models.UserRoleOwner}
}

// venueScanFixture seeds one owner, worker, job and approved
// application and issues the venue-fixed code.
func venueScanFixture(t *testing.T, db *gorm.DB, container *services.ServiceContainer, shiftStart, shiftEnd time.Time) (ownerID, workerID string, job *models.Job, code *services.IssuedCode) {
	t.Helper()

	ownerID = uuid.NewString()
	workerID = seedWorker(t, db, 100)
	job = seedJob(t, db, ownerID, shiftStart, shiftEnd)
	seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)

	code, err := container.CheckinService.IssueVenueCode(db, ownerID, job.ID)
	require.NoError(t, err)
	return ownerID, workerID, job, code
}

func TestValidateScan_OnTimeCheckinAndEarlyCheckout(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	_, workerID, _, code := venueScanFixture(t, db, container, now.Add(10*time.Minute), now.Add(8*time.Hour))

	// First scan toggles to check_in; arrival before shift start is on
	// time, so no penalty lands.
	outcome, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckinTypeIn, outcome.Type)
	assert.Empty(t, outcome.ScoreReasons)
	assert.Nil(t, outcome.DistanceMeters)
	assert.Equal(t, 100, currentScore(t, db, workerID))

	// Second scan toggles to check_out, hours before shift end.
	outcome, err = container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckinTypeOut, outcome.Type)
	assert.Equal(t, []models.ScoreReason{models.ScoreReasonEarlyCheckout}, outcome.ScoreReasons)
	assert.Equal(t, 98, currentScore(t, db, workerID))
}

func TestValidateScan_LateCheckinPenalty(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	// Shift started an hour ago, far beyond the grace window.
	_, workerID, _, code := venueScanFixture(t, db, container, now.Add(-time.Hour), now.Add(7*time.Hour))

	outcome, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckinTypeIn, outcome.Type)
	assert.Equal(t, []models.ScoreReason{models.ScoreReasonLateCheckin}, outcome.ScoreReasons)
	require.NotNil(t, outcome.NewScore)
	assert.Equal(t, 97, *outcome.NewScore)
}

func TestValidateScan_CompletionOnCheckoutAfterShiftEnd(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	// Shift is over; the worker checks in late and leaves after the end.
	_, workerID, _, code := venueScanFixture(t, db, container, now.Add(-9*time.Hour), now.Add(-5*time.Minute))

	_, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)

	outcome, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckinTypeOut, outcome.Type)
	assert.Contains(t, outcome.ScoreReasons, models.ScoreReasonCompletion)

	var application models.JobApplication
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&application).Error)
	assert.Equal(t, models.ApplicationStatusCompleted, application.Status)
}

func TestValidateScan_CheckoutWithoutCheckin(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	_, workerID, _, code := venueScanFixture(t, db, container, now.Add(10*time.Minute), now.Add(8*time.Hour))

	scanner := workerScanner(workerID)
	intent := models.CheckinTypeOut
	scanner.Intent = &intent

	_, err := container.CheckinService.ValidateScan(db, code.Payload, scanner)
	assert.ErrorIs(t, err, apperrors.ErrCheckoutWithoutCheckin)
}

func TestValidateScan_MalformedPayload(t *testing.T) {
	db, container := setupServices(t)

	_, err := container.CheckinService.ValidateScan(db, "not-a-token", workerScanner(uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrMalformedCode)
}

func TestValidateScan_CodeNotFound(t *testing.T) {
	db, container := setupServices(t)

	payload, err := auth.SignCodePayload(uuid.NewString(), uuid.NewString(), models.CodeKindVenue)
	require.NoError(t, err)

	_, err = container.CheckinService.ValidateScan(db, payload, workerScanner(uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrCodeNotFound)
}

func TestValidateScan_ExpiredAndInactiveCodes(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	workerID := seedWorker(t, db, 100)
	job := seedJob(t, db, ownerID, now, now.Add(8*time.Hour))
	seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)

	expired := &models.ScannableCode{
		Kind:       models.CodeKindVenue,
		SubjectID:  job.ID,
		ValidFrom:  now.Add(-4 * time.Hour),
		ValidUntil: now.Add(-2 * time.Hour),
		IsActive:   true,
	}
	require.NoError(t, db.Create(expired).Error)
	payload, err := auth.SignCodePayload(expired.ID, expired.SubjectID, expired.Kind)
	require.NoError(t, err)

	_, err = container.CheckinService.ValidateScan(db, payload, workerScanner(workerID))
	assert.ErrorIs(t, err, apperrors.ErrCodeExpired)

	inactive := &models.ScannableCode{
		Kind:       models.CodeKindVenue,
		SubjectID:  job.ID,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   false,
	}
	require.NoError(t, db.Create(inactive).Error)
	payload, err = auth.SignCodePayload(inactive.ID, inactive.SubjectID, inactive.Kind)
	require.NoError(t, err)

	_, err = container.CheckinService.ValidateScan(db, payload, workerScanner(workerID))
	assert.ErrorIs(t, err, apperrors.ErrCodeInactive)
}

func TestValidateScan_NoApplicationAndNotApproved(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	job := seedJob(t, db, ownerID, now.Add(10*time.Minute), now.Add(8*time.Hour))

	code, err := container.CheckinService.IssueVenueCode(db, ownerID, job.ID)
	require.NoError(t, err)

	// A worker with no application at all.
	stranger := seedWorker(t, db, 100)
	_, err = container.CheckinService.ValidateScan(db, code.Payload, workerScanner(stranger))
	assert.ErrorIs(t, err, apperrors.ErrNoMatchingApplication)

	// A pending application is not enough.
	pendingWorker := seedWorker(t, db, 100)
	seedApplication(t, db, job.ID, pendingWorker, models.ApplicationStatusPending)
	_, err = container.CheckinService.ValidateScan(db, code.Payload, workerScanner(pendingWorker))
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotApproved)
}

func TestWorkerCodeFlow_SingleUse(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	workerID := seedWorker(t, db, 100)
	job := seedJob(t, db, ownerID, now.Add(10*time.Minute), now.Add(8*time.Hour))
	application := seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)

	code, err := container.CheckinService.IssueWorkerCode(db, workerID, application.ID)
	require.NoError(t, err)
	assert.True(t, code.SingleUse)

	// The wrong owner cannot honor the code.
	_, err = container.CheckinService.ValidateScan(db, code.Payload, ownerScanner(uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrWrongOwner)

	// The owning owner scans the worker in.
	outcome, err := container.CheckinService.ValidateScan(db, code.Payload, ownerScanner(ownerID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckinTypeIn, outcome.Type)

	// A second scan of a consumed single-use code fails.
	_, err = container.CheckinService.ValidateScan(db, code.Payload, ownerScanner(ownerID))
	assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyUsed)
}

func TestIssueWorkerCode_Authorization(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	workerID := seedWorker(t, db, 100)
	job := seedJob(t, db, ownerID, now, now.Add(8*time.Hour))
	application := seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)

	// Another worker cannot request a code for this application.
	_, err := container.CheckinService.IssueWorkerCode(db, uuid.NewString(), application.ID)
	assert.Error(t, err)

	// Pending applications get no code.
	pending := seedApplication(t, db, job.ID, seedWorker(t, db, 100), models.ApplicationStatusPending)
	_, err = container.CheckinService.IssueWorkerCode(db, pending.WorkerID, pending.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotApproved)
}

func TestIssueVenueCode_WrongOwner(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	job := seedJob(t, db, uuid.NewString(), now, now.Add(8*time.Hour))

	_, err := container.CheckinService.IssueVenueCode(db, uuid.NewString(), job.ID)
	assert.ErrorIs(t, err, apperrors.ErrWrongOwner)
}

func TestValidateScan_Geofence(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	workerID := seedWorker(t, db, 100)

	venueLat, venueLng := 52.5208, 13.4094
	job := seedJob(t, db, ownerID, now.Add(10*time.Minute), now.Add(8*time.Hour))
	require.NoError(t, db.Model(job).Updates(map[string]interface{}{
		"venue_lat": venueLat,
		"venue_lng": venueLng,
	}).Error)
	seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)

	code, err := container.CheckinService.IssueVenueCode(db, ownerID, job.ID)
	require.NoError(t, err)

	config.AppConfig.Trust.GeofenceRadiusMeters = 150

	// Kilometers away: rejected while a radius is configured.
	farLat, farLng := 52.4500, 13.3000
	scanner := workerScanner(workerID)
	scanner.Lat, scanner.Lng = &farLat, &farLng
	_, err = container.CheckinService.ValidateScan(db, code.Payload, scanner)
	assert.ErrorIs(t, err, apperrors.ErrTooFarFromVenue)

	// No scanner coordinates: recorded as lower-confidence, not blocked.
	outcome, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	assert.Nil(t, outcome.DistanceMeters)

	// Next door: distance recorded and allowed.
	config.AppConfig.Trust.GeofenceRadiusMeters = 150
	nearLat, nearLng := 52.5209, 13.4095
	scanner.Lat, scanner.Lng = &nearLat, &nearLng
	outcome, err = container.CheckinService.ValidateScan(db, code.Payload, scanner)
	require.NoError(t, err)
	require.NotNil(t, outcome.DistanceMeters)
	assert.Less(t, *outcome.DistanceMeters, 150.0)
}

func TestValidateScan_OnTimeStreakBonus(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID := uuid.NewString()
	workerID := seedWorker(t, db, 80)

	// Five on-time check-ins across five shifts earn the streak bonus
	// on the fifth, not before.
	for i := 0; i < 5; i++ {
		job := seedJob(t, db, ownerID, now.Add(10*time.Minute), now.Add(8*time.Hour))
		seedApplication(t, db, job.ID, workerID, models.ApplicationStatusApproved)
		code, err := container.CheckinService.IssueVenueCode(db, ownerID, job.ID)
		require.NoError(t, err)

		outcome, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
		require.NoError(t, err, fmt.Sprintf("scan %d", i+1))

		if i < 4 {
			assert.Empty(t, outcome.ScoreReasons, fmt.Sprintf("scan %d should not award the bonus", i+1))
		} else {
			assert.Equal(t, []models.ScoreReason{models.ScoreReasonOnTimeStreak}, outcome.ScoreReasons)
		}
	}

	assert.Equal(t, 83, currentScore(t, db, workerID))
}

func TestGetCheckinHistory(t *testing.T) {
	db, container := setupServices(t)
	now := time.Now()
	ownerID, workerID, _, code := venueScanFixture(t, db, container, now.Add(10*time.Minute), now.Add(8*time.Hour))

	var application models.JobApplication
	require.NoError(t, db.Where("worker_id = ?", workerID).First(&application).Error)

	_, err := container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)
	_, err = container.CheckinService.ValidateScan(db, code.Payload, workerScanner(workerID))
	require.NoError(t, err)

	// The worker sees both records in scan order.
	history, err := container.CheckinService.GetCheckinHistory(db, workerID, models.UserRoleWorker, application.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.CheckinTypeIn, history[0].Type)
	assert.Equal(t, models.CheckinTypeOut, history[1].Type)

	// So does the job's owner, but nobody else.
	_, err = container.CheckinService.GetCheckinHistory(db, ownerID, models.UserRoleOwner, application.ID)
	require.NoError(t, err)

	_, err = container.CheckinService.GetCheckinHistory(db, uuid.NewString(), models.UserRoleWorker, application.ID)
	assert.Error(t, err)
	_, err = container.CheckinService.GetCheckinHistory(db, uuid.NewString(), models.UserRoleOwner, application.ID)
	assert.ErrorIs(t, err, apperrors.ErrWrongOwner)
}
