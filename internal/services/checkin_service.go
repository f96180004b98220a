package services

import (
	"time"

	"shiftwork_backend/internal/algorithms"
	"shiftwork_backend/internal/auth"
	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/logger"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// A venue-fixed code is accepted a little outside the exact shift
// window so workers arriving early or leaving late can still scan.
const venueCodeWindowPadding = time.Hour

// ScannerContext identifies who scanned and where. Intent is optional:
// when nil the scan type toggles off the last record, when set it must
// be consistent with that record.
type ScannerContext struct {
	ActorID string
	Role    models.UserRole
	Lat     *float64
	Lng     *float64
	Intent  *models.CheckinType
}

// CheckinOutcome is the result of one accepted scan.
type CheckinOutcome struct {
	RecordID       string             `json:"record_id"`
	ApplicationID  string             `json:"application_id"`
	Type           models.CheckinType `json:"type"`
	ScannedAt      time.Time          `json:"scanned_at"`
	DistanceMeters *float64           `json:"distance_meters,omitempty"`
	// ScoreReasons lists the ledger events this scan produced, in order.
	ScoreReasons []models.ScoreReason `json:"score_reasons,omitempty"`
	NewScore     *int                 `json:"new_score,omitempty"`
}

// IssuedCode is a freshly created scannable code plus its signed payload.
type IssuedCode struct {
	CodeID     string          `json:"code_id"`
	Payload    string          `json:"payload"`
	Kind       models.CodeKind `json:"kind"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidUntil time.Time       `json:"valid_until"`
	SingleUse  bool            `json:"single_use"`
}

type CheckinService interface {
	// ValidateScan runs the full validation chain for a scanned payload
	// and, when it passes, persists the record together with any scoring
	// side effects in one transaction. The checks run in a fixed order
	// so a scan always fails for its most fundamental problem first.
	ValidateScan(db *gorm.DB, payload string, scanner ScannerContext) (*CheckinOutcome, error)

	// IssueVenueCode creates the venue-fixed code for a job, valid for
	// the shift window plus padding. Reusable across all workers on the
	// shift; the issuer must own the job.
	IssueVenueCode(db *gorm.DB, ownerID, jobID string) (*IssuedCode, error)

	// IssueWorkerCode creates a single-use worker-carried code for an
	// approved application. The owner scans it at the venue.
	IssueWorkerCode(db *gorm.DB, workerID, applicationID string) (*IssuedCode, error)

	// GetCheckinHistory returns the scan records of an application in
	// chronological order, for shift review and worked-hours derivation.
	// Visible to the application's worker and the job's owner.
	GetCheckinHistory(db *gorm.DB, actorID string, role models.UserRole, applicationID string) ([]models.CheckinRecord, error)
}

type checkinService struct {
	checkinRepo      repositories.CheckinRepository
	jobRepo          repositories.JobRepository
	eventRepo        repositories.ScoreEventRepository
	notificationRepo repositories.NotificationRepository
	scoreService     ScoreService
}

func NewCheckinService(
	checkinRepo repositories.CheckinRepository,
	jobRepo repositories.JobRepository,
	eventRepo repositories.ScoreEventRepository,
	notificationRepo repositories.NotificationRepository,
	scoreService ScoreService,
) CheckinService {
	return &checkinService{
		checkinRepo:      checkinRepo,
		jobRepo:          jobRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		scoreService:     scoreService,
	}
}

// ---------------- Scan validation ----------------

func (s *checkinService) ValidateScan(db *gorm.DB, payload string, scanner ScannerContext) (*CheckinOutcome, error) {
	now := time.Now()

	// 1. The payload must decode to a signed code token.
	claims, err := auth.ParseCodePayload(payload)
	if err != nil {
		return nil, apperrors.ErrMalformedCode
	}

	// 2. The token must reference a stored code, and agree with it.
	code, err := s.checkinRepo.FindCodeByID(db, claims.CodeID)
	if err != nil {
		if err == repositories.ErrCodeNotFound {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, apperrors.PersistenceError(err)
	}
	if code.Kind != claims.Kind || code.SubjectID != claims.SubjectID {
		return nil, apperrors.ErrMalformedCode
	}

	// 3. Window, active flag, single-use state.
	if now.Before(code.ValidFrom) || now.After(code.ValidUntil) {
		return nil, apperrors.ErrCodeExpired
	}
	if !code.IsActive {
		return nil, apperrors.ErrCodeInactive
	}
	if code.SingleUse && code.ConsumedByCheckinID != nil {
		return nil, apperrors.ErrCodeAlreadyUsed
	}

	// 4. Resolve the application the scan is about and authorize the
	// scanning party against it.
	application, err := s.resolveApplication(db, code, scanner)
	if err != nil {
		return nil, err
	}
	if application.Status != models.ApplicationStatusApproved {
		return nil, apperrors.ErrApplicationNotApproved
	}

	job := application.Job
	if job == nil {
		job, err = s.jobRepo.FindJobByID(db, application.JobID)
		if err != nil {
			return nil, apperrors.PersistenceError(err)
		}
	}

	// 5. Geofence. Distance is only computable when both sides have
	// coordinates; an incomputable distance flags the record as
	// lower-confidence instead of rejecting the scan. A computed
	// distance hard-fails only against a configured radius.
	distance := computeDistance(scanner, job)
	radius := config.GetConfig().Trust.GeofenceRadiusMeters
	if distance != nil && radius > 0 && *distance > radius {
		return nil, apperrors.ErrTooFarFromVenue
	}

	// 6. check_in and check_out strictly alternate per application.
	scanType, err := s.resolveScanType(db, application.ID, scanner.Intent)
	if err != nil {
		return nil, err
	}

	// 7. Persist record, consumption and scoring atomically.
	record := &models.CheckinRecord{
		ApplicationID:           application.ID,
		Type:                    scanType,
		ScannedAt:               now,
		Lat:                     scanner.Lat,
		Lng:                     scanner.Lng,
		DistanceFromVenueMeters: distance,
		IsValid:                 true,
		SourceCodeID:            code.ID,
	}

	var reasons []models.ScoreReason
	var newScore *int
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkinRepo.CreateRecord(tx, record); err != nil {
			return apperrors.PersistenceError(err)
		}

		if code.SingleUse {
			if err := s.checkinRepo.ConsumeCode(tx, code.ID, record.ID); err != nil {
				if err == repositories.ErrCodeAlreadyConsumed {
					return apperrors.ErrCodeAlreadyUsed
				}
				return apperrors.PersistenceError(err)
			}
		}

		reasons, newScore, err = s.scoreScan(tx, application, job, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	go s.notifyCheckinRecorded(db, application.WorkerID, record)

	return &CheckinOutcome{
		RecordID:       record.ID,
		ApplicationID:  application.ID,
		Type:           scanType,
		ScannedAt:      record.ScannedAt,
		DistanceMeters: distance,
		ScoreReasons:   reasons,
		NewScore:       newScore,
	}, nil
}

// resolveApplication maps the two code kinds onto one application.
// Venue-fixed code: the subject is a job and the scanner must hold an
// application for it. Worker-carried code: the subject is the
// application itself and the scanner must own the job.
func (s *checkinService) resolveApplication(db *gorm.DB, code *models.ScannableCode, scanner ScannerContext) (*models.JobApplication, error) {
	switch code.Kind {
	case models.CodeKindVenue:
		application, err := s.jobRepo.FindApplicationByJobAndWorker(db, code.SubjectID, scanner.ActorID)
		if err != nil {
			if err == repositories.ErrApplicationNotFound {
				return nil, apperrors.ErrNoMatchingApplication
			}
			return nil, apperrors.PersistenceError(err)
		}
		return application, nil

	case models.CodeKindWorker:
		application, err := s.jobRepo.FindApplicationByID(db, code.SubjectID)
		if err != nil {
			if err == repositories.ErrApplicationNotFound {
				return nil, apperrors.ErrNoMatchingApplication
			}
			return nil, apperrors.PersistenceError(err)
		}
		if application.Job == nil || application.Job.OwnerID != scanner.ActorID {
			return nil, apperrors.ErrWrongOwner
		}
		return application, nil

	default:
		return nil, apperrors.ErrMalformedCode
	}
}

func (s *checkinService) resolveScanType(db *gorm.DB, applicationID string, intent *models.CheckinType) (models.CheckinType, error) {
	latest, err := s.checkinRepo.FindLatestByApplication(db, applicationID)
	if err != nil {
		return "", apperrors.PersistenceError(err)
	}

	checkedIn := latest != nil && latest.Type == models.CheckinTypeIn

	if intent == nil {
		if checkedIn {
			return models.CheckinTypeOut, nil
		}
		return models.CheckinTypeIn, nil
	}

	switch *intent {
	case models.CheckinTypeIn:
		if checkedIn {
			return "", apperrors.ErrInvalidOperation("checkin", "Already checked in for this application")
		}
		return models.CheckinTypeIn, nil
	case models.CheckinTypeOut:
		if !checkedIn {
			return "", apperrors.ErrCheckoutWithoutCheckin
		}
		return models.CheckinTypeOut, nil
	default:
		return "", apperrors.ErrInvalidOperation("checkin", "Unknown check-in type")
	}
}

// scoreScan applies the ledger side effects of an accepted scan on the
// caller's transaction.
func (s *checkinService) scoreScan(tx *gorm.DB, application *models.JobApplication, job *models.Job, record *models.CheckinRecord) ([]models.ScoreReason, *int, error) {
	cfg := config.GetConfig()
	grace := time.Duration(cfg.Trust.CheckinGraceMinutes) * time.Minute
	scoreCtx := ScoreContext{JobID: &application.JobID, ApplicationID: &application.ID}

	var reasons []models.ScoreReason
	var newScore *int

	apply := func(reason models.ScoreReason) error {
		score, err := s.scoreService.ApplyPenaltyInTx(tx, application.WorkerID, reason, scoreCtx)
		if err != nil {
			return err
		}
		reasons = append(reasons, reason)
		newScore = &score
		return nil
	}

	switch record.Type {
	case models.CheckinTypeIn:
		if reason, late := algorithms.ClassifyArrival(job.ShiftStart, record.ScannedAt, grace); late {
			if err := apply(reason); err != nil {
				return nil, nil, err
			}
			return reasons, newScore, nil
		}
		// On time. Streaks are derived from check-in records because
		// on-time arrivals write no ledger event of their own; the count
		// restarts at the last late check-in or streak award.
		awarded, err := s.checkOnTimeStreak(tx, application.WorkerID, cfg.Trust.OnTimeStreakLength)
		if err != nil {
			return nil, nil, err
		}
		if awarded {
			if err := apply(models.ScoreReasonOnTimeStreak); err != nil {
				return nil, nil, err
			}
		}

	case models.CheckinTypeOut:
		// Leaving within grace of shift end still counts as completion.
		if record.ScannedAt.Before(job.ShiftEnd.Add(-grace)) {
			if err := apply(models.ScoreReasonEarlyCheckout); err != nil {
				return nil, nil, err
			}
		} else {
			if err := apply(models.ScoreReasonCompletion); err != nil {
				return nil, nil, err
			}
			if err := s.jobRepo.UpdateApplicationStatus(tx, application.ID, models.ApplicationStatusCompleted); err != nil {
				return nil, nil, apperrors.PersistenceError(err)
			}
		}
	}

	return reasons, newScore, nil
}

func (s *checkinService) checkOnTimeStreak(tx *gorm.DB, workerID string, streakLength int) (bool, error) {
	if streakLength <= 0 {
		return false, nil
	}

	boundary, err := s.eventRepo.FindLatestByReasons(tx, workerID, []models.ScoreReason{
		models.ScoreReasonLateCheckin,
		models.ScoreReasonOnTimeStreak,
	})
	if err != nil {
		return false, apperrors.PersistenceError(err)
	}

	since := time.Time{}
	if boundary != nil {
		since = boundary.CreatedAt
	}

	// Includes the record created earlier in this transaction.
	count, err := s.checkinRepo.CountWorkerCheckinsSince(tx, workerID, since)
	if err != nil {
		return false, apperrors.PersistenceError(err)
	}

	return count > 0 && count%int64(streakLength) == 0, nil
}

// ---------------- Code issuance ----------------

func (s *checkinService) IssueVenueCode(db *gorm.DB, ownerID, jobID string) (*IssuedCode, error) {
	job, err := s.jobRepo.FindJobByID(db, jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}
	if job.OwnerID != ownerID {
		return nil, apperrors.ErrWrongOwner
	}

	code := &models.ScannableCode{
		Kind:       models.CodeKindVenue,
		SubjectID:  job.ID,
		ValidFrom:  job.ShiftStart.Add(-venueCodeWindowPadding),
		ValidUntil: job.ShiftEnd.Add(venueCodeWindowPadding),
		IsActive:   true,
		SingleUse:  false,
	}
	return s.persistAndSign(db, code)
}

func (s *checkinService) IssueWorkerCode(db *gorm.DB, workerID, applicationID string) (*IssuedCode, error) {
	application, err := s.jobRepo.FindApplicationByID(db, applicationID)
	if err != nil {
		if err == repositories.ErrApplicationNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}
	if application.WorkerID != workerID {
		return nil, apperrors.NewForbiddenError("Application belongs to another worker")
	}
	if application.Status != models.ApplicationStatusApproved {
		return nil, apperrors.ErrApplicationNotApproved
	}

	now := time.Now()
	ttl := time.Duration(config.GetConfig().Trust.WorkerCodeTTLMinutes) * time.Minute
	code := &models.ScannableCode{
		Kind:       models.CodeKindWorker,
		SubjectID:  application.ID,
		ValidFrom:  now,
		ValidUntil: now.Add(ttl),
		IsActive:   true,
		SingleUse:  true,
	}
	return s.persistAndSign(db, code)
}

func (s *checkinService) persistAndSign(db *gorm.DB, code *models.ScannableCode) (*IssuedCode, error) {
	if err := s.checkinRepo.CreateCode(db, code); err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	payload, err := auth.SignCodePayload(code.ID, code.SubjectID, code.Kind)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &IssuedCode{
		CodeID:     code.ID,
		Payload:    payload,
		Kind:       code.Kind,
		ValidFrom:  code.ValidFrom,
		ValidUntil: code.ValidUntil,
		SingleUse:  code.SingleUse,
	}, nil
}

// ---------------- History ----------------

func (s *checkinService) GetCheckinHistory(db *gorm.DB, actorID string, role models.UserRole, applicationID string) ([]models.CheckinRecord, error) {
	application, err := s.jobRepo.FindApplicationByID(db, applicationID)
	if err != nil {
		if err == repositories.ErrApplicationNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	switch role {
	case models.UserRoleWorker:
		if application.WorkerID != actorID {
			return nil, apperrors.NewForbiddenError("Application belongs to another worker")
		}
	case models.UserRoleOwner:
		if application.Job == nil || application.Job.OwnerID != actorID {
			return nil, apperrors.ErrWrongOwner
		}
	}

	records, err := s.checkinRepo.FindByApplication(db, applicationID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return records, nil
}

// ---------------- Helpers ----------------

func computeDistance(scanner ScannerContext, job *models.Job) *float64 {
	if scanner.Lat == nil || scanner.Lng == nil || job.VenueLat == nil || job.VenueLng == nil {
		return nil
	}
	d := algorithms.HaversineDistance(*scanner.Lat, *scanner.Lng, *job.VenueLat, *job.VenueLng)
	return &d
}

func (s *checkinService) notifyCheckinRecorded(db *gorm.DB, workerID string, record *models.CheckinRecord) {
	err := s.notificationRepo.CreateTrustNotification(db, workerID,
		"checkin_recorded",
		"Shift scan recorded",
		"A "+string(record.Type)+" scan was recorded for your shift.",
		map[string]interface{}{"application_id": record.ApplicationID, "type": record.Type},
	)
	if err != nil {
		logger.Warn("failed to write check-in notification", "worker_id", workerID, "error", err)
	}
}
