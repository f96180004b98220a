package services

import (
	"time"

	"shiftwork_backend/internal/algorithms"
	"shiftwork_backend/internal/logger"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ScoreContext carries the optional references attached to a ledger row.
type ScoreContext struct {
	JobID         *string
	ApplicationID *string
}

// CancellationResult reports how a cancellation was classified.
// Penalized is false for cancellations 24h or more ahead: no ledger
// event is written and NewScore is the unchanged current score.
type CancellationResult struct {
	Penalized bool               `json:"penalized"`
	Reason    models.ScoreReason `json:"reason,omitempty"`
	NewScore  int                `json:"new_score"`
}

type ScoreService interface {
	// ApplyPenalty appends one ledger event and updates the cached
	// profile score atomically, then emits a fire-and-forget
	// notification. Returns the new score.
	ApplyPenalty(db *gorm.DB, workerID string, reason models.ScoreReason, scoreCtx ScoreContext) (int, error)

	// ApplyPenaltyInTx is ApplyPenalty for callers that already hold
	// the transaction (the check-in flow scores the scan inside its own
	// atomic write). No notification is emitted here; the caller
	// notifies after its transaction commits.
	ApplyPenaltyInTx(tx *gorm.DB, workerID string, reason models.ScoreReason, scoreCtx ScoreContext) (int, error)

	// ApplyCancellation classifies a cancellation against the penalty
	// tiers and applies the resulting penalty, if any.
	ApplyCancellation(db *gorm.DB, workerID string, shiftStart, now time.Time, scoreCtx ScoreContext) (*CancellationResult, error)

	GetScoreHistory(db *gorm.DB, workerID string, limit int) ([]models.ScoreEvent, error)

	// CreateProfile is invoked by the external registration flow when a
	// worker account is created. Score starts at 100.
	CreateProfile(db *gorm.DB, workerID string) (*models.WorkerTrustProfile, error)
}

type scoreService struct {
	profileRepo      repositories.TrustProfileRepository
	eventRepo        repositories.ScoreEventRepository
	notificationRepo repositories.NotificationRepository
	freezeService    FreezeService
}

func NewScoreService(
	profileRepo repositories.TrustProfileRepository,
	eventRepo repositories.ScoreEventRepository,
	notificationRepo repositories.NotificationRepository,
	freezeService FreezeService,
) ScoreService {
	return &scoreService{
		profileRepo:      profileRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		freezeService:    freezeService,
	}
}

// ---------------- Ledger operations ----------------

func (s *scoreService) ApplyPenalty(db *gorm.DB, workerID string, reason models.ScoreReason, scoreCtx ScoreContext) (int, error) {
	var newScore int
	err := db.Transaction(func(tx *gorm.DB) error {
		score, err := s.ApplyPenaltyInTx(tx, workerID, reason, scoreCtx)
		if err != nil {
			return err
		}
		newScore = score
		return nil
	})
	if err != nil {
		return 0, wrapScoreError(err)
	}

	go s.notifyScoreChanged(db, workerID, reason, newScore)

	return newScore, nil
}

func (s *scoreService) ApplyPenaltyInTx(tx *gorm.DB, workerID string, reason models.ScoreReason, scoreCtx ScoreContext) (int, error) {
	if !reason.IsValid() || reason == models.ScoreReasonBanApplied {
		return 0, apperrors.ErrInvalidScoreReason
	}

	delta, ok := algorithms.DeltaFor(reason)
	if !ok {
		return 0, apperrors.ErrInvalidScoreReason
	}

	newScore, err := s.appendEvent(tx, workerID, reason, delta, scoreCtx)
	if err != nil {
		return 0, wrapScoreError(err)
	}

	// A no-show can tip the worker over the 30-day ban threshold; the
	// ban must land in the same transaction as the event that caused it.
	if reason == models.ScoreReasonNoShow {
		banned, err := s.freezeService.EvaluateNoShowBan(tx, workerID)
		if err != nil {
			return 0, wrapScoreError(err)
		}
		if banned {
			newScore = algorithms.ScoreMin
		}
	}

	// Completing a shift below the recovery ceiling after a penalty
	// earns the recovery point, once per completed shift.
	if reason == models.ScoreReasonCompletion {
		newScore, err = s.maybeApplyRecovery(tx, workerID, newScore, scoreCtx)
		if err != nil {
			return 0, wrapScoreError(err)
		}
	}

	return newScore, nil
}

func (s *scoreService) ApplyCancellation(db *gorm.DB, workerID string, shiftStart, now time.Time, scoreCtx ScoreContext) (*CancellationResult, error) {
	reason, penalized := algorithms.ClassifyCancellation(shiftStart, now)
	if !penalized {
		// Early enough: no penalty, no ledger event.
		profile, err := s.profileRepo.FindByWorkerID(db, workerID)
		if err != nil {
			return nil, wrapScoreError(err)
		}
		return &CancellationResult{Penalized: false, NewScore: profile.ReliabilityScore}, nil
	}

	newScore, err := s.ApplyPenalty(db, workerID, reason, scoreCtx)
	if err != nil {
		return nil, err
	}
	return &CancellationResult{Penalized: true, Reason: reason, NewScore: newScore}, nil
}

func (s *scoreService) GetScoreHistory(db *gorm.DB, workerID string, limit int) ([]models.ScoreEvent, error) {
	if _, err := s.profileRepo.FindByWorkerID(db, workerID); err != nil {
		return nil, wrapScoreError(err)
	}
	events, err := s.eventRepo.FindByWorker(db, workerID, limit)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return events, nil
}

func (s *scoreService) CreateProfile(db *gorm.DB, workerID string) (*models.WorkerTrustProfile, error) {
	profile := &models.WorkerTrustProfile{
		WorkerID:         workerID,
		ReliabilityScore: algorithms.ScoreDefault,
	}
	if err := s.profileRepo.CreateProfile(db, profile); err != nil {
		if err == repositories.ErrTrustProfileAlreadyExists {
			return nil, apperrors.ErrConflict(err, "trust", "Trust profile already exists")
		}
		return nil, apperrors.PersistenceError(err)
	}
	return profile, nil
}

// ---------------- Internals ----------------

// appendEvent writes one ledger row and swaps the cached score. Both
// writes happen on the caller's transaction: either both commit or
// neither does.
func (s *scoreService) appendEvent(tx *gorm.DB, workerID string, reason models.ScoreReason, delta int, scoreCtx ScoreContext) (int, error) {
	profile, err := s.profileRepo.FindByWorkerID(tx, workerID)
	if err != nil {
		return 0, err
	}

	previous := profile.ReliabilityScore
	newScore := algorithms.ClampScore(previous + delta)

	event := &models.ScoreEvent{
		WorkerID:             workerID,
		Reason:               reason,
		ScoreDelta:           delta,
		PreviousScore:        previous,
		NewScore:             newScore,
		RelatedJobID:         scoreCtx.JobID,
		RelatedApplicationID: scoreCtx.ApplicationID,
	}
	if err := s.eventRepo.Append(tx, event); err != nil {
		return 0, err
	}

	if err := s.profileRepo.CompareAndSwapScore(tx, workerID, previous, newScore); err != nil {
		return 0, err
	}

	return newScore, nil
}

func (s *scoreService) maybeApplyRecovery(tx *gorm.DB, workerID string, currentScore int, scoreCtx ScoreContext) (int, error) {
	if currentScore >= algorithms.RecoveryScoreCeiling {
		return currentScore, nil
	}

	lastRecovery, err := s.eventRepo.FindLatestByReasons(tx, workerID, []models.ScoreReason{models.ScoreReasonRecovery})
	if err != nil {
		return 0, err
	}

	since := time.Time{}
	if lastRecovery != nil {
		since = lastRecovery.CreatedAt
	}

	penalized, err := s.eventRepo.ExistsPenaltySince(tx, workerID, since)
	if err != nil {
		return 0, err
	}
	if !penalized {
		return currentScore, nil
	}

	return s.appendEvent(tx, workerID, models.ScoreReasonRecovery, algorithms.DeltaRecovery, scoreCtx)
}

func (s *scoreService) notifyScoreChanged(db *gorm.DB, workerID string, reason models.ScoreReason, newScore int) {
	err := s.notificationRepo.CreateTrustNotification(db, workerID,
		"score_changed",
		"Reliability score updated",
		"Your reliability score changed after a "+string(reason)+" event.",
		map[string]interface{}{"reason": reason, "new_score": newScore},
	)
	if err != nil {
		logger.Warn("failed to write score notification", "worker_id", workerID, "error", err)
	}
}

// wrapScoreError maps repository sentinels onto the error taxonomy.
func wrapScoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case err == repositories.ErrTrustProfileNotFound:
		return apperrors.ErrTrustProfileNotFound
	case err == repositories.ErrScoreConflict:
		return apperrors.ErrConflict(err, "trust", "Concurrent score update, retry the operation")
	default:
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return apperrors.PersistenceError(err)
	}
}
