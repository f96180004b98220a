package services

import (
	"time"

	"shiftwork_backend/internal/algorithms"
	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/logger"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// FreezeStatus is the answer to "may this worker apply right now".
type FreezeStatus struct {
	IsFrozen     bool                 `json:"is_frozen"`
	FreezeUntil  *time.Time           `json:"freeze_until,omitempty"`
	FreezeReason *models.FreezeReason `json:"freeze_reason,omitempty"`
	NoShowCount  int                  `json:"no_show_count"`
	CanApply     bool                 `json:"can_apply"`
	Score        int                  `json:"reliability_score"`
}

type FreezeService interface {
	// GetFreezeStatus reads the current freeze state. An elapsed
	// time-boxed freeze is cleared and persisted on this read path, so
	// no background sweep is needed; repeated reads are idempotent.
	GetFreezeStatus(db *gorm.DB, workerID string) (*FreezeStatus, error)

	// EvaluateNoShowBan counts no-shows in the trailing window and
	// applies the permanent ban when the threshold is met. Called by
	// the score service inside the same transaction as a NoShow append.
	// The ban is terminal; only a manual override outside this service
	// reverses it.
	EvaluateNoShowBan(db *gorm.DB, workerID string) (bool, error)

	// FreezeWorker applies an explicit time-boxed freeze (e.g. a 7-day
	// policy freeze tied to a specific penalty). Not derived here; the
	// caller decides when policy demands it.
	FreezeWorker(db *gorm.DB, workerID string, days int, reason models.FreezeReason) error
}

type freezeService struct {
	profileRepo      repositories.TrustProfileRepository
	eventRepo        repositories.ScoreEventRepository
	notificationRepo repositories.NotificationRepository
}

func NewFreezeService(
	profileRepo repositories.TrustProfileRepository,
	eventRepo repositories.ScoreEventRepository,
	notificationRepo repositories.NotificationRepository,
) FreezeService {
	return &freezeService{
		profileRepo:      profileRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *freezeService) GetFreezeStatus(db *gorm.DB, workerID string) (*FreezeStatus, error) {
	profile, err := s.profileRepo.FindByWorkerID(db, workerID)
	if err != nil {
		if err == repositories.ErrTrustProfileNotFound {
			return nil, apperrors.ErrTrustProfileNotFound
		}
		return nil, apperrors.PersistenceError(err)
	}

	// Lazy unfreeze: an expired freeze window is cleared on read and
	// the clear is persisted before answering.
	if profile.IsFrozen && profile.FreezeUntil != nil && !time.Now().Before(*profile.FreezeUntil) {
		if err := s.profileRepo.ClearFreeze(db, workerID); err != nil {
			return nil, apperrors.PersistenceError(err)
		}
		profile.IsFrozen = false
		profile.FreezeUntil = nil
		profile.FreezeReason = nil
	}

	windowStart := time.Now().AddDate(0, 0, -config.GetConfig().Trust.NoShowWindowDays)
	noShowCount, err := s.eventRepo.CountByReasonSince(db, workerID, models.ScoreReasonNoShow, windowStart)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	return &FreezeStatus{
		IsFrozen:     profile.IsFrozen,
		FreezeUntil:  profile.FreezeUntil,
		FreezeReason: profile.FreezeReason,
		NoShowCount:  int(noShowCount),
		CanApply:     !profile.IsFrozen && profile.ReliabilityScore > 0,
		Score:        profile.ReliabilityScore,
	}, nil
}

func (s *freezeService) EvaluateNoShowBan(db *gorm.DB, workerID string) (bool, error) {
	cfg := config.GetConfig()
	windowStart := time.Now().AddDate(0, 0, -cfg.Trust.NoShowWindowDays)

	count, err := s.eventRepo.CountByReasonSince(db, workerID, models.ScoreReasonNoShow, windowStart)
	if err != nil {
		return false, err
	}
	if count < int64(cfg.Trust.NoShowBanThreshold) {
		return false, nil
	}

	profile, err := s.profileRepo.FindByWorkerID(db, workerID)
	if err != nil {
		return false, err
	}
	if profile.IsFrozen && profile.FreezeUntil == nil {
		// Already banned.
		return true, nil
	}

	// Permanent ban: frozen with no expiry, score forced to 0 through a
	// compensating ledger event so the history explains the drop.
	if profile.ReliabilityScore != algorithms.ScoreMin {
		event := &models.ScoreEvent{
			WorkerID:      workerID,
			Reason:        models.ScoreReasonBanApplied,
			ScoreDelta:    algorithms.ScoreMin - profile.ReliabilityScore,
			PreviousScore: profile.ReliabilityScore,
			NewScore:      algorithms.ScoreMin,
		}
		if err := s.eventRepo.Append(db, event); err != nil {
			return false, err
		}
		if err := s.profileRepo.CompareAndSwapScore(db, workerID, profile.ReliabilityScore, algorithms.ScoreMin); err != nil {
			return false, err
		}
	}

	if err := s.profileRepo.SetFreeze(db, workerID, nil, models.FreezeReasonNoShowBan); err != nil {
		return false, err
	}

	// This runs on the caller's transaction, so the notification is
	// written synchronously; a goroutine must never hold a tx handle.
	s.notifyBanned(db, workerID, int(count))

	return true, nil
}

func (s *freezeService) FreezeWorker(db *gorm.DB, workerID string, days int, reason models.FreezeReason) error {
	if days <= 0 {
		days = config.GetConfig().Trust.PenaltyFreezeDays
	}
	until := time.Now().AddDate(0, 0, days)

	if err := s.profileRepo.SetFreeze(db, workerID, &until, reason); err != nil {
		if err == repositories.ErrTrustProfileNotFound {
			return apperrors.ErrTrustProfileNotFound
		}
		return apperrors.PersistenceError(err)
	}

	go func() {
		err := s.notificationRepo.CreateTrustNotification(db, workerID,
			"worker_frozen",
			"Account temporarily frozen",
			"Your account is frozen until "+until.Format(time.RFC3339)+".",
			map[string]interface{}{"freeze_until": until, "reason": reason},
		)
		if err != nil {
			logger.Warn("failed to write freeze notification", "worker_id", workerID, "error", err)
		}
	}()

	return nil
}

func (s *freezeService) notifyBanned(db *gorm.DB, workerID string, noShowCount int) {
	err := s.notificationRepo.CreateTrustNotification(db, workerID,
		"worker_banned",
		"Account banned",
		"Your account has been banned after repeated no-shows.",
		map[string]interface{}{"no_show_count": noShowCount},
	)
	if err != nil {
		logger.Warn("failed to write ban notification", "worker_id", workerID, "error", err)
	}
}
