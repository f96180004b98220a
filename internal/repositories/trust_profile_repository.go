package repositories

import (
	"errors"
	"time"

	"shiftwork_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTrustProfileNotFound      = errors.New("trust profile not found")
	ErrTrustProfileAlreadyExists = errors.New("trust profile already exists for this worker")
	ErrScoreConflict             = errors.New("concurrent score update, read again and retry")
)

type TrustProfileRepository interface {
	CreateProfile(db *gorm.DB, profile *models.WorkerTrustProfile) error
	FindByWorkerID(db *gorm.DB, workerID string) (*models.WorkerTrustProfile, error)
	// CompareAndSwapScore updates the cached score only when it still
	// holds the value the caller read. With two concurrent appends for
	// the same worker at most one swap matches, so the loser fails
	// instead of double-applying its delta.
	CompareAndSwapScore(db *gorm.DB, workerID string, previousScore, newScore int) error
	SetFreeze(db *gorm.DB, workerID string, until *time.Time, reason models.FreezeReason) error
	ClearFreeze(db *gorm.DB, workerID string) error
}

type TrustProfileRepositoryImpl struct {
}

func NewTrustProfileRepository() TrustProfileRepository {
	return &TrustProfileRepositoryImpl{}
}

func (r *TrustProfileRepositoryImpl) CreateProfile(db *gorm.DB, profile *models.WorkerTrustProfile) error {
	var existing models.WorkerTrustProfile
	if err := db.Where("worker_id = ?", profile.WorkerID).First(&existing).Error; err == nil {
		return ErrTrustProfileAlreadyExists
	}
	if profile.ReliabilityScore == 0 {
		profile.ReliabilityScore = 100
	}
	return db.Create(profile).Error
}

func (r *TrustProfileRepositoryImpl) FindByWorkerID(db *gorm.DB, workerID string) (*models.WorkerTrustProfile, error) {
	var profile models.WorkerTrustProfile
	err := db.Where("worker_id = ?", workerID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrustProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *TrustProfileRepositoryImpl) CompareAndSwapScore(db *gorm.DB, workerID string, previousScore, newScore int) error {
	result := db.Model(&models.WorkerTrustProfile{}).
		Where("worker_id = ? AND reliability_score = ?", workerID, previousScore).
		Update("reliability_score", newScore)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScoreConflict
	}
	return nil
}

func (r *TrustProfileRepositoryImpl) SetFreeze(db *gorm.DB, workerID string, until *time.Time, reason models.FreezeReason) error {
	result := db.Model(&models.WorkerTrustProfile{}).
		Where("worker_id = ?", workerID).
		Updates(map[string]interface{}{
			"is_frozen":     true,
			"freeze_until":  until,
			"freeze_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTrustProfileNotFound
	}
	return nil
}

func (r *TrustProfileRepositoryImpl) ClearFreeze(db *gorm.DB, workerID string) error {
	result := db.Model(&models.WorkerTrustProfile{}).
		Where("worker_id = ?", workerID).
		Updates(map[string]interface{}{
			"is_frozen":     false,
			"freeze_until":  nil,
			"freeze_reason": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTrustProfileNotFound
	}
	return nil
}
