package repositories

import (
	"time"

	"shiftwork_backend/internal/models"

	"gorm.io/gorm"
)

type ScoreEventRepository interface {
	// Append writes one ledger row. The ledger is append-only: there is
	// deliberately no update or delete on this interface.
	Append(db *gorm.DB, event *models.ScoreEvent) error

	FindByWorker(db *gorm.DB, workerID string, limit int) ([]models.ScoreEvent, error)
	CountByReasonSince(db *gorm.DB, workerID string, reason models.ScoreReason, since time.Time) (int64, error)
	// FindLatestByReasons returns the most recent event among the given
	// reasons, or nil when the worker has none.
	FindLatestByReasons(db *gorm.DB, workerID string, reasons []models.ScoreReason) (*models.ScoreEvent, error)
	ExistsPenaltySince(db *gorm.DB, workerID string, since time.Time) (bool, error)
}

type ScoreEventRepositoryImpl struct {
}

func NewScoreEventRepository() ScoreEventRepository {
	return &ScoreEventRepositoryImpl{}
}

func (r *ScoreEventRepositoryImpl) Append(db *gorm.DB, event *models.ScoreEvent) error {
	return db.Create(event).Error
}

func (r *ScoreEventRepositoryImpl) FindByWorker(db *gorm.DB, workerID string, limit int) ([]models.ScoreEvent, error) {
	var events []models.ScoreEvent
	query := db.Where("worker_id = ?", workerID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

func (r *ScoreEventRepositoryImpl) CountByReasonSince(db *gorm.DB, workerID string, reason models.ScoreReason, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.ScoreEvent{}).
		Where("worker_id = ? AND reason = ? AND created_at >= ?", workerID, reason, since).
		Count(&count).Error
	return count, err
}

func (r *ScoreEventRepositoryImpl) FindLatestByReasons(db *gorm.DB, workerID string, reasons []models.ScoreReason) (*models.ScoreEvent, error) {
	var event models.ScoreEvent
	err := db.Where("worker_id = ? AND reason IN ?", workerID, reasons).
		Order("created_at DESC, id DESC").
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *ScoreEventRepositoryImpl) ExistsPenaltySince(db *gorm.DB, workerID string, since time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.ScoreEvent{}).
		Where("worker_id = ? AND score_delta < 0 AND created_at >= ?", workerID, since).
		Count(&count).Error
	return count > 0, err
}
