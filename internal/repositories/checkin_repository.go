package repositories

import (
	"errors"
	"time"

	"shiftwork_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCodeNotFound        = errors.New("scannable code not found")
	ErrCodeAlreadyConsumed = errors.New("scannable code already consumed")
)

type CheckinRepository interface {
	// Records
	CreateRecord(db *gorm.DB, record *models.CheckinRecord) error
	FindLatestByApplication(db *gorm.DB, applicationID string) (*models.CheckinRecord, error)
	FindByApplication(db *gorm.DB, applicationID string) ([]models.CheckinRecord, error)
	// CountWorkerCheckinsSince counts valid check_in records across all
	// of a worker's applications since the given time. Used for the
	// on-time streak bonus.
	CountWorkerCheckinsSince(db *gorm.DB, workerID string, since time.Time) (int64, error)

	// Codes
	CreateCode(db *gorm.DB, code *models.ScannableCode) error
	FindCodeByID(db *gorm.DB, id string) (*models.ScannableCode, error)
	// ConsumeCode marks a single-use code consumed. The WHERE clause on
	// the unconsumed state makes this a compare-and-swap: with two
	// concurrent scans exactly one update matches a row.
	ConsumeCode(db *gorm.DB, codeID, checkinID string) error
	DeactivateCodesExpiredBefore(db *gorm.DB, cutoff time.Time) (int64, error)
}

type CheckinRepositoryImpl struct {
}

func NewCheckinRepository() CheckinRepository {
	return &CheckinRepositoryImpl{}
}

// ---------------- Records ----------------

func (r *CheckinRepositoryImpl) CreateRecord(db *gorm.DB, record *models.CheckinRecord) error {
	return db.Create(record).Error
}

func (r *CheckinRepositoryImpl) FindLatestByApplication(db *gorm.DB, applicationID string) (*models.CheckinRecord, error) {
	var record models.CheckinRecord
	err := db.Where("application_id = ? AND is_valid = ?", applicationID, true).
		Order("scanned_at DESC, id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CheckinRepositoryImpl) FindByApplication(db *gorm.DB, applicationID string) ([]models.CheckinRecord, error) {
	var records []models.CheckinRecord
	err := db.Where("application_id = ?", applicationID).
		Order("scanned_at ASC").
		Find(&records).Error
	return records, err
}

func (r *CheckinRepositoryImpl) CountWorkerCheckinsSince(db *gorm.DB, workerID string, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.CheckinRecord{}).
		Joins("JOIN job_applications ON job_applications.id = checkin_records.application_id").
		Where("job_applications.worker_id = ?", workerID).
		Where("checkin_records.type = ? AND checkin_records.is_valid = ?", models.CheckinTypeIn, true).
		Where("checkin_records.scanned_at >= ?", since).
		Count(&count).Error
	return count, err
}

// ---------------- Codes ----------------

func (r *CheckinRepositoryImpl) CreateCode(db *gorm.DB, code *models.ScannableCode) error {
	return db.Create(code).Error
}

func (r *CheckinRepositoryImpl) FindCodeByID(db *gorm.DB, id string) (*models.ScannableCode, error) {
	var code models.ScannableCode
	err := db.First(&code, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *CheckinRepositoryImpl) ConsumeCode(db *gorm.DB, codeID, checkinID string) error {
	result := db.Model(&models.ScannableCode{}).
		Where("id = ? AND consumed_by_checkin_id IS NULL", codeID).
		Update("consumed_by_checkin_id", checkinID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCodeAlreadyConsumed
	}
	return nil
}

func (r *CheckinRepositoryImpl) DeactivateCodesExpiredBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Model(&models.ScannableCode{}).
		Where("is_active = ? AND valid_until < ?", true, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
