package repositories

import (
	"errors"

	"shiftwork_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrWorkerNotFound      = errors.New("worker not found")
)

type JobRepository interface {
	FindJobByID(db *gorm.DB, id string) (*models.Job, error)
	FindApplicationByID(db *gorm.DB, id string) (*models.JobApplication, error)
	// FindApplicationByJobAndWorker resolves the scanning worker's own
	// application when a venue-fixed code is scanned.
	FindApplicationByJobAndWorker(db *gorm.DB, jobID, workerID string) (*models.JobApplication, error)
	UpdateApplicationStatus(db *gorm.DB, applicationID string, status models.ApplicationStatus) error

	FindWorkerByID(db *gorm.DB, id string) (*models.Worker, error)
	FindLanguageCertificates(db *gorm.DB, workerID string) ([]models.LanguageCertificate, error)
}

type JobRepositoryImpl struct {
}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

func (r *JobRepositoryImpl) FindJobByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	err := db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindApplicationByID(db *gorm.DB, id string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := db.Preload("Job").First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *JobRepositoryImpl) FindApplicationByJobAndWorker(db *gorm.DB, jobID, workerID string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := db.Preload("Job").
		Where("job_id = ? AND worker_id = ?", jobID, workerID).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *JobRepositoryImpl) UpdateApplicationStatus(db *gorm.DB, applicationID string, status models.ApplicationStatus) error {
	result := db.Model(&models.JobApplication{}).
		Where("id = ?", applicationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) FindWorkerByID(db *gorm.DB, id string) (*models.Worker, error) {
	var worker models.Worker
	err := db.Preload("LanguageCertificates").First(&worker, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &worker, nil
}

func (r *JobRepositoryImpl) FindLanguageCertificates(db *gorm.DB, workerID string) ([]models.LanguageCertificate, error) {
	var certs []models.LanguageCertificate
	err := db.Where("worker_id = ?", workerID).Find(&certs).Error
	return certs, err
}
