package services

import (
	"shiftwork_backend/internal/algorithms"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type EligibilityService interface {
	// CanInstantBook evaluates the instant-book predicates for a worker
	// against a job. Soft gate: a non-qualifying result carries the
	// blocking reasons, it is not an error.
	CanInstantBook(db *gorm.DB, workerID, jobID string) (*algorithms.EligibilityResult, error)
}

type eligibilityService struct {
	profileRepo   repositories.TrustProfileRepository
	jobRepo       repositories.JobRepository
	freezeService FreezeService
}

func NewEligibilityService(
	profileRepo repositories.TrustProfileRepository,
	jobRepo repositories.JobRepository,
	freezeService FreezeService,
) EligibilityService {
	return &eligibilityService{
		profileRepo:   profileRepo,
		jobRepo:       jobRepo,
		freezeService: freezeService,
	}
}

func (s *eligibilityService) CanInstantBook(db *gorm.DB, workerID, jobID string) (*algorithms.EligibilityResult, error) {
	// Freeze status first: this clears an elapsed freeze window before
	// the profile is read, so an expired freeze never blocks a booking.
	if _, err := s.freezeService.GetFreezeStatus(db, workerID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByWorkerID(db, workerID)
	if err != nil {
		if err == repositories.ErrTrustProfileNotFound {
			return nil, apperrors.ErrTrustProfileNotFound
		}
		return nil, apperrors.PersistenceError(err)
	}

	worker, err := s.jobRepo.FindWorkerByID(db, workerID)
	if err != nil {
		if err == repositories.ErrWorkerNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	job, err := s.jobRepo.FindJobByID(db, jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	certs, err := s.jobRepo.FindLanguageCertificates(db, workerID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	result := algorithms.EvaluateEligibility(profile, worker, certs, job)
	return &result, nil
}
