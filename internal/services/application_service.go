package services

import (
	"time"

	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ApplicationService covers the one application transition the trust
// engine owns: worker-initiated cancellation, which feeds the penalty
// tiers. All other application lifecycle is external.
type ApplicationService interface {
	CancelApplication(db *gorm.DB, workerID, applicationID string) (*CancellationResult, error)
}

type applicationService struct {
	jobRepo      repositories.JobRepository
	scoreService ScoreService
}

func NewApplicationService(jobRepo repositories.JobRepository, scoreService ScoreService) ApplicationService {
	return &applicationService{jobRepo: jobRepo, scoreService: scoreService}
}

func (s *applicationService) CancelApplication(db *gorm.DB, workerID, applicationID string) (*CancellationResult, error) {
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

	switch application.Status {
	case models.ApplicationStatusPending:
		// Never a committed shift, so cancelling is penalty-free.
		if err := s.jobRepo.UpdateApplicationStatus(db, applicationID, models.ApplicationStatusCancelled); err != nil {
			return nil, apperrors.PersistenceError(err)
		}
		return &CancellationResult{Penalized: false}, nil

	case models.ApplicationStatusApproved:
		job := application.Job
		if job == nil {
			job, err = s.jobRepo.FindJobByID(db, application.JobID)
			if err != nil {
				return nil, apperrors.PersistenceError(err)
			}
		}

		if err := s.jobRepo.UpdateApplicationStatus(db, applicationID, models.ApplicationStatusCancelled); err != nil {
			return nil, apperrors.PersistenceError(err)
		}

		// The ledger event and projection update are atomic inside
		// ApplyCancellation; the status flip above is a separate
		// aggregate and is already visible either way.
		scoreCtx := ScoreContext{JobID: &application.JobID, ApplicationID: &application.ID}
		return s.scoreService.ApplyCancellation(db, workerID, job.ShiftStart, time.Now(), scoreCtx)

	default:
		return nil, apperrors.ErrInvalidOperation("application",
			"Only pending or approved applications can be cancelled")
	}
}
