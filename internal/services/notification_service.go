package services

import (
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// NotificationService reads back the notifications the trust flows write
// fire-and-forget (freeze transitions, check-in outcomes, score drops).
type NotificationService interface {
	ListForUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListForUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.FindByUser(db, userID, limit)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return notifications, nil
}
