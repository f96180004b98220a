package repositories

import (
	"encoding/json"

	"shiftwork_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	// CreateTrustNotification builds and stores a trust-domain
	// notification. Callers fire these from goroutines and never wait
	// on the result.
	CreateTrustNotification(db *gorm.DB, userID, notifType, title, message string, data map[string]interface{}) error
	FindByUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error)
}

type NotificationRepositoryImpl struct {
}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) CreateTrustNotification(db *gorm.DB, userID, notifType, title, message string, data map[string]interface{}) error {
	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = raw
	}

	return r.Create(db, &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    payload,
	})
}

func (r *NotificationRepositoryImpl) FindByUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}
