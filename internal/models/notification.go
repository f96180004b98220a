package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification rows are written fire-and-forget after freeze
// transitions and check-in outcomes. Delivery is a separate concern and
// never awaited for correctness.
type Notification struct {
	BaseModel
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"not null"` // "score_changed", "worker_frozen", "worker_banned", "checkin_recorded"
	Title   string `gorm:"not null"`
	Message string
	Data    datatypes.JSON `gorm:"type:jsonb"` // {"job_id": "...", "new_score": 80}
	IsRead  bool           `gorm:"default:false"`
	ReadAt  *time.Time
}
