package models

import "time"

// Job is the read-model of a posted shift. Posting CRUD is external;
// the trust engine reads shift timing, venue coordinates and the
// instant-book requirements.
type Job struct {
	BaseModel
	OwnerID    string    `gorm:"not null;index"`
	Title      string    `gorm:"not null"`
	Status     JobStatus `gorm:"type:varchar(20);default:'active'"`
	ShiftStart time.Time `gorm:"not null;index"`
	ShiftEnd   time.Time `gorm:"not null"`

	// Venue coordinates; nil when the venue has no registered geolocation.
	VenueLat *float64
	VenueLng *float64

	// Instant-book requirements
	MinReliabilityScore   int           `gorm:"default:0"`
	RequiresVerification  bool          `gorm:"default:false"`
	RequiredLanguage      string        `gorm:"type:varchar(8)"`
	RequiredLanguageLevel LanguageLevel `gorm:"type:varchar(4)"`
}

// JobApplication links a worker to a shift. Scans are only honored for
// approved applications.
type JobApplication struct {
	BaseModel
	JobID    string            `gorm:"not null;index:idx_applications_job_worker"`
	WorkerID string            `gorm:"not null;index:idx_applications_job_worker"`
	Status   ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`

	// Relations
	Job    *Job    `gorm:"foreignKey:JobID"`
	Worker *Worker `gorm:"foreignKey:WorkerID"`
}
