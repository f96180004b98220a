package models

import "time"

// Worker is the read-model of a registered worker. Registration and
// profile editing live outside this service; the trust engine only
// reads identity, verification flags and language credentials.
type Worker struct {
	BaseModel
	Name               string       `gorm:"not null"`
	Email              string       `gorm:"uniqueIndex;not null"`
	Status             WorkerStatus `gorm:"type:varchar(20);default:'active'"`
	IsIdentityVerified bool         `gorm:"default:false"`

	// Relations
	TrustProfile         *WorkerTrustProfile   `gorm:"foreignKey:WorkerID"`
	LanguageCertificates []LanguageCertificate `gorm:"foreignKey:WorkerID"`
}

// LanguageCertificate is a verified language credential held by a
// worker, matched against a job's language requirement.
type LanguageCertificate struct {
	BaseModel
	WorkerID   string        `gorm:"not null;index"`
	Language   string        `gorm:"type:varchar(8);not null"` // ISO 639-1 code
	Level      LanguageLevel `gorm:"type:varchar(4);not null"`
	VerifiedAt *time.Time
}
