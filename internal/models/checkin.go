package models

import "time"

// ScannableCode backs both check-in flows: a venue-fixed code the
// worker scans (SubjectID = job id) and a worker-carried code the owner
// scans (SubjectID = application id). One model, one validation path.
type ScannableCode struct {
	BaseModel
	Kind       CodeKind  `gorm:"type:varchar(10);not null"`
	SubjectID  string    `gorm:"not null;index"`
	ValidFrom  time.Time `gorm:"not null"`
	ValidUntil time.Time `gorm:"not null"`
	IsActive   bool      `gorm:"not null;default:true"`
	SingleUse  bool      `gorm:"not null;default:false"`
	// ConsumedByCheckinID is set at most once, via a compare-and-swap
	// update, so concurrent scans of a single-use code cannot both win.
	ConsumedByCheckinID *string
}

// CheckinRecord is one validated scan. Records are immutable; for a
// given application check_in and check_out strictly alternate.
type CheckinRecord struct {
	BaseModel
	ApplicationID string      `gorm:"not null;index:idx_checkins_application_scanned"`
	Type          CheckinType `gorm:"type:varchar(10);not null"`
	ScannedAt     time.Time   `gorm:"not null"`
	Lat           *float64
	Lng           *float64
	// DistanceFromVenueMeters is nil when either side of the geofence
	// check had no coordinates; the record is then lower-confidence,
	// not invalid.
	DistanceFromVenueMeters *float64
	IsValid                 bool   `gorm:"not null;default:true"`
	SourceCodeID            string `gorm:"not null;index"`
}
