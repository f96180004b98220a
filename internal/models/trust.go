package models

import "time"

// WorkerTrustProfile is the cached projection of the worker's score
// ledger plus the current freeze state. It is mutated exclusively by
// the score and freeze services, transactionally with the event log,
// and never hard-deleted.
type WorkerTrustProfile struct {
	BaseModel
	WorkerID         string `gorm:"uniqueIndex;not null"`
	ReliabilityScore int    `gorm:"not null;default:100"`
	IsFrozen         bool   `gorm:"not null;default:false"`
	// FreezeUntil nil while IsFrozen means a permanent ban.
	FreezeUntil  *time.Time
	FreezeReason *FreezeReason `gorm:"type:varchar(32)"`
}

// ScoreEvent is one row of the append-only score ledger.
// Invariant: NewScore = clamp(PreviousScore + ScoreDelta, 0, 100).
// Rows are never updated or deleted; corrections are written as new
// compensating events.
type ScoreEvent struct {
	BaseModel
	WorkerID             string      `gorm:"not null;index:idx_score_events_worker_created"`
	Reason               ScoreReason `gorm:"type:varchar(32);not null;index"`
	ScoreDelta           int         `gorm:"not null"`
	PreviousScore        int         `gorm:"not null"`
	NewScore             int         `gorm:"not null"`
	RelatedJobID         *string     `gorm:"index"`
	RelatedApplicationID *string     `gorm:"index"`
}
