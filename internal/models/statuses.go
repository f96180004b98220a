package models

type UserRole string
type WorkerStatus string
type JobStatus string
type ApplicationStatus string
type ScoreReason string
type FreezeReason string
type CheckinType string
type CodeKind string
type LanguageLevel string

const (
	UserRoleWorker UserRole = "worker"
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"

	WorkerStatusActive    WorkerStatus = "active"
	WorkerStatusSuspended WorkerStatus = "suspended"

	JobStatusDraft     JobStatus = "draft"
	JobStatusActive    JobStatus = "active"
	JobStatusClosed    JobStatus = "closed"
	JobStatusCancelled JobStatus = "cancelled"

	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
	ApplicationStatusCompleted ApplicationStatus = "completed"
)

// Scoring reasons. Each maps to a fixed delta in the algorithms package;
// the three cancellation tiers come out of ClassifyCancellation.
const (
	ScoreReasonNoShow          ScoreReason = "no_show"
	ScoreReasonLateCancel3h    ScoreReason = "late_cancel_3h"
	ScoreReasonLateCancel12h   ScoreReason = "late_cancel_12h"
	ScoreReasonLateCancel24h   ScoreReason = "late_cancel_24h"
	ScoreReasonLateCheckin     ScoreReason = "late_checkin"
	ScoreReasonEarlyCheckout   ScoreReason = "early_checkout"
	ScoreReasonOwnerComplaint  ScoreReason = "owner_complaint"
	ScoreReasonCompletion      ScoreReason = "completion"
	ScoreReasonExcellentReview ScoreReason = "excellent_review"
	ScoreReasonOnTimeStreak    ScoreReason = "on_time_streak"
	ScoreReasonRecovery        ScoreReason = "recovery"
	// ScoreReasonBanApplied is the compensating event forcing the score
	// to 0 when a no-show ban triggers.
	ScoreReasonBanApplied ScoreReason = "no_show_ban"
)

const (
	FreezeReasonNoShowBan FreezeReason = "no_show_ban"
	FreezeReasonPenalty   FreezeReason = "penalty_freeze"
	FreezeReasonManual    FreezeReason = "manual"
)

const (
	CheckinTypeIn  CheckinType = "check_in"
	CheckinTypeOut CheckinType = "check_out"
)

const (
	// CodeKindVenue: fixed code displayed at the venue, scanned by the worker.
	CodeKindVenue CodeKind = "venue"
	// CodeKindWorker: single-use code carried by the worker, scanned by the owner.
	CodeKindWorker CodeKind = "worker"
)

const (
	LanguageLevelA1 LanguageLevel = "A1"
	LanguageLevelA2 LanguageLevel = "A2"
	LanguageLevelB1 LanguageLevel = "B1"
	LanguageLevelB2 LanguageLevel = "B2"
	LanguageLevelC1 LanguageLevel = "C1"
	LanguageLevelC2 LanguageLevel = "C2"
)

var languageLevelRank = map[LanguageLevel]int{
	LanguageLevelA1: 1,
	LanguageLevelA2: 2,
	LanguageLevelB1: 3,
	LanguageLevelB2: 4,
	LanguageLevelC1: 5,
	LanguageLevelC2: 6,
}

// Rank returns the ordering of a CEFR level, 0 for unknown values.
func (l LanguageLevel) Rank() int {
	return languageLevelRank[l]
}

// AtLeast reports whether l meets or exceeds required.
func (l LanguageLevel) AtLeast(required LanguageLevel) bool {
	return l.Rank() >= required.Rank() && l.Rank() > 0
}

var validScoreReasons = map[ScoreReason]bool{
	ScoreReasonNoShow:          true,
	ScoreReasonLateCancel3h:    true,
	ScoreReasonLateCancel12h:   true,
	ScoreReasonLateCancel24h:   true,
	ScoreReasonLateCheckin:     true,
	ScoreReasonEarlyCheckout:   true,
	ScoreReasonOwnerComplaint:  true,
	ScoreReasonCompletion:      true,
	ScoreReasonExcellentReview: true,
	ScoreReasonOnTimeStreak:    true,
	ScoreReasonRecovery:        true,
	ScoreReasonBanApplied:      true,
}

func (r ScoreReason) IsValid() bool {
	return validScoreReasons[r]
}
