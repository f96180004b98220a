package algorithms

import (
	"time"

	"shiftwork_backend/internal/models"
)

// Score policy constants. Coarse, discrete tiers keep disputes
// predictable and auditable; every boundary is a named constant.
const (
	ScoreMin     = 0
	ScoreMax     = 100
	ScoreDefault = 100

	DeltaNoShow          = -20
	DeltaLateCancel3h    = -7
	DeltaLateCancel12h   = -5
	DeltaLateCancel24h   = -2
	DeltaLateCheckin     = -3
	DeltaEarlyCheckout   = -2
	DeltaOwnerComplaint  = -5
	DeltaCompletion      = +1
	DeltaExcellentReview = +2
	DeltaOnTimeStreak    = +3
	DeltaRecovery        = +1

	// Cancellation tier boundaries, in hours before shift start.
	CancelTier3h  = 3 * time.Hour
	CancelTier12h = 12 * time.Hour
	CancelTier24h = 24 * time.Hour

	// Recovery is only available below this score.
	RecoveryScoreCeiling = 90
)

var reasonDeltas = map[models.ScoreReason]int{
	models.ScoreReasonNoShow:          DeltaNoShow,
	models.ScoreReasonLateCancel3h:    DeltaLateCancel3h,
	models.ScoreReasonLateCancel12h:   DeltaLateCancel12h,
	models.ScoreReasonLateCancel24h:   DeltaLateCancel24h,
	models.ScoreReasonLateCheckin:     DeltaLateCheckin,
	models.ScoreReasonEarlyCheckout:   DeltaEarlyCheckout,
	models.ScoreReasonOwnerComplaint:  DeltaOwnerComplaint,
	models.ScoreReasonCompletion:      DeltaCompletion,
	models.ScoreReasonExcellentReview: DeltaExcellentReview,
	models.ScoreReasonOnTimeStreak:    DeltaOnTimeStreak,
	models.ScoreReasonRecovery:        DeltaRecovery,
}

// DeltaFor returns the fixed score delta for a reason.
// ScoreReasonBanApplied has no fixed delta (it compensates down to 0)
// and returns ok=false like unknown reasons.
func DeltaFor(reason models.ScoreReason) (int, bool) {
	delta, ok := reasonDeltas[reason]
	return delta, ok
}

// ClassifyCancellation maps a cancellation to its penalty tier by hours
// until shift start. A cancellation 24h or more ahead carries no
// penalty and no ledger event is written for it.
func ClassifyCancellation(shiftStart, now time.Time) (models.ScoreReason, bool) {
	until := shiftStart.Sub(now)

	switch {
	case until < CancelTier3h:
		return models.ScoreReasonLateCancel3h, true
	case until < CancelTier12h:
		return models.ScoreReasonLateCancel12h, true
	case until < CancelTier24h:
		return models.ScoreReasonLateCancel24h, true
	default:
		return "", false
	}
}

// ClassifyArrival decides whether a check-in scan is on time. Arrivals
// up to grace after shift start are on time; anything later is a
// LateCheckin penalty. Early arrivals are always on time.
func ClassifyArrival(shiftStart, scannedAt time.Time, grace time.Duration) (models.ScoreReason, bool) {
	if scannedAt.After(shiftStart.Add(grace)) {
		return models.ScoreReasonLateCheckin, true
	}
	return "", false
}

// ClampScore bounds a score to [ScoreMin, ScoreMax].
func ClampScore(score int) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}
