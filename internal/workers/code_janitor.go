package workers

import (
	"context"
	"time"

	"shiftwork_backend/internal/logger"
	"shiftwork_backend/internal/repositories"

	"gorm.io/gorm"
)

// CodeJanitor deactivates scannable codes whose validity window passed
// long ago. Housekeeping only: expired codes are already rejected on
// scan by the window check, this just keeps the table tidy.
type CodeJanitor struct {
	db          *gorm.DB
	checkinRepo repositories.CheckinRepository
}

func NewCodeJanitor(db *gorm.DB, checkinRepo repositories.CheckinRepository) *CodeJanitor {
	return &CodeJanitor{db: db, checkinRepo: checkinRepo}
}

// Start launches the background sweep.
func (w *CodeJanitor) Start(ctx context.Context) {
	go w.sweepExpiredCodes(ctx)
}

func (w *CodeJanitor) sweepExpiredCodes(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Code janitor stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-24 * time.Hour)
			count, err := w.checkinRepo.DeactivateCodesExpiredBefore(w.db, cutoff)
			if err != nil {
				logger.Error("Error deactivating expired codes", "error", err)
			} else if count > 0 {
				logger.Info("Deactivated expired scannable codes", "count", count)
			}
		}
	}
}
