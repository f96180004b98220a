package validator

import (
	"log"

	"shiftwork_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules installs the enum rules used by request DTOs.
// Empty values pass: 'required' handles presence separately.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-score-reason", validateScoreReason)
	mustRegister("is-checkin-type", validateCheckinType)
	mustRegister("is-language-level", validateLanguageLevel)
}

func validateScoreReason(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	reason := models.ScoreReason(value)
	// The ban event is ledger-internal and cannot be requested.
	return reason.IsValid() && reason != models.ScoreReasonBanApplied
}

func validateCheckinType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.CheckinType(value) {
	case models.CheckinTypeIn, models.CheckinTypeOut:
		return true
	default:
		return false
	}
}

func validateLanguageLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.LanguageLevel(value).Rank() > 0
}
