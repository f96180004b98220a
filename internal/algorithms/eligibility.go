package algorithms

import (
	"fmt"

	"shiftwork_backend/internal/models"
)

// EligibilityResult is derived on demand, never persisted.
type EligibilityResult struct {
	QualifiesInstantBook bool     `json:"qualifies_instant_book"`
	BlockingReasons      []string `json:"blocking_reasons"`
}

// EvaluateEligibility decides whether a worker may instant-book a job.
// Every unmet predicate appends a human-facing reason instead of
// failing outright: a non-qualifying worker can still submit a
// request-to-book application, so this is a soft gate.
func EvaluateEligibility(
	profile *models.WorkerTrustProfile,
	worker *models.Worker,
	certs []models.LanguageCertificate,
	job *models.Job,
) EligibilityResult {
	reasons := []string{}

	if profile.IsFrozen {
		reasons = append(reasons, "Account is frozen")
	}

	if profile.ReliabilityScore < job.MinReliabilityScore {
		reasons = append(reasons, fmt.Sprintf(
			"Reliability score %d is below the job minimum of %d",
			profile.ReliabilityScore, job.MinReliabilityScore,
		))
	}

	if job.RequiresVerification && !worker.IsIdentityVerified {
		reasons = append(reasons, "Identity verification is required for this job")
	}

	if job.RequiredLanguage != "" {
		if !holdsLanguageLevel(certs, job.RequiredLanguage, job.RequiredLanguageLevel) {
			reasons = append(reasons, fmt.Sprintf(
				"A %s certificate at level %s or above is required",
				job.RequiredLanguage, job.RequiredLanguageLevel,
			))
		}
	}

	return EligibilityResult{
		QualifiesInstantBook: len(reasons) == 0,
		BlockingReasons:      reasons,
	}
}

func holdsLanguageLevel(certs []models.LanguageCertificate, language string, required models.LanguageLevel) bool {
	for _, cert := range certs {
		if cert.Language != language {
			continue
		}
		if required == "" || cert.Level.AtLeast(required) {
			return true
		}
	}
	return false
}
