package apperrors

import (
	"net/http"
)

/*
Predefined errors for the trust & eligibility domain.

The split into error domains is deliberate: a scan failing because the
code expired ("validation") must be messaged differently from a scan
failing because the job belongs to another owner ("authorization"), and
neither is retryable the way a storage failure ("persistence") is.
*/

// ---------------- Factories ----------------

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound) into
// an AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ---------------- Check-in code validation ----------------

// ErrMalformedCode - payload did not decode to a signed code token.
var ErrMalformedCode = New(
	CodeMalformedCode,
	"validation",
	"Scanned code could not be decoded",
	http.StatusBadRequest,
)

// ErrCodeNotFound - decoded code id has no stored ScannableCode.
var ErrCodeNotFound = New(
	CodeNotFound,
	"validation",
	"Scanned code is not registered",
	http.StatusNotFound,
)

// ErrCodeExpired - now is outside [valid_from, valid_until].
var ErrCodeExpired = New(
	CodeCodeExpired,
	"validation",
	"Scanned code is outside its validity window",
	http.StatusConflict,
)

// ErrCodeInactive - code was deactivated.
var ErrCodeInactive = New(
	CodeCodeInactive,
	"validation",
	"Scanned code has been deactivated",
	http.StatusConflict,
)

// ErrCodeAlreadyUsed - single-use code already consumed by a check-in.
var ErrCodeAlreadyUsed = New(
	CodeCodeConsumed,
	"validation",
	"Scanned code has already been used",
	http.StatusConflict,
)

// ErrTooFarFromVenue - geofence radius exceeded.
var ErrTooFarFromVenue = New(
	CodeGeofence,
	"validation",
	"Scan location is too far from the venue",
	http.StatusConflict,
)

// ---------------- Check-in authorization ----------------

// ErrNoMatchingApplication - the scanning party has no approved
// application for this job.
var ErrNoMatchingApplication = New(
	CodeForbidden,
	"authorization",
	"No matching application for this job",
	http.StatusForbidden,
)

// ErrWrongOwner - owner-initiated scan against a job they do not own.
var ErrWrongOwner = New(
	CodeForbidden,
	"authorization",
	"Job does not belong to the scanning owner",
	http.StatusForbidden,
)

// ErrApplicationNotApproved - application exists but is not approved.
var ErrApplicationNotApproved = New(
	CodeInvalidStatus,
	"authorization",
	"Application is not approved",
	http.StatusForbidden,
)

// ---------------- State errors ----------------

// ErrTrustProfileNotFound - no trust profile exists for the worker.
var ErrTrustProfileNotFound = New(
	CodeMissingState,
	"state",
	"Worker has no trust profile",
	http.StatusNotFound,
)

// ErrCheckoutWithoutCheckin - check-out scan with no prior unconsumed
// check-in on the application.
var ErrCheckoutWithoutCheckin = New(
	CodeMissingState,
	"state",
	"Cannot check out without a prior check-in",
	http.StatusConflict,
)

// ---------------- Trust state ----------------

// ErrWorkerFrozen - operation not available while the worker is frozen.
var ErrWorkerFrozen = New(
	CodeWorkerFrozen,
	"trust",
	"Worker account is frozen",
	http.StatusForbidden,
)

// ErrInvalidScoreReason - unknown scoring reason.
var ErrInvalidScoreReason = New(
	CodeValidationFailed,
	"validation",
	"Unknown score reason",
	http.StatusBadRequest,
)
