package apperrors

// ErrorCode identifies an error class in API responses.
type ErrorCode string

const (
	// System errors
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodePersistenceError     ErrorCode = "PERSISTENCE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business-logic codes
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Auth
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Check-in code validation
	CodeMalformedCode ErrorCode = "MALFORMED_CODE"
	CodeCodeExpired   ErrorCode = "CODE_EXPIRED"
	CodeCodeInactive  ErrorCode = "CODE_INACTIVE"
	CodeCodeConsumed  ErrorCode = "CODE_ALREADY_USED"
	CodeGeofence      ErrorCode = "TOO_FAR_FROM_VENUE"

	// Trust state
	CodeWorkerFrozen ErrorCode = "WORKER_FROZEN"
	CodeMissingState ErrorCode = "MISSING_STATE"
)
