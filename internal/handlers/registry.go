package handlers

// AppHandlers holds all HTTP handlers.
type AppHandlers struct {
	TrustHandler        *TrustHandler
	CheckinHandler      *CheckinHandler
	EligibilityHandler  *EligibilityHandler
	NotificationHandler *NotificationHandler
}
