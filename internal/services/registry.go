package services

// ServiceContainer holds all application services.
type ServiceContainer struct {
	ScoreService        ScoreService
	FreezeService       FreezeService
	CheckinService      CheckinService
	EligibilityService  EligibilityService
	ApplicationService  ApplicationService
	NotificationService NotificationService
}
