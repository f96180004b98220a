package app

import (
	"context"
	"fmt"

	"shiftwork_backend/database"
	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/handlers"
	"shiftwork_backend/internal/logger"
	"shiftwork_backend/internal/middleware"
	"shiftwork_backend/internal/repositories"
	"shiftwork_backend/internal/routes"
	"shiftwork_backend/internal/services"
	"shiftwork_backend/internal/validator"
	"shiftwork_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter := SetupRouter(gormDB)

	janitor := workers.NewCodeJanitor(gormDB, repositories.NewCheckinRepository())
	janitor.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the fully wired gin engine. Tests call this with
// their own database handle.
func SetupRouter(gormDB *gorm.DB) *gin.Engine {
	serviceContainer := InitializeServices()
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

// InitializeServices wires repositories into the service container.
// Repositories are stateless; the database handle travels per call.
func InitializeServices() *services.ServiceContainer {
	profileRepo := repositories.NewTrustProfileRepository()
	eventRepo := repositories.NewScoreEventRepository()
	checkinRepo := repositories.NewCheckinRepository()
	jobRepo := repositories.NewJobRepository()
	notificationRepo := repositories.NewNotificationRepository()

	freezeService := services.NewFreezeService(profileRepo, eventRepo, notificationRepo)
	scoreService := services.NewScoreService(profileRepo, eventRepo, notificationRepo, freezeService)
	checkinService := services.NewCheckinService(checkinRepo, jobRepo, eventRepo, notificationRepo, scoreService)
	eligibilityService := services.NewEligibilityService(profileRepo, jobRepo, freezeService)
	applicationService := services.NewApplicationService(jobRepo, scoreService)
	notificationService := services.NewNotificationService(notificationRepo)

	return &services.ServiceContainer{
		ScoreService:        scoreService,
		FreezeService:       freezeService,
		CheckinService:      checkinService,
		EligibilityService:  eligibilityService,
		ApplicationService:  applicationService,
		NotificationService: notificationService,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		TrustHandler:        handlers.NewTrustHandler(baseHandler, container.ScoreService, container.FreezeService),
		CheckinHandler:      handlers.NewCheckinHandler(baseHandler, container.CheckinService),
		EligibilityHandler:  handlers.NewEligibilityHandler(baseHandler, container.EligibilityService, container.ApplicationService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
