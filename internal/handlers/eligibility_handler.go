package handlers

import (
	"net/http"

	"shiftwork_backend/internal/middleware"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type EligibilityHandler struct {
	*BaseHandler
	eligibilityService services.EligibilityService
	applicationService services.ApplicationService
}

func NewEligibilityHandler(base *BaseHandler, eligibilityService services.EligibilityService, applicationService services.ApplicationService) *EligibilityHandler {
	return &EligibilityHandler{
		BaseHandler:        base,
		eligibilityService: eligibilityService,
		applicationService: applicationService,
	}
}

func (h *EligibilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleWorker))
	{
		jobs.GET("/:jobId/instant-book", h.CanInstantBook)
	}

	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleWorker))
	{
		applications.POST("/:applicationId/cancel", h.CancelApplication)
	}
}

func (h *EligibilityHandler) CanInstantBook(c *gin.Context) {
	jobID := c.Param("jobId")

	workerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	result, err := h.eligibilityService.CanInstantBook(db, workerID, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EligibilityHandler) CancelApplication(c *gin.Context) {
	applicationID := c.Param("applicationId")

	workerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	result, err := h.applicationService.CancelApplication(db, workerID, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
