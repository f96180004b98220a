package handlers

import (
	"net/http"

	"shiftwork_backend/internal/middleware"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CheckinHandler struct {
	*BaseHandler
	checkinService services.CheckinService
}

func NewCheckinHandler(base *BaseHandler, checkinService services.CheckinService) *CheckinHandler {
	return &CheckinHandler{
		BaseHandler:    base,
		checkinService: checkinService,
	}
}

func (h *CheckinHandler) RegisterRoutes(r *gin.RouterGroup) {
	checkins := r.Group("/checkins")
	checkins.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleWorker, models.UserRoleOwner))
	{
		checkins.POST("/scan", h.ValidateScan)
	}

	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleOwner))
	{
		jobs.POST("/:jobId/checkin-code", h.IssueVenueCode)
	}

	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleWorker))
	{
		applications.POST("/:applicationId/checkin-code", h.IssueWorkerCode)
	}

	// Both sides of a shift can review its scans.
	records := r.Group("/applications")
	records.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleWorker, models.UserRoleOwner))
	{
		records.GET("/:applicationId/checkins", h.GetCheckinHistory)
	}
}

// --- DTOs ---

type ScanRequest struct {
	Payload string   `json:"payload" binding:"required" validate:"required"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	// Type is optional; when omitted the scan toggles between check_in
	// and check_out.
	Type *string `json:"type,omitempty" validate:"omitempty,is-checkin-type"`
}

// --- Handlers ---

func (h *CheckinHandler) ValidateScan(c *gin.Context) {
	var req ScanRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	scanner := services.ScannerContext{
		ActorID: actorID,
		Role:    middleware.GetRole(c),
		Lat:     req.Lat,
		Lng:     req.Lng,
	}
	if req.Type != nil {
		intent := models.CheckinType(*req.Type)
		scanner.Intent = &intent
	}

	db := h.GetDB(c)
	outcome, err := h.checkinService.ValidateScan(db, req.Payload, scanner)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *CheckinHandler) IssueVenueCode(c *gin.Context) {
	jobID := c.Param("jobId")

	ownerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	code, err := h.checkinService.IssueVenueCode(db, ownerID, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, code)
}

func (h *CheckinHandler) GetCheckinHistory(c *gin.Context) {
	applicationID := c.Param("applicationId")

	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	history, err := h.checkinService.GetCheckinHistory(db, actorID, middleware.GetRole(c), applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkins": history})
}

func (h *CheckinHandler) IssueWorkerCode(c *gin.Context) {
	applicationID := c.Param("applicationId")

	workerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	code, err := h.checkinService.IssueWorkerCode(db, workerID, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, code)
}
