package handlers

import (
	"net/http"

	"shiftwork_backend/internal/middleware"
	"shiftwork_backend/internal/models"
	"shiftwork_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TrustHandler struct {
	*BaseHandler
	scoreService  services.ScoreService
	freezeService services.FreezeService
}

func NewTrustHandler(base *BaseHandler, scoreService services.ScoreService, freezeService services.FreezeService) *TrustHandler {
	return &TrustHandler{
		BaseHandler:   base,
		scoreService:  scoreService,
		freezeService: freezeService,
	}
}

func (h *TrustHandler) RegisterRoutes(r *gin.RouterGroup) {
	trust := r.Group("/trust")
	trust.Use(middleware.AuthMiddleware())
	{
		// Owners report shift outcomes; admins can apply any reason.
		trust.POST("/penalties",
			middleware.RequireRoles(models.UserRoleOwner, models.UserRoleAdmin),
			h.ApplyPenalty)

		trust.GET("/workers/:workerId/freeze-status", h.GetFreezeStatus)
		trust.GET("/workers/:workerId/score-history", h.GetScoreHistory)
	}

	admin := r.Group("/admin/trust")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("/workers", h.CreateProfile)
		admin.POST("/workers/:workerId/freeze", h.FreezeWorker)
	}
}

// --- DTOs ---

type ApplyPenaltyRequest struct {
	WorkerID      string  `json:"worker_id" binding:"required" validate:"required,uuid"`
	Reason        string  `json:"reason" binding:"required" validate:"required,is-score-reason"`
	JobID         *string `json:"job_id,omitempty" validate:"omitempty,uuid"`
	ApplicationID *string `json:"application_id,omitempty" validate:"omitempty,uuid"`
}

type CreateProfileRequest struct {
	WorkerID string `json:"worker_id" binding:"required" validate:"required,uuid"`
}

type FreezeWorkerRequest struct {
	Days   int    `json:"days" validate:"omitempty,min=1,max=365"`
	Reason string `json:"reason" validate:"omitempty,oneof=penalty_freeze manual"`
}

// --- Handlers ---

func (h *TrustHandler) ApplyPenalty(c *gin.Context) {
	var req ApplyPenaltyRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	newScore, err := h.scoreService.ApplyPenalty(db, req.WorkerID, models.ScoreReason(req.Reason), services.ScoreContext{
		JobID:         req.JobID,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"worker_id": req.WorkerID,
		"reason":    req.Reason,
		"new_score": newScore,
	})
}

func (h *TrustHandler) GetFreezeStatus(c *gin.Context) {
	workerID := c.Param("workerId")

	db := h.GetDB(c)
	status, err := h.freezeService.GetFreezeStatus(db, workerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *TrustHandler) GetScoreHistory(c *gin.Context) {
	workerID := c.Param("workerId")
	limit := ParseQueryInt(c, "limit", 50)

	db := h.GetDB(c)
	events, err := h.scoreService.GetScoreHistory(db, workerID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"worker_id": workerID,
		"events":    events,
	})
}

func (h *TrustHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	profile, err := h.scoreService.CreateProfile(db, req.WorkerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *TrustHandler) FreezeWorker(c *gin.Context) {
	workerID := c.Param("workerId")

	var req FreezeWorkerRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	reason := models.FreezeReason(req.Reason)
	if reason == "" {
		reason = models.FreezeReasonManual
	}

	db := h.GetDB(c)
	if err := h.freezeService.FreezeWorker(db, workerID, req.Days, reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker_id": workerID, "frozen": true})
}
