package maintenance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/server"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	mg := rg.Group("/maintenance")
	{
		mg.POST("", h.create)
		mg.GET("", h.list)
		mg.GET("/:id", h.get)
		mg.PUT("/:id/status", h.updateStatus)
	}
}

type createRequest struct {
	VehicleID   string     `json:"vehicleId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Workshop    string     `json:"workshop"`
	Cost        string     `json:"cost"`
	PlannedDate *time.Time `json:"plannedDate"`
	StartNow    bool       `json:"startNow"`
}

func (h *Handler) create(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), CreateInput{
		VehicleID:   req.VehicleID,
		CreatedBy:   ai.Subject,
		Title:       req.Title,
		Description: req.Description,
		Workshop:    req.Workshop,
		Cost:        req.Cost,
		PlannedDate: req.PlannedDate,
		StartNow:    req.StartNow,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), Status(req.Status))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) list(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tasks, total, err := h.svc.List(c.Request.Context(),
		c.Query("vehicleId"), Status(c.Query("status")), offset, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tasks, "total": total})
}
