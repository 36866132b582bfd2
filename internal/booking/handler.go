package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/server"
	"github.com/FleetShare/FleetShare/internal/user"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bg := rg.Group("/bookings")
	{
		bg.POST("", h.create)
		bg.GET("", h.list)
		bg.GET("/my", h.listMine)
		bg.GET("/availability", h.availability)
		bg.GET("/:id", h.get)
		bg.POST("/:id/approve", h.approve)
		bg.POST("/:id/reject", h.reject)
		bg.POST("/:id/cancel", h.cancel)
		bg.POST("/:id/checkout", h.checkout)
		bg.POST("/:id/checkin", h.checkin)
	}
}

type createRequest struct {
	VehicleID      string    `json:"vehicleId" binding:"required"`
	StartTime      time.Time `json:"startTime" binding:"required"`
	EndTime        time.Time `json:"endTime" binding:"required"`
	PickupLocation string    `json:"pickupLocation"`
	ReturnLocation string    `json:"returnLocation"`
	Purpose        string    `json:"purpose"`
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

	b, err := h.svc.Create(c.Request.Context(), CreateInput{
		UserID:         ai.Subject,
		UserRole:       primaryRole(ai),
		VehicleID:      req.VehicleID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		Purpose:        req.Purpose,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) list(c *gin.Context) {
	offset, limit := pagination(c)
	bookings, total, err := h.svc.List(c.Request.Context(), ListFilter{
		UserID:    c.Query("userId"),
		VehicleID: c.Query("vehicleId"),
		Status:    Status(c.Query("status")),
	}, offset, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bookings, "total": total})
}

func (h *Handler) listMine(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	offset, limit := pagination(c)
	bookings, total, err := h.svc.List(c.Request.Context(), ListFilter{
		UserID: ai.Subject,
		Status: Status(c.Query("status")),
	}, offset, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bookings, "total": total})
}

func (h *Handler) availability(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
		return
	}

	bookings, err := h.svc.Availability(c.Request.Context(), c.Query("vehicleId"), start, end)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": len(bookings) == 0, "conflicts": bookings})
}

func (h *Handler) approve(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	b, err := h.svc.Approve(c.Request.Context(), c.Param("id"), ai.Subject)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.svc.Reject(c.Request.Context(), c.Param("id"), ai.Subject, req.Reason)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) cancel(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), ai.Subject, req.Reason)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

type checkoutRequest struct {
	// 不传时取车辆当前里程，传 0 表示真实的零读数
	StartMileage   *int64   `json:"startMileage"`
	StartFuelLevel float64  `json:"startFuelLevel"`
	PrePhotoRefs   []string `json:"prePhotoRefs"`
	Comment        string   `json:"comment"`
}

func (h *Handler) checkout(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.svc.Checkout(c.Request.Context(), c.Param("id"), CheckoutInput{
		RequesterID:    ai.Subject,
		StartMileage:   req.StartMileage,
		StartFuelLevel: req.StartFuelLevel,
		PrePhotoRefs:   req.PrePhotoRefs,
		Comment:        req.Comment,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

type checkinRequest struct {
	EndMileage     int64    `json:"endMileage" binding:"required"`
	EndFuelLevel   *float64 `json:"endFuelLevel"`
	DamageReported bool     `json:"damageReported"`
	DamageDesc     string   `json:"damageDescription"`
	PostPhotoRefs  []string `json:"postPhotoRefs"`
	Comment        string   `json:"comment"`
}

func (h *Handler) checkin(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.svc.Checkin(c.Request.Context(), c.Param("id"), CheckinInput{
		RequesterID:    ai.Subject,
		EndMileage:     req.EndMileage,
		EndFuelLevel:   req.EndFuelLevel,
		DamageReported: req.DamageReported,
		DamageDesc:     req.DamageDesc,
		PostPhotoRefs:  req.PostPhotoRefs,
		Comment:        req.Comment,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

func primaryRole(ai server.AuthInfo) user.Role {
	if len(ai.Roles) == 0 {
		return ""
	}
	return user.Role(ai.Roles[0])
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return offset, limit
}
