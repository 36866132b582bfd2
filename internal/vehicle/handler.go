package vehicle

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	vg := rg.Group("/vehicles")
	{
		vg.POST("", h.create)
		vg.GET("", h.list)
		vg.GET("/available", h.listAvailable)
		vg.GET("/:id", h.get)
		vg.PUT("/:id", h.update)
		vg.PUT("/:id/status", h.setStatus)
		vg.DELETE("/:id", h.remove)
	}
}

type createRequest struct {
	LicensePlate string `json:"licensePlate" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	Color        string `json:"color"`
	VehicleType  string `json:"vehicleType" binding:"required"`
	FuelType     string `json:"fuelType" binding:"required"`
	SeatCapacity int    `json:"seatCapacity"`
	VIN          string `json:"vin"`
	Department   string `json:"department"`
	CostCenter   string `json:"costCenter"`

	NextServiceDate        *time.Time `json:"nextServiceDate"`
	InsuranceExpiryDate    *time.Time `json:"insuranceExpiryDate"`
	RegistrationExpiryDate *time.Time `json:"registrationExpiryDate"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.svc.Create(c.Request.Context(), CreateInput{
		LicensePlate:           req.LicensePlate,
		Brand:                  req.Brand,
		Model:                  req.Model,
		Year:                   req.Year,
		Color:                  req.Color,
		VehicleType:            Type(req.VehicleType),
		FuelType:               FuelType(req.FuelType),
		SeatCapacity:           req.SeatCapacity,
		VIN:                    req.VIN,
		Department:             req.Department,
		CostCenter:             req.CostCenter,
		NextServiceDate:        req.NextServiceDate,
		InsuranceExpiryDate:    req.InsuranceExpiryDate,
		RegistrationExpiryDate: req.RegistrationExpiryDate,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

type updateRequest struct {
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Color        *string `json:"color"`
	SeatCapacity *int    `json:"seatCapacity"`
	Department   *string `json:"department"`
	CostCenter   *string `json:"costCenter"`

	NextServiceDate        *time.Time `json:"nextServiceDate"`
	InsuranceExpiryDate    *time.Time `json:"insuranceExpiryDate"`
	RegistrationExpiryDate *time.Time `json:"registrationExpiryDate"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), UpdateInput{
		Brand:                  req.Brand,
		Model:                  req.Model,
		Color:                  req.Color,
		SeatCapacity:           req.SeatCapacity,
		Department:             req.Department,
		CostCenter:             req.CostCenter,
		NextServiceDate:        req.NextServiceDate,
		InsuranceExpiryDate:    req.InsuranceExpiryDate,
		RegistrationExpiryDate: req.RegistrationExpiryDate,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), Status(req.Status)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) list(c *gin.Context) {
	offset, limit := pagination(c)
	vehicles, total, err := h.svc.List(c.Request.Context(), ListFilter{
		Status:      Status(c.Query("status")),
		Department:  c.Query("department"),
		VehicleType: Type(c.Query("type")),
	}, offset, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vehicles, "total": total})
}

func (h *Handler) listAvailable(c *gin.Context) {
	offset, limit := pagination(c)
	vehicles, total, err := h.svc.ListAvailable(c.Request.Context(),
		c.Query("department"), Type(c.Query("type")), offset, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vehicles, "total": total})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return offset, limit
}
