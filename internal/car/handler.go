package car

import (
	"net/http"
	"strconv"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/cars", h.create)
	rg.GET("/cars", h.list)
	rg.GET("/cars/:id", h.get)
	rg.PUT("/cars/:id/status", h.updateStatus)
	rg.PUT("/cars/:id/mileage", h.updateMileage)
	rg.DELETE("/cars/:id", h.remove)
}

type createReq struct {
	PlateNumber         string  `json:"plate_number"`
	VIN                 string  `json:"vin"`
	Make                string  `json:"make"`
	Model               string  `json:"model"`
	Year                int     `json:"year"`
	Mileage             int64   `json:"mileage"`
	DailyRate           float64 `json:"daily_rate"`
	ServiceIntervalKM   int64   `json:"service_interval_km"`
	ServiceIntervalDays int     `json:"service_interval_days"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	out, err := h.svc.Create(c.Request.Context(), CreateInput{
		PlateNumber:         req.PlateNumber,
		VIN:                 req.VIN,
		Make:                req.Make,
		Model:               req.Model,
		Year:                req.Year,
		Mileage:             req.Mileage,
		DailyRate:           req.DailyRate,
		ServiceIntervalKM:   req.ServiceIntervalKM,
		ServiceIntervalDays: req.ServiceIntervalDays,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"car": out})
}

func (h *Handler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	cars, total, err := h.svc.List(c.Request.Context(), Status(c.Query("status")), (page-1)*size, size)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": out})
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		server.Error(c, apperr.Validation("status required"))
		return
	}
	out, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": out})
}

func (h *Handler) updateMileage(c *gin.Context) {
	var req struct {
		Mileage int64 `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("mileage required"))
		return
	}
	out, err := h.svc.UpdateMileage(c.Request.Context(), c.Param("id"), req.Mileage)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": out})
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
