package maintenance

import (
	"net/http"
	"strconv"
	"time"

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
	rg.POST("/maintenance", h.schedule)
	rg.GET("/maintenance", h.list)
	rg.GET("/maintenance/:id", h.get)
	rg.POST("/maintenance/:id/start", h.start)
	rg.POST("/maintenance/:id/complete", h.complete)
}

func (h *Handler) schedule(c *gin.Context) {
	var req struct {
		CarID       string `json:"car_id"`
		Description string `json:"description"`
		ScheduledAt string `json:"scheduled_at"` // RFC3339，可空
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	var at time.Time
	if req.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			server.Error(c, apperr.Validation("scheduled_at must be RFC3339"))
			return
		}
		at = parsed
	}
	rec, err := h.svc.Schedule(c.Request.Context(), ScheduleInput{
		CarID:       req.CarID,
		Description: req.Description,
		ScheduledAt: at,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"maintenance": rec})
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
	records, total, err := h.svc.List(c.Request.Context(), c.Query("car_id"), (page-1)*size, size)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": records, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": rec})
}

func (h *Handler) start(c *gin.Context) {
	rec, err := h.svc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": rec})
}

func (h *Handler) complete(c *gin.Context) {
	var req struct {
		Cost    float64 `json:"cost"`
		Mileage int64   `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	rec, err := h.svc.Complete(c.Request.Context(), c.Param("id"), CompleteInput{
		Cost:    req.Cost,
		Mileage: req.Mileage,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": rec})
}
