package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/bookings/availability", h.availability)
	rg.POST("/bookings", h.create)
	rg.GET("/bookings", h.list)
	rg.GET("/bookings/:id", h.get)
	rg.PUT("/bookings/:id", h.update)
	rg.POST("/bookings/:id/pickup", h.pickup)
	rg.POST("/bookings/:id/return", h.ret)
	rg.POST("/bookings/:id/cancel", h.cancel)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

func (h *Handler) availability(c *gin.Context) {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		server.Error(c, apperr.Validation("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		server.Error(c, apperr.Validation("end_date must be YYYY-MM-DD"))
		return
	}
	available, conflicts, err := h.svc.CheckAvailability(
		c.Request.Context(), c.Query("car_id"), start, end, c.Query("exclude_booking_id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available, "conflicts": conflicts})
}

type createReq struct {
	CarID      string  `json:"car_id"`
	CustomerID string  `json:"customer_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	DailyRate  float64 `json:"daily_rate"`
	Extras     float64 `json:"extras"`
	Taxes      float64 `json:"taxes"`
	Discount   float64 `json:"discount"`
	Notes      string  `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		server.Error(c, apperr.Validation("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		server.Error(c, apperr.Validation("end_date must be YYYY-MM-DD"))
		return
	}

	b, err := h.svc.Create(c.Request.Context(), CreateInput{
		CarID:      req.CarID,
		CustomerID: req.CustomerID,
		CreatedBy:  server.UserID(c),
		StartDate:  start,
		EndDate:    end,
		DailyRate:  req.DailyRate,
		Extras:     req.Extras,
		Taxes:      req.Taxes,
		Discount:   req.Discount,
		Notes:      req.Notes,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
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
	f := ListFilter{
		CarID:      c.Query("car_id"),
		CustomerID: c.Query("customer_id"),
		Status:     Status(c.Query("status")),
		Offset:     (page - 1) * size,
		Limit:      size,
	}
	bookings, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

type updateReq struct {
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	DailyRate *float64 `json:"daily_rate"`
	Extras    *float64 `json:"extras"`
	Taxes     *float64 `json:"taxes"`
	Discount  *float64 `json:"discount"`
	Notes     *string  `json:"notes"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	in := UpdateInput{
		DailyRate: req.DailyRate,
		Extras:    req.Extras,
		Taxes:     req.Taxes,
		Discount:  req.Discount,
		Notes:     req.Notes,
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			server.Error(c, apperr.Validation("start_date must be YYYY-MM-DD"))
			return
		}
		in.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			server.Error(c, apperr.Validation("end_date must be YYYY-MM-DD"))
			return
		}
		in.EndDate = &t
	}
	b, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) pickup(c *gin.Context) {
	var req struct {
		Odometer *int64 `json:"odometer"`
	}
	_ = c.ShouldBindJSON(&req)
	b, err := h.svc.Pickup(c.Request.Context(), c.Param("id"), req.Odometer)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ret(c *gin.Context) {
	var req struct {
		Mileage *int64 `json:"mileage"`
	}
	_ = c.ShouldBindJSON(&req)
	b, err := h.svc.Return(c.Request.Context(), c.Param("id"), req.Mileage)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) cancel(c *gin.Context) {
	b, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
