package report

import (
	"net/http"
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
	rg.GET("/reports/revenue", h.revenue)
	rg.GET("/reports/bookings", h.bookings)
	rg.GET("/reports/fleet", h.fleet)
}

// revenue 默认统计本月。
func (h *Handler) revenue(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			server.Error(c, apperr.Validation("from must be YYYY-MM-DD"))
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			server.Error(c, apperr.Validation("to must be YYYY-MM-DD"))
			return
		}
		to = t.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		server.Error(c, apperr.Validation("to must be after from"))
		return
	}

	rev, err := h.svc.Revenue(c.Request.Context(), from, to)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": rev})
}

func (h *Handler) bookings(c *gin.Context) {
	summary, err := h.svc.BookingSummary(c.Request.Context())
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": summary})
}

func (h *Handler) fleet(c *gin.Context) {
	util, err := h.svc.FleetUtilization(c.Request.Context())
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fleet": util})
}
