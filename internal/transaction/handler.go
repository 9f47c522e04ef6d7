package transaction

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
	rg.POST("/transactions", h.create)
	rg.GET("/transactions", h.list)
	rg.GET("/transactions/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	var req struct {
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		BookingID   string  `json:"booking_id"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	t, err := h.svc.Create(c.Request.Context(), CreateInput{
		Type:        Type(req.Type),
		Amount:      req.Amount,
		BookingID:   req.BookingID,
		Description: req.Description,
		CreatedBy:   server.UserID(c),
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": t})
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
		Type:      Type(c.Query("type")),
		BookingID: c.Query("booking_id"),
		Offset:    (page - 1) * size,
		Limit:     size,
	}
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			server.Error(c, apperr.Validation("from must be YYYY-MM-DD"))
			return
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			server.Error(c, apperr.Validation("to must be YYYY-MM-DD"))
			return
		}
		f.To = t.AddDate(0, 0, 1) // 含当天
	}

	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": t})
}
