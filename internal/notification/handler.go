package notification

import (
	"net/http"
	"strconv"

	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 通知读端 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由（调用方决定前缀与鉴权中间件）。
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.GET("/notifications/unread-count", h.unreadCount)
	rg.POST("/notifications/:id/read", h.markRead)
	rg.POST("/notifications/read-all", h.markAllRead)
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
		UserID:     server.UserID(c),
		Role:       server.Role(c),
		UnreadOnly: c.Query("unread") == "true",
		Offset:     (page - 1) * size,
		Limit:      size,
	}
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "total": total})
}

func (h *Handler) unreadCount(c *gin.Context) {
	total, err := h.svc.CountUnread(c.Request.Context(), server.UserID(c), server.Role(c))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total})
}

func (h *Handler) markRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) markAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), server.UserID(c), server.Role(c)); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
