package user

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

// RegisterPublic 挂载无需鉴权的路由（登录）。
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
}

// Register 挂载需要鉴权的用户管理路由。
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.GET("/users", h.list)
	rg.GET("/users/:id", h.get)
	rg.POST("/users/:id/deactivate", h.deactivate)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	out, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// 登录失败按 401 而不是 403
		if apperr.KindOf(err) == apperr.KindAuthorization {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) create(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	out, err := h.svc.Create(c.Request.Context(), CreateInput{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
		Phone:    req.Phone,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": out})
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
	users, total, err := h.svc.List(c.Request.Context(), c.Query("role"), (page-1)*size, size)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": out})
}

func (h *Handler) deactivate(c *gin.Context) {
	out, err := h.svc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": out})
}
