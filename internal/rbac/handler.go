package rbac

import (
	"net/http"

	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 角色目录只读接口（角色授权表是种子数据，不提供写接口）。
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/roles", h.list)
	rg.GET("/roles/:name/permissions", h.permissions)
}

func (h *Handler) list(c *gin.Context) {
	roles, err := h.repo.ListRoles(c.Request.Context())
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (h *Handler) permissions(c *gin.Context) {
	perms, err := h.repo.PermissionsForRole(c.Request.Context(), c.Param("name"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permissions": perms})
}
