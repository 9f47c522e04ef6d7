package rbac

import (
	"net/http"
	"strings"

	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Gate 权限闸中间件：从路由推导 resource:action，
// 当前用户的角色必须持有对应授权。要放在 RequireAuth 之后。
func Gate(repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource, action := resourceAction(c)
		if resource == "" {
			c.Next()
			return
		}

		role := server.Role(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no role assigned"})
			return
		}
		ok, err := repo.HasPermission(c.Request.Context(), role, resource, action)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

// resourceAction 把注册的路由模板映射成 resource:action。
// 约定：/api/<resource>[/:id[/<verb>]]，
// GET 列表为 list、单条为 view；POST 到资源根为 create、带动词的用动词本身；
// PUT 为 update、DELETE 为 delete。
func resourceAction(c *gin.Context) (string, string) {
	full := strings.Trim(c.FullPath(), "/")
	parts := strings.Split(full, "/")
	if len(parts) < 2 || parts[0] != "api" {
		return "", ""
	}
	resource := parts[1]
	last := parts[len(parts)-1]

	switch c.Request.Method {
	case http.MethodGet:
		if last == resource {
			return resource, "list"
		}
		return resource, "view"
	case http.MethodPost:
		if last == resource {
			return resource, "create"
		}
		return resource, last
	case http.MethodPut:
		return resource, "update"
	case http.MethodDelete:
		return resource, "delete"
	}
	return resource, strings.ToLower(c.Request.Method)
}
