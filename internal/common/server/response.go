package server

import (
	"errors"
	"net/http"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Error 统一的错误出口：按错误分类映射 HTTP 状态码，
// body 固定为 {"error": message}。
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	// gorm 的未找到直接按 404 处理，省得每个仓储都包一层
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperr.KindAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// UserID 从 gin context 取当前用户 ID（鉴权关闭时为空串）。
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// Role 从 gin context 取当前用户角色。
func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}
