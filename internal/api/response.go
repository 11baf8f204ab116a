package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvforge/internal/api/middleware"
)

// Error 输出统一的 JSON 错误响应。响应里带上 Correlation ID，
// 客户端报障时可以直接对齐服务端日志。
func Error(c *gin.Context, status int, msg string) {
	body := gin.H{"error": msg}
	if id := middleware.GetCorrelationID(c); id != "" {
		body["correlation_id"] = id
	}
	c.JSON(status, body)
}

// AbortUnauthorized 用于在中间件链里终止后续处理。
func AbortUnauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "unauthorized")
	c.Abort()
}

func Unauthorized(c *gin.Context)           { Error(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }
