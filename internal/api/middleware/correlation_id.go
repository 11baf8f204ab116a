package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	correlationIDKey  = "correlationID"
	correlationHeader = "X-Correlation-ID"
)

// CorrelationIDMiddleware 为每个请求确定一个 Correlation ID：
// 客户端带了就沿用，没带就生成。ID 同时写回响应头，供入队的
// 渲染任务与 WebSocket 通知串联同一次操作。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(correlationHeader, id)

		c.Next()
	}
}

// GetCorrelationID 返回当前请求的 Correlation ID，中间件未运行时为空。
func GetCorrelationID(c *gin.Context) string {
	if value, ok := c.Get(correlationIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
