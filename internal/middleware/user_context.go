package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carrier_pricing_v1/pkg/logger"
)

// ==================== 用户上下文 ====================

const (
	// HeaderUserID 网关鉴权后透传的用户 ID
	HeaderUserID = "X-User-ID"
	// HeaderRequestID 请求追踪 ID，缺省时生成
	HeaderRequestID = "X-Request-ID"

	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
)

// UserContext 解析 X-User-ID 并注入到 gin.Context 与 request context
// 鉴权由上游网关完成，这里只校验格式
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		userID, err := strconv.ParseInt(c.GetHeader(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少或无效的 X-User-ID"})
			return
		}
		c.Set(ContextKeyUserID, userID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithUserID(ctx, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID 从 Context 获取用户 ID
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}
