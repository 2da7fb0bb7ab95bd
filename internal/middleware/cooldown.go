package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 手动触发冷却中间件 ====================

// Cooldown 按用户 + 触发类型限流，需挂在 UserContext 之后
// 下游返回 5xx 时清除冷却，允许立即重试
//
//	router.POST("/priority-bands/recompute",
//	    middleware.Cooldown(limiter, middleware.TriggerPriorityBands, time.Minute),
//	    ctl.Recompute,
//	)
func Cooldown(limiter *CooldownLimiter, trigger TriggerType, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GlobalTriggerKey(trigger)
		if userID := GetUserID(c); userID > 0 {
			key = UserTriggerKey(userID, trigger)
		}
		guard(c, limiter, key, trigger, interval)
	}
}

// GlobalCooldown 全局限流，所有用户共享同一个冷却
func GlobalCooldown(limiter *CooldownLimiter, trigger TriggerType, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		guard(c, limiter, GlobalTriggerKey(trigger), trigger, interval)
	}
}

func guard(c *gin.Context, limiter *CooldownLimiter, key string, trigger TriggerType, interval time.Duration) {
	result := limiter.Check(key, interval)
	if !result.Allowed {
		retryAfter := retrySeconds(result.RetryAfter)
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       formatRetryMessage(result.RetryAfter),
			"retry_after": retryAfter,
			"trigger":     trigger,
		})
		return
	}

	c.Next()

	if c.Writer.Status() >= http.StatusInternalServerError {
		limiter.Reset(key)
	}
}

// ==================== 辅助函数 ====================

func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := retrySeconds(d)

	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
