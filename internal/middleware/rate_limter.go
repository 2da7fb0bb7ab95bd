package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 手动触发冷却 ====================

// CooldownLimiter 手动触发限流器
// 防止用户频繁触发全量重算
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时记录本次执行时间
// key: 限流键，如 "user:123:priority_bands"
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)

	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流 (执行失败时允许立即重试)
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// TriggerType 手动触发类型
type TriggerType string

const (
	TriggerPriorityBands TriggerType = "priority_bands"
	TriggerRateRefresh   TriggerType = "rate_refresh"
)

// UserTriggerKey 生成用户级触发 Key
func UserTriggerKey(userID int64, trigger TriggerType) string {
	return fmt.Sprintf("user:%d:%s", userID, trigger)
}

// GlobalTriggerKey 生成全局触发 Key
func GlobalTriggerKey(trigger TriggerType) string {
	return fmt.Sprintf("global:%s", trigger)
}
