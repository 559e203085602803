package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== Cooldown 冷却限流器 ====================

// CooldownLimiter 按 key 的最小间隔限流
// 防止重复点击提交导致同一编辑器并发发起多次创建
type CooldownLimiter struct {
	entries sync.Map // key -> *cooldownEntry
	now     func() time.Time
}

type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时记录本次时间
func (l *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := l.entries.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	if elapsed := now.Sub(entry.lastTime); elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (l *CooldownLimiter) Reset(key string) {
	l.entries.Delete(key)
}

// Sweep 删除最近一次放行早于 olderThan 的 key，返回删除数量
// 编辑器 ID 每次打开都不同，不清理会无限增长
func (l *CooldownLimiter) Sweep(olderThan time.Duration) int {
	deadline := l.now().Add(-olderThan)
	removed := 0

	l.entries.Range(func(key, value interface{}) bool {
		entry := value.(*cooldownEntry)
		entry.mu.Lock()
		stale := entry.lastTime.Before(deadline)
		entry.mu.Unlock()

		if stale && l.entries.CompareAndDelete(key, entry) {
			removed++
		}
		return true
	})
	return removed
}

// Len 当前记录的 key 数
func (l *CooldownLimiter) Len() int {
	n := 0
	l.entries.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// ==================== Gin 中间件 ====================

// CooldownKey 用户 + 编辑器维度的 key
func CooldownKey(action, userID, editorID string) string {
	return fmt.Sprintf("%s:%s:%s", action, userID, editorID)
}

// Cooldown 编辑器级冷却中间件（读取路由参数 :id）
//
// 使用示例:
//
//	editors.POST("/:id/submit", middleware.Cooldown(limiter, "submit", 2*time.Second), ctl.Submit)
func Cooldown(limiter *CooldownLimiter, action string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CooldownKey(action, GetUserID(c), c.Param("id"))

		result := limiter.Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": fmt.Sprintf("%s cooling down, retry in %dms", action, result.RetryAfter.Milliseconds()),
				"data": gin.H{
					"retry_after_ms": result.RetryAfter.Milliseconds(),
					"action":         action,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
