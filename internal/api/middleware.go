package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"LLMBridge/internal/config"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/logger"
	"LLMBridge/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceIDKey       = "trace_id"
	maxUserAgentLen  = 100
	auditServiceName = "llmbridge-api"
)

// Auditor 接收每个 API 请求的审计事件。
type Auditor interface {
	Publish(ctx context.Context, entry models.LogEntry) error
}

// AuditLogger 记录每个请求的元数据（不含请求体），并在配置了 Auditor 时投递审计事件。
func AuditLogger(log *logger.Logger, auditor Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := uuid.NewString()
		c.Set(traceIDKey, traceID)
		c.Header("X-Request-ID", traceID)

		c.Next()

		info := models.RequestInfo{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Status:        c.Writer.Status(),
			DurationMs:    time.Since(start).Milliseconds(),
			RemoteAddr:    c.ClientIP(),
			UserAgent:     truncate(c.Request.UserAgent(), maxUserAgentLen),
			ContentLength: c.Request.ContentLength,
			HasFileUpload: strings.HasPrefix(c.ContentType(), "multipart/form-data"),
		}

		entry := log.WithRequest(info).WithField(traceIDKey, traceID)
		switch {
		case info.Status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case info.Status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}

		if auditor == nil {
			return
		}
		event := models.LogEntry{ServiceName: auditServiceName, TraceID: traceID, RequestInfo: &info}
		if err := auditor.Publish(context.WithoutCancel(c.Request.Context()), event); err != nil {
			log.WithError(models.ErrorInfo{Message: err.Error(), Type: "audit_publish"}).Warn("audit event dropped")
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// RateLimitByIP 按客户端 IP 限流，超限时返回 429。
func RateLimitByIP(limiter *ratelimiter.Keyed) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}
		c.Next()
	}
}

// newRouteLimiter 根据路由级配置创建按 IP 的限流器。
func newRouteLimiter(rl config.RateLimiterConfig, route config.RouteLimitConfig) (*ratelimiter.Keyed, error) {
	window, err := time.ParseDuration(route.Window)
	if err != nil {
		return nil, err
	}
	factory, err := ratelimiter.NewFactory(rl.Algorithm, route.Limit, window, rl.NumBuckets)
	if err != nil {
		return nil, err
	}
	return ratelimiter.NewKeyed(factory, window, ratelimiter.DefaultMaxKeys), nil
}
