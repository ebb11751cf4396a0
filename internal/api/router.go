package api

import (
	"fmt"

	"LLMBridge/internal/config"
	"LLMBridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, cfg *config.AppConfig, log *logger.Logger, auditor Auditor) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), AuditLogger(log, auditor))

	// multipart 文件全部保存在内存中，避免上传内容落盘
	r.MaxMultipartMemory = cfg.Server.MaxRequestBytes()

	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	var extractLimit, generateLimit []gin.HandlerFunc
	rl := cfg.Middleware.RateLimiter
	if rl.Enabled && !cfg.IsDevelopment() {
		extract, err := newRouteLimiter(rl, rl.Extract)
		if err != nil {
			return nil, fmt.Errorf("invalid extract rate limit: %w", err)
		}
		generate, err := newRouteLimiter(rl, rl.Generate)
		if err != nil {
			return nil, fmt.Errorf("invalid generate rate limit: %w", err)
		}
		extractLimit = []gin.HandlerFunc{RateLimitByIP(extract)}
		generateLimit = []gin.HandlerFunc{RateLimitByIP(generate)}
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/models", h.Models)

		api.POST("/upload", h.Upload)
		api.POST("/extract-memory", append(extractLimit, h.ExtractMemory)...)
		api.POST("/generate-prompt", append(generateLimit, h.GeneratePrompt)...)

		api.POST("/update-profile", h.UpdateProfile)
		api.GET("/profiles/:id", h.GetProfile)
	}

	return r, nil
}
