package llm

import (
	"context"
	"fmt"

	"LLMBridge/internal/config"
	"LLMBridge/internal/models"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.URL)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// splitSystem 把请求拆分为系统提示和其余文本。
func splitSystem(req *models.GenerateContentRequest) (system string, user string) {
	for _, content := range req.Content {
		for _, part := range content.Parts {
			if part == nil {
				continue
			}
			if content.Role == models.SpeakerSystem {
				system += part.Text
			} else {
				user += part.Text
			}
		}
	}
	return system, user
}

// Func adapts an ordinary function to the LLM interface.
type Func func(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)

// GenerateContent calls f(ctx, req).
func (f Func) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	return f(ctx, req)
}

// TextResponse wraps text as a single-part model response.
func TextResponse(text string) *models.GenerateContentResponse {
	return &models.GenerateContentResponse{
		Content: []models.Content{{Role: models.SpeakerModel, Parts: []*models.Part{{Text: text}}}},
	}
}
