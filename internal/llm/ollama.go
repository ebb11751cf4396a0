package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"LLMBridge/internal/models"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。
//
// 参数:
//
//	model: 要使用的模型名称。
//	baseURL: Ollama 服务的基准 URL。如果为空，则默认为 "http://localhost:11434"。
//
// 返回值:
//
//	*Ollama: 新创建的 Ollama 客户端实例。
//	error: 如果基准 URL 无效，则返回错误。
func NewOllama(model, baseURL string) (*Ollama, error) {
	// 如果 baseURL 为空，则使用默认地址。
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 请求的截止时间由调用方的 ctx 决定，这里只设置一个上限。
	hc := &http.Client{
		Timeout: 5 * time.Minute,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// GenerateContent 使用 Ollama API 生成内容。
//
// 参数:
//
//	ctx: 上下文，用于控制请求的生命周期。
//	req: 生成内容请求。
//
// 返回值:
//
//	*GenerateContentResponse: 生成内容的响应。
//	error: 如果生成内容失败，则返回错误。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	genReq := o.toOllamaRequest(req)

	var result *olla.GenerateResponse
	err := o.client.Generate(ctx, genReq, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("ollama returned no response")
	}

	return o.toGenerateContentResponse(result), nil
}

// toOllamaRequest 将内部 GenerateContentRequest 转换为 Ollama 的非流式生成请求。
func (o *Ollama) toOllamaRequest(req *models.GenerateContentRequest) *olla.GenerateRequest {
	system, prompt := splitSystem(req)
	stream := false

	genReq := &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		System: system,
		Stream: &stream,
	}
	if req.JSONOutput {
		genReq.Format = json.RawMessage(`"json"`)
	}
	if req.Temperature != nil {
		genReq.Options = map[string]any{"temperature": *req.Temperature}
	}
	return genReq
}

// toGenerateContentResponse 将 Ollama GenerateResponse 转换为内部 GenerateContentResponse 结构体。
func (o *Ollama) toGenerateContentResponse(resp *olla.GenerateResponse) *models.GenerateContentResponse {
	return &models.GenerateContentResponse{
		Content: []models.Content{
			{
				Parts: []*models.Part{{Text: resp.Response}},
				Role:  models.SpeakerModel,
			},
		},
		CreateTime:   resp.CreatedAt,
		ModelVersion: resp.Model,
	}
}
