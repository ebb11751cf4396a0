package llm

import (
	"context"
	"fmt"

	"LLMBridge/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都是独立的单轮请求，不保留会话历史。
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini 创建一个新的 Gemini 客户端。
//
// 参数:
//
//	ctx: 上下文，用于控制客户端的生命周期。
//	model: 要使用的 Gemini 模型名称。
//	apiKey: Gemini API 密钥。
//
// 返回值:
//
//	*Gemini: 新创建的 Gemini 客户端实例。
//	error: 如果无法创建 GenAI 客户端，则返回错误。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, modelName: model}, nil
}

// GenerateContent 向 Gemini API 发送请求并返回响应。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	system, prompt := splitSystem(req)

	// GenerativeModel 持有生成配置，按请求创建以免并发请求互相影响。
	model := g.client.GenerativeModel(g.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with gemini: %w", err)
	}
	return fromGenaiResponse(resp), nil
}

// Close 释放底层 gRPC 连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// fromGenaiResponse 将 GenAI GenerateContentResponse 转换为内部结构体，只保留文本部分。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	if resp == nil {
		return nil
	}
	var content []models.Content
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var parts []*models.Part
		for _, p := range cand.Content.Parts {
			if text, ok := p.(genai.Text); ok {
				parts = append(parts, &models.Part{Text: string(text)})
			}
		}
		content = append(content, models.Content{
			Parts: parts,
			Role:  models.SpeakerRole(cand.Content.Role),
		})
		// 只取第一个候选
		break
	}
	return &models.GenerateContentResponse{Content: content}
}
