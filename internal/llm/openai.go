package llm

import (
	"context"
	"fmt"

	"LLMBridge/internal/models"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI 是一个用于 OpenAI（及兼容接口）的 LLM 客户端。
type OpenAI struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOpenAI 创建一个新的 OpenAI 客户端。baseURL 为空时使用官方地址。
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// GenerateContent 使用 OpenAI API 生成内容。
func (o *OpenAI) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toOpenAIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	return o.toGenerateContentResponse(&resp), nil
}

// toOpenAIRequest 将我们的内部请求格式转换为 OpenAI 格式。
func (o *OpenAI) toOpenAIRequest(req *models.GenerateContentRequest) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	for _, content := range req.Content {
		for _, part := range content.Parts {
			if part == nil {
				continue
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    toOpenAIRole(content.Role),
				Content: part.Text,
			})
		}
	}

	out := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if req.Temperature != nil {
		out.Temperature = req.Temperature
	}
	if req.JSONOutput {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return out
}

func toOpenAIRole(role models.SpeakerRole) string {
	switch role {
	case models.SpeakerSystem:
		return openai.ChatMessageRoleSystem
	case models.SpeakerModel, models.SpeakerAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// toGenerateContentResponse 将 OpenAI 响应转换为我们的内部格式。只取第一个候选。
func (o *OpenAI) toGenerateContentResponse(resp *openai.ChatCompletionResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{
		ResponseID:   resp.ID,
		ModelVersion: resp.Model,
	}
	if len(resp.Choices) > 0 {
		out.Content = []models.Content{{
			Parts: []*models.Part{{Text: resp.Choices[0].Message.Content}},
			Role:  models.SpeakerModel,
		}}
	}
	return out
}
