package models

import "time"

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerSystem    SpeakerRole = "system"    // 系统提示。
	SpeakerUser      SpeakerRole = "user"      // 用户角色。
	SpeakerAssistant SpeakerRole = "assistant" // 助手角色。
	SpeakerModel     SpeakerRole = "model"     // 模型角色。
)

// Content 包含了构成单个消息的多个部分。
type Content struct {
	Parts []*Part     `json:"parts,omitempty"`
	Role  SpeakerRole `json:"role,omitempty"`
}

// Part 是消息的单个文本片段。
type Part struct {
	Text string `json:"text,omitempty"`
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	Content     []Content `json:"content,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"` // 为空时使用服务端默认值。
	JSONOutput  bool      `json:"jsonOutput,omitempty"`  // 要求模型只输出 JSON。
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`
	CreateTime   time.Time `json:"createTime,omitempty"`
	ResponseID   string    `json:"responseId,omitempty"`
	ModelVersion string    `json:"modelVersion,omitempty"`
}

// NewTextRequest builds a single-turn request: an optional system prompt followed by one user message.
func NewTextRequest(system, user string) *GenerateContentRequest {
	req := &GenerateContentRequest{}
	if system != "" {
		req.Content = append(req.Content, Content{Role: SpeakerSystem, Parts: []*Part{{Text: system}}})
	}
	req.Content = append(req.Content, Content{Role: SpeakerUser, Parts: []*Part{{Text: user}}})
	return req
}

// Text concatenates every text part of the response.
func (r *GenerateContentResponse) Text() string {
	if r == nil {
		return ""
	}
	var out string
	for _, c := range r.Content {
		for _, p := range c.Parts {
			if p != nil {
				out += p.Text
			}
		}
	}
	return out
}
