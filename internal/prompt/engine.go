package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/models"
)

// DefaultModel 是未知模型 ID 的回退目标。
const DefaultModel = "claude"

// ModelInfo describes one entry of the template registry.
type ModelInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type entry struct {
	info ModelInfo
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"bulleted": bulleted,
	"numbered": numbered,
	"join":     strings.Join,
}

// registry 按客户端展示顺序排列。
var registry = []struct {
	id, label, text string
}{
	{"claude", "Claude", claudeTemplate},
	{"gemini", "Gemini", geminiTemplate},
	{"chatgpt", "ChatGPT", chatgptTemplate},
	{"grok", "Grok (X.AI)", grokTemplate},
	{"perplexity", "Perplexity", perplexityTemplate},
	{"llama", "Llama", llamaTemplate},
	{"mistral", "Mistral", mistralTemplate},
	{"cohere", "Cohere", cohereTemplate},
	{"anthropic-claude", "Anthropic Claude", anthropicClaudeTemplate},
	{"openai-gpt4", "OpenAI GPT-4", openaiGPT4Template},
	{"other", "Other", otherTemplate},
}

// Engine renders profile prompts from a fixed registry of model templates.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	order   []string
	entries map[string]entry
	enhance *template.Template
}

// NewEngine parses every template once. A broken template is a programming error.
func NewEngine() *Engine {
	e := &Engine{
		order:   make([]string, 0, len(registry)),
		entries: make(map[string]entry, len(registry)),
		enhance: template.Must(template.New("enhance").Funcs(funcs).Option("missingkey=error").Parse(enhancementTemplate)),
	}
	for _, r := range registry {
		t := template.Must(template.New(r.id).Funcs(funcs).Option("missingkey=error").Parse(r.text))
		e.order = append(e.order, r.id)
		e.entries[r.id] = entry{info: ModelInfo{ID: r.id, Label: r.label}, tmpl: t}
	}
	return e
}

// Resolve maps a requested model ID to a registered one, falling back to DefaultModel.
func (e *Engine) Resolve(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if _, ok := e.entries[id]; ok {
		return id
	}
	return DefaultModel
}

// IsSupported reports whether modelID names a registered template.
func (e *Engine) IsSupported(modelID string) bool {
	_, ok := e.entries[strings.ToLower(strings.TrimSpace(modelID))]
	return ok
}

// Models lists the registry in display order.
func (e *Engine) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.entries[id].info)
	}
	return out
}

// Label returns the display label of the resolved model.
func (e *Engine) Label(modelID string) string {
	return e.entries[e.Resolve(modelID)].info.Label
}

// Render fills the template of the resolved model with the profile.
// The same profile and model always produce the same text.
func (e *Engine) Render(p models.MemoryProfile, modelID string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := e.entries[e.Resolve(modelID)].tmpl.Execute(&sb, p); err != nil {
		return "", apperr.New(apperr.Unknown, "render prompt", err)
	}
	return sb.String(), nil
}

func bulleted(marker string, items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = marker + " " + item
	}
	return strings.Join(lines, "\n")
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
