package prompt

import (
	"bytes"
	"encoding/json"
	"strings"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/models"
)

// ProfileSummary builds the plain prompt returned alongside an extracted profile.
func ProfileSummary(p models.MemoryProfile) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", apperr.New(apperr.Unknown, "profile summary", err)
	}

	return "Here is the extracted user profile:\n\n" +
		strings.TrimSuffix(buf.String(), "\n") +
		"\n\nPlease use this information to personalize your responses.", nil
}

// EnhancementRequest builds the meta-prompt asking an LLM to write a system prompt
// tuned for the resolved model.
func (e *Engine) EnhancementRequest(p models.MemoryProfile, modelID string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	data := struct {
		Model   string
		Profile models.MemoryProfile
	}{Model: e.Label(modelID), Profile: p}

	var sb strings.Builder
	if err := e.enhance.Execute(&sb, data); err != nil {
		return "", apperr.New(apperr.Unknown, "enhancement request", err)
	}
	return sb.String(), nil
}
