package prompt

import (
	"context"
	"strings"
	"time"

	"LLMBridge/internal/llm"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/logger"
)

const enhanceSystem = "You write system prompts that personalize AI assistants. Reply with the prompt only."

// Enhancer asks an LLM for a model-optimized prompt and falls back to the
// deterministic template when the LLM is unavailable or returns nothing.
type Enhancer struct {
	engine  *Engine
	client  llm.LLM
	timeout time.Duration
	log     *logger.Logger
}

// NewEnhancer builds an Enhancer. A nil client always yields the template output.
func NewEnhancer(engine *Engine, client llm.LLM, timeout time.Duration, log *logger.Logger) *Enhancer {
	if log == nil {
		log = logger.Nop()
	}
	return &Enhancer{engine: engine, client: client, timeout: timeout, log: log}
}

// Generate returns the LLM-written prompt for modelID, or Render's output on any failure.
func (e *Enhancer) Generate(ctx context.Context, p models.MemoryProfile, modelID string) (string, error) {
	fallback, err := e.engine.Render(p, modelID)
	if err != nil {
		return "", err
	}
	if e.client == nil {
		return fallback, nil
	}

	meta, err := e.engine.EnhancementRequest(p, modelID)
	if err != nil {
		return fallback, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	temperature := float32(0.7)
	req := models.NewTextRequest(enhanceSystem, meta)
	req.Temperature = &temperature

	resp, err := e.client.GenerateContent(ctx, req)
	if err != nil {
		e.log.WithField("model", e.engine.Resolve(modelID)).
			WithError(models.ErrorInfo{Message: err.Error(), Type: "enhance"}).
			Warn("prompt enhancement failed, using template")
		return fallback, nil
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		e.log.WithField("model", e.engine.Resolve(modelID)).Warn("empty enhancement, using template")
		return fallback, nil
	}
	return text, nil
}
