package extraction

import (
	"context"
	"errors"
	"fmt"

	"LLMBridge/internal/config"
	"LLMBridge/internal/llm"
	"LLMBridge/pkg/logger"
)

// ErrEmptyOutput is returned by backends that produced nothing.
var ErrEmptyOutput = errors.New("extractor produced no output")

// Extractor turns an artifact on disk into raw profile JSON.
type Extractor interface {
	Extract(ctx context.Context, artifactPath string) ([]byte, error)
}

// ArtifactReader reads artifacts owned by the secure store.
type ArtifactReader interface {
	ReadArtifact(path string) ([]byte, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, artifactPath string) ([]byte, error)

// Extract calls f(ctx, artifactPath).
func (f ExtractorFunc) Extract(ctx context.Context, artifactPath string) ([]byte, error) {
	return f(ctx, artifactPath)
}

// NewExtractor 根据配置选择提取后端。
func NewExtractor(cfg config.ExtractorConfig, reader ArtifactReader, client llm.LLM, log *logger.Logger) (Extractor, error) {
	switch cfg.Backend {
	case "process":
		if cfg.Command == "" {
			return nil, fmt.Errorf("process extractor requires a command")
		}
		return NewProcessExtractor(cfg.Command, cfg.Args), nil
	case "llm":
		if client == nil {
			return nil, fmt.Errorf("llm extractor requires an LLM client")
		}
		return NewLLMExtractor(reader, client, log), nil
	default:
		return nil, fmt.Errorf("unsupported extractor backend: %s", cfg.Backend)
	}
}
