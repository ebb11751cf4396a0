package extraction

import (
	"context"
	"errors"
	"time"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/circuitbreaker"
	"LLMBridge/pkg/logger"
)

const (
	DefaultTimeout = 2 * time.Minute
	artifactPrefix = "conversations"
)

// ArtifactStore is the part of the secure store the gateway needs.
type ArtifactStore interface {
	CreateArtifact(ctx context.Context, content []byte, prefix string) (string, error)
	SecureDelete(path string)
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout bounds each extractor call.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithCircuitBreaker guards extractor calls; while open the extractor is skipped.
func WithCircuitBreaker(cb circuitbreaker.CircuitBreaker) GatewayOption {
	return func(g *Gateway) { g.breaker = cb }
}

// WithLogger sets the gateway logger.
func WithLogger(l *logger.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

// Gateway 负责把上传内容落盘、调用提取器并归一化结果。
// 提取器的任何失败都会降级为 FallbackProfile；只有临时文件创建失败会返回错误。
type Gateway struct {
	store     ArtifactStore
	extractor Extractor
	breaker   circuitbreaker.CircuitBreaker
	timeout   time.Duration
	log       *logger.Logger
}

// NewGateway builds a Gateway.
func NewGateway(store ArtifactStore, extractor Extractor, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:     store,
		extractor: extractor,
		timeout:   DefaultTimeout,
		log:       logger.New("extraction"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Extract stores raw as an artifact, runs the extractor on it and returns the
// normalized profile. The artifact is always deleted before Extract returns.
func (g *Gateway) Extract(ctx context.Context, raw []byte) (models.MemoryProfile, error) {
	path, err := g.store.CreateArtifact(ctx, raw, artifactPrefix)
	if err != nil {
		return models.MemoryProfile{}, err
	}
	defer g.store.SecureDelete(path)

	start := time.Now()
	out, err := g.run(ctx, path)
	if err != nil {
		g.logFallback(err, time.Since(start))
		return FallbackProfile(), nil
	}

	parsed, err := ParseRaw(out)
	if err != nil {
		g.logFallback(err, time.Since(start))
		return FallbackProfile(), nil
	}
	return Normalize(parsed), nil
}

func (g *Gateway) run(ctx context.Context, path string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	call := func() (interface{}, error) {
		out, err := g.extractor.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		// 非 JSON 输出同样计为一次失败。
		if _, err := ParseRaw(out); err != nil {
			return nil, apperr.WrapExternal("run extractor", err)
		}
		return out, nil
	}

	if g.breaker == nil {
		res, err := call()
		if err != nil {
			return nil, err
		}
		return res.([]byte), nil
	}

	res, err := g.breaker.Execute(call)
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (g *Gateway) logFallback(err error, elapsed time.Duration) {
	errType := apperr.KindOf(err).String()
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		errType = "circuit_open"
	}
	g.log.WithError(models.ErrorInfo{Message: err.Error(), Type: errType}).
		WithPayload(map[string]interface{}{"duration_ms": elapsed.Milliseconds()}).
		Warn("extraction failed, returning fallback profile")
}
