package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LLMBridge/internal/api"
	"LLMBridge/internal/config"
	"LLMBridge/internal/database/kafka"
	"LLMBridge/internal/extraction"
	"LLMBridge/internal/llm"
	"LLMBridge/internal/profilestore"
	"LLMBridge/internal/prompt"
	"LLMBridge/internal/secure"
	"LLMBridge/pkg/circuitbreaker"
	httpserver "LLMBridge/pkg/http"
	"LLMBridge/pkg/httpmiddleware"
	"LLMBridge/pkg/logger"
	"LLMBridge/pkg/srv"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Logger.Level)
	appLogger := logger.New("llmbridge")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := buildServices(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(err.Error())
	}

	errs := srv.StartServices(ctx, appLogger, services)
	appLogger.WithPayload(map[string]interface{}{
		"port":      cfg.Server.Port,
		"env":       cfg.App.Environment,
		"extractor": cfg.Extractor.Backend,
		"store":     cfg.Store.Backend,
	}).Info("LLMBridge started")

	// Wait for termination signal or a failed service
	select {
	case <-ctx.Done():
	case err := <-errs:
		appLogger.WithField("cause", err.Error()).Error("service stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.ShutdownServices(shutdownCtx, appLogger, services); err != nil {
		appLogger.WithField("cause", err.Error()).Error("shutdown incomplete")
		os.Exit(1)
	}
	appLogger.Info("LLMBridge stopped")
}

// buildServices 组装依赖（Store -> Gateway -> Handler -> Server）。
// 关闭时按相反顺序执行：先停止 HTTP 服务，再停止清理任务，最后释放连接。
func buildServices(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) ([]srv.Service, error) {
	var services []srv.Service

	store, err := secure.NewStore(cfg.Retention.Dir,
		secure.WithRetention(cfg.Retention.Window()),
		secure.WithOverwritePasses(cfg.Retention.OverwritePasses),
		secure.WithLogger(logger.New("secure-store")),
	)
	if err != nil {
		return nil, err
	}
	services = append(services, srv.NewCleanup(store.Close))

	// LLM 客户端不可用时，提示词增强退化为模板渲染
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		appLogger.WithField("provider", cfg.LLM.Provider).WithField("cause", err.Error()).
			Warn("LLM client unavailable, prompt enhancement disabled")
		llmClient = nil
	}
	if closer, ok := llmClient.(io.Closer); ok {
		services = append(services, srv.NewCleanup(closer.Close))
	}

	extractor, err := extraction.NewExtractor(cfg.Extractor, store, llmClient, logger.New("extractor"))
	if err != nil {
		return nil, err
	}
	gatewayOpts := []extraction.GatewayOption{
		extraction.WithTimeout(cfg.Extractor.Timeout),
		extraction.WithLogger(logger.New("extraction")),
	}
	if cb := cfg.Extractor.CircuitBreaker; cb.Enabled {
		breaker, err := newBreaker(cb, logger.New("extraction"))
		if err != nil {
			return nil, err
		}
		gatewayOpts = append(gatewayOpts, extraction.WithCircuitBreaker(breaker))
	}
	gateway := extraction.NewGateway(store, extractor, gatewayOpts...)

	profiles, closer, err := profilestore.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	services = append(services, srv.NewCleanup(closer.Close))
	if mem, ok := profiles.(*profilestore.Memory); ok {
		services = append(services, srv.NewPeriodic(time.Minute, func(context.Context) { mem.PurgeExpired() }))
	}

	var auditor api.Auditor
	if cfg.Audit.Enabled {
		if err := kafka.EnsureTopic(&cfg.Audit.Kafka); err != nil {
			appLogger.WithField("cause", err.Error()).Warn("audit topic not verified")
		}
		publisher := kafka.NewAuditPublisher(&cfg.Audit.Kafka, logger.New("audit"))
		services = append(services, srv.NewCleanup(publisher.Close))
		auditor = publisher
	}

	engine := prompt.NewEngine()
	enhancer := prompt.NewEnhancer(engine, llmClient, cfg.LLM.EnhanceTimeout, logger.New("enhancer"))

	apiLogger := logger.New("api")
	handler := api.NewHandler(cfg, gateway, engine, enhancer, profiles, apiLogger)
	router, err := api.SetupRouter(handler, cfg, apiLogger, auditor)
	if err != nil {
		return nil, err
	}

	serverOpts := []httpserver.ServerOption{httpserver.WithLogger(logger.New("http-server"))}
	if len(cfg.Server.TrustedProxies) > 0 {
		keyFunc, err := httpmiddleware.ForwardedFor(cfg.Server.TrustedProxies)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, httpserver.WithKeyFunc(keyFunc))
	}
	server, err := httpserver.NewServer(cfg, router, serverOpts...)
	if err != nil {
		return nil, err
	}

	services = append(services,
		secure.NewSweeper(store, cfg.Retention.SweepInterval, logger.New("sweeper")),
		server,
	)
	return services, nil
}

func newBreaker(cfg config.CircuitBreakerConfig, log *logger.Logger) (circuitbreaker.CircuitBreaker, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}
	return circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout,
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			log.WithField("from", from.String()).WithField("to", to.String()).Warn("extractor circuit state changed")
		}),
	), nil
}
