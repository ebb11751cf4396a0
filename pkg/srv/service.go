package srv

import (
	"context"
	"fmt"

	"LLMBridge/pkg/logger"
)

// Service is a long-running component started and stopped together with the process.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices starts every service in its own goroutine.
// The first start error is sent on the returned channel.
func StartServices(ctx context.Context, log *logger.Logger, services []Service) <-chan error {
	errs := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				log.WithField("service", fmt.Sprintf("%T", service)).
					WithField("cause", err.Error()).
					Error("service failed to start")
				errs <- fmt.Errorf("%T: %w", service, err)
			}
		}(service)
	}
	return errs
}

// ShutdownServices stops services in reverse start order and returns the first error.
func ShutdownServices(ctx context.Context, log *logger.Logger, services []Service) error {
	var first error
	for i := len(services) - 1; i >= 0; i-- {
		service := services[i]
		if err := service.Shutdown(ctx); err != nil {
			log.WithField("service", fmt.Sprintf("%T", service)).
				WithField("cause", err.Error()).
				Error("service failed to shutdown")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
