package srv

import (
	"context"
	"sync"
	"time"
)

// periodicService calls fn on a fixed interval until shutdown.
type periodicService struct {
	interval time.Duration
	fn       func(ctx context.Context)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPeriodic wraps fn as a Service that runs it every interval.
// The first call happens one interval after Start.
func NewPeriodic(interval time.Duration, fn func(ctx context.Context)) Service {
	return &periodicService{
		interval: interval,
		fn:       fn,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *periodicService) Start(ctx context.Context) error {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
			p.fn(ctx)
		}
	}
}

func (p *periodicService) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
