package secure

import (
	"context"
	"sync"
	"time"

	"LLMBridge/pkg/logger"
)

// DefaultSweepInterval is how often the sweeper scans for expired artifacts.
const DefaultSweepInterval = time.Hour

// Sweeper periodically deletes expired artifacts. It sweeps once on start so
// files left over from a previous process are handled immediately.
type Sweeper struct {
	store    *Store
	interval time.Duration
	log      *logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper for store. interval <= 0 uses DefaultSweepInterval.
func NewSweeper(store *Store, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.New("secure-sweeper")
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Shutdown is called.
func (w *Sweeper) Start(ctx context.Context) error {
	defer close(w.done)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Shutdown stops the loop and waits for an in-progress sweep to finish.
func (w *Sweeper) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	n, err := w.store.SweepExpired(ctx)
	if err != nil {
		w.log.WithField("cause", err.Error()).Warn("sweep of expired artifacts failed")
		return
	}
	if n > 0 {
		w.log.WithField("deleted", n).WithField("retention", w.store.Retention().String()).
			Info("swept expired artifacts")
	}
}
