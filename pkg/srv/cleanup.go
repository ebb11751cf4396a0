package srv

import "context"

// cleanupService runs a function on shutdown only.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup wraps fn as a Service that does nothing until shutdown.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
