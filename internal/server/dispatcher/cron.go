package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/etranslation/server/internal/logging"
)

// cronLogger adapts our Logger to the cron.Logger interface.
type cronLogger struct {
	l logging.Logger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), msg, append([]any{"error", err}, keysAndValues...)...)
}

// Schedule returns a cron runner that triggers a dispatch batch every period.
// A slow batch is never run concurrently with itself: overlapping triggers
// are skipped, and panics inside a batch are contained to that run. The
// caller starts and stops the returned cron.
func (d *Dispatcher) Schedule(ctx context.Context, period time.Duration) (*cron.Cron, error) {
	logger := &cronLogger{l: d.logger}
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	_, err := c.AddFunc(fmt.Sprintf("@every %s", period), func() {
		if err := d.RunBatch(ctx); err != nil {
			d.logger.Error(ctx, "scheduled dispatch batch failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling dispatch: %w", err)
	}
	return c, nil
}
