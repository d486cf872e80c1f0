package inbox

import (
	"context"
	"log/slog"
	"time"
)

// Poller runs a task immediately and then every interval until its context
// is cancelled. Task errors are logged and counted; they do not stop the
// loop. Runs never overlap.
type Poller struct {
	name     string
	interval time.Duration
	task     func(context.Context) error
	logger   *slog.Logger
	metrics  *Metrics
}

func NewPoller(name string, interval time.Duration, task func(context.Context) error, logger *slog.Logger, metrics *Metrics) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Poller{name: name, interval: interval, task: task, logger: logger, metrics: metrics}
}

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		p.metrics.PollErrors.Inc()
		p.logger.Warn("scheduled refresh failed", "task", p.name, "err", err)
	}
}
