// Package poller runs a function at a fixed interval until its context ends.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
)

// ErrStop ends Run without an error when returned by the polled function
var ErrStop = errors.New("poller: stop")

// Func is called once per tick
type Func func(ctx context.Context) error

// Poller calls fn immediately and then once per interval. A call that runs past
// the next tick drops that tick rather than queueing it.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
}

// New creates a poller; name is only used in logs
func New(name string, interval time.Duration, fn Func) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
	}
}

// Run blocks until ctx is done or fn returns ErrStop. Other errors from fn are
// logged and polling continues.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("poller %s: interval must be positive, got %s", p.name, p.interval)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.fn(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Poll failed",
				logger.String("poller", p.name),
				logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
