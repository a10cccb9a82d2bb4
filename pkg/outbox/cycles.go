package outbox

import (
	"context"
	"time"
)

// fastCycle drives the processor over fresh and stale-claimed records.
type fastCycle struct {
	processor *Processor
	conf      *Config
}

func newFastCycle(processor *Processor, conf *Config) *fastCycle {
	return &fastCycle{processor: processor, conf: conf}
}

func (c *fastCycle) Run(ctx context.Context) error {
	if !c.conf.IsEnabled() {
		return nil
	}
	return runEvery(ctx, c.conf.FastInterval, c.processor.RunFastCycle)
}

// slowCycle drives the processor over failed records due for retry.
type slowCycle struct {
	processor *Processor
	conf      *Config
}

func newSlowCycle(processor *Processor, conf *Config) *slowCycle {
	return &slowCycle{processor: processor, conf: conf}
}

func (c *slowCycle) Run(ctx context.Context) error {
	if !c.conf.IsEnabled() {
		return nil
	}
	return runEvery(ctx, c.conf.SlowInterval, c.processor.RunSlowCycle)
}

// runEvery invokes fn once immediately and then on every tick until the
// context is cancelled. Runs never overlap.
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}
