// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"
)

// Poller calls a function immediately and then at a fixed interval. A tick
// that arrives while the previous call is still running is skipped, so calls
// never overlap.
type Poller struct {
	log      logging.Logger
	clock    clockwork.Clock
	interval time.Duration
	poll     func(context.Context) error

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

func NewPoller(
	log logging.Logger,
	clock clockwork.Clock,
	interval time.Duration,
	poll func(context.Context) error,
) *Poller {
	return &Poller{
		log:      log,
		clock:    clock,
		interval: interval,
		poll:     poll,
	}
}

// Poll calls the function once unless a call is already in flight. Returns
// false if the call was skipped.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer p.inFlight.Store(false)

	return true, p.poll(ctx)
}

// Run polls until [ctx] is cancelled. The context is handed to every call so
// a cancelled poller never applies a stale response. Run returns once the
// last call has returned.
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		case <-ticker.Chan():
			p.spawn(ctx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("skipping poll, previous call still in flight")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		if err := p.poll(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn("poll failed",
				zap.Duration("interval", p.interval),
				zap.Error(err),
			)
		}
	}()
}
