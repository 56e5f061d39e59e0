// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pchain

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/utils/timer"
)

// DefaultRefreshInterval is how often a BalanceWatcher refreshes.
const DefaultRefreshInterval = 10 * time.Second

// BalanceWatcher keeps the latest P-Chain balance of a set of addresses.
type BalanceWatcher struct {
	log    logging.Logger
	reader Reader
	addrs  []string
	poller *timer.Poller

	lock     sync.RWMutex
	latest   *Balance
	onUpdate func(*Balance)
}

// NewBalanceWatcher refreshes the balance of [addrs] every [interval].
// [onUpdate], if non-nil, is called with every fetched balance.
func NewBalanceWatcher(
	log logging.Logger,
	clock clockwork.Clock,
	interval time.Duration,
	reader Reader,
	addrs []string,
	onUpdate func(*Balance),
) *BalanceWatcher {
	w := &BalanceWatcher{
		log:      log,
		reader:   reader,
		addrs:    addrs,
		onUpdate: onUpdate,
	}
	w.poller = timer.NewPoller(log, clock, interval, w.refresh)
	return w
}

func (w *BalanceWatcher) refresh(ctx context.Context) error {
	balance, err := w.reader.GetBalance(ctx, w.addrs)
	if err != nil {
		return err
	}
	// The watcher may have been stopped while the request was in flight.
	if ctx.Err() != nil {
		return nil
	}

	w.lock.Lock()
	w.latest = balance
	w.lock.Unlock()

	w.log.Debug("refreshed p-chain balance",
		zap.Strings("addresses", w.addrs),
		zap.Uint64("balance", uint64(balance.Balance)),
	)
	if w.onUpdate != nil {
		w.onUpdate(balance)
	}
	return nil
}

// Latest returns the last fetched balance, or false if none was fetched yet.
func (w *BalanceWatcher) Latest() (Balance, bool) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.latest == nil {
		return Balance{}, false
	}
	return *w.latest, true
}

// Run refreshes until [ctx] is cancelled.
func (w *BalanceWatcher) Run(ctx context.Context) error {
	return w.poller.Run(ctx)
}
