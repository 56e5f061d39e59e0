// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/utils/timer"
)

var errDuplicateCheck = errors.New("duplicated check")

// Health periodically runs the registered checks and reports their latest
// results.
type Health struct {
	log     logging.Logger
	clock   clockwork.Clock
	metrics *metrics

	checksLock sync.RWMutex
	checks     map[string]Checker

	resultsLock sync.RWMutex
	results     map[string]Result
}

func New(log logging.Logger, clock clockwork.Clock, registerer prometheus.Registerer) (*Health, error) {
	metrics, err := newMetrics(registerer)
	return &Health{
		log:     log,
		clock:   clock,
		metrics: metrics,
		checks:  make(map[string]Checker),
		results: make(map[string]Result),
	}, err
}

func (h *Health) RegisterCheck(name string, checker Checker) error {
	h.checksLock.Lock()
	defer h.checksLock.Unlock()

	if _, ok := h.checks[name]; ok {
		return fmt.Errorf("%w: %q", errDuplicateCheck, name)
	}

	h.resultsLock.Lock()
	defer h.resultsLock.Unlock()

	h.checks[name] = checker
	h.results[name] = notYetRunResult

	// Whenever a new check is added - it is failing
	h.metrics.failingChecks.Inc()
	return nil
}

// Results returns the latest result of every check and whether all of them
// passed.
func (h *Health) Results() (map[string]Result, bool) {
	h.resultsLock.RLock()
	defer h.resultsLock.RUnlock()

	results := maps.Clone(h.results)
	healthy := true
	for _, result := range results {
		healthy = healthy && result.Error == nil
	}
	if !healthy {
		h.log.Warn("failing health check",
			zap.Reflect("reason", results),
		)
	}
	return results, healthy
}

// Run checks every [freq] until [ctx] is cancelled.
func (h *Health) Run(ctx context.Context, freq time.Duration) error {
	return timer.NewPoller(h.log, h.clock, freq, h.runChecks).Run(ctx)
}

func (h *Health) runChecks(ctx context.Context) error {
	h.checksLock.RLock()
	// Copy the [h.checks] map to collect the checks that we will be running
	// during this iteration. If [h.checks] is modified during this iteration of
	// [runChecks], then the added check will not be run until the next
	// iteration.
	checks := maps.Clone(h.checks)
	h.checksLock.RUnlock()

	var wg sync.WaitGroup
	wg.Add(len(checks))
	for name, check := range checks {
		go h.runCheck(ctx, &wg, name, check)
	}
	wg.Wait()
	return nil
}

func (h *Health) runCheck(ctx context.Context, wg *sync.WaitGroup, name string, check Checker) {
	defer wg.Done()

	start := h.clock.Now()

	// To avoid any deadlocks when [RegisterCheck] is called with a lock
	// that is grabbed by [check.HealthCheck], we ensure that no locks
	// are held when [check.HealthCheck] is called.
	details, err := check.HealthCheck(ctx)
	end := h.clock.Now()

	result := Result{
		Details:   details,
		Timestamp: end,
		Duration:  end.Sub(start),
	}

	h.resultsLock.Lock()
	defer h.resultsLock.Unlock()
	prevResult := h.results[name]
	if err != nil {
		errString := err.Error()
		result.Error = &errString

		result.ContiguousFailures = prevResult.ContiguousFailures + 1
		if prevResult.ContiguousFailures > 0 {
			result.TimeOfFirstFailure = prevResult.TimeOfFirstFailure
		} else {
			result.TimeOfFirstFailure = &end
		}

		if prevResult.Error == nil {
			h.metrics.failingChecks.Inc()
		}
	} else if prevResult.Error != nil {
		h.metrics.failingChecks.Dec()
	}
	h.results[name] = result
}
