// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/l1-toolbox/api/health"
	"github.com/ava-labs/l1-toolbox/api/server"
	"github.com/ava-labs/l1-toolbox/api/toolbox"
	"github.com/ava-labs/l1-toolbox/glacier"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const HealthCheckFrequencyKey = "health-check-frequency"

var errBalanceUnknown = errors.New("balance not fetched yet")

func serveCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the toolbox API, health and metrics over HTTP",
		RunE:  withRuntime(serveFunc),
	}
	c.Flags().Duration(HealthCheckFrequencyKey, 30*time.Second, "Time between health checks")
	return c
}

func serveFunc(c *cobra.Command, r *runtime, _ []string) error {
	healthFreq, err := c.Flags().GetDuration(HealthCheckFrequencyKey)
	if err != nil {
		return err
	}
	if err := errors.Join(
		r.registry.Register(collectors.NewGoCollector()),
		r.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	); err != nil {
		return err
	}

	ctx := c.Context()
	w, err := r.Wizard()
	if err != nil {
		return err
	}
	workflow, err := r.Conversion(ctx, nil)
	if err != nil {
		return err
	}
	glacierClient, err := glacier.NewClient(r.log, r.config.Glacier)
	if err != nil {
		return err
	}
	pClient := pchain.NewClient(r.config.PChainURI)

	service, err := toolbox.NewService(toolbox.Config{
		Log:        r.log,
		NetworkID:  r.config.NetworkID,
		Wizard:     w,
		Conversion: workflow,
		PChain:     pClient,
		Glacier:    glacierClient,
	})
	if err != nil {
		return err
	}

	h, err := health.New(r.log, clockwork.NewRealClock(), r.registry)
	if err != nil {
		return err
	}
	if err := h.RegisterCheck("database", r.db); err != nil {
		return err
	}

	// The balance of the configured key is kept fresh for the fund step of
	// the wizard.
	var watcher *pchain.BalanceWatcher
	if addr, err := pChainAddress(r); err == nil {
		watcher = pchain.NewBalanceWatcher(
			r.log,
			clockwork.NewRealClock(),
			r.config.BalanceRefreshPeriod,
			pClient,
			[]string{addr},
			func(balance *pchain.Balance) {
				if err := w.Set(wizard.PChainBalanceKey, strconv.FormatUint(uint64(balance.Unlocked), 10)); err != nil {
					r.log.Warn("failed to record balance", zap.Error(err))
				}
			},
		)
		err := h.RegisterCheck("p-chain", health.CheckerFunc(func(context.Context) (interface{}, error) {
			balance, ok := watcher.Latest()
			if !ok {
				return nil, errBalanceUnknown
			}
			return balance, nil
		}))
		if err != nil {
			return err
		}
	}

	healthHandler, err := health.NewGetAndPostHandler(r.log, h)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(r.config.HTTP.Host, strconv.Itoa(int(r.config.HTTP.Port))))
	if err != nil {
		return err
	}
	srv, err := server.New(
		r.log,
		listener,
		server.Config{
			AllowedOrigins: r.config.HTTP.AllowedOrigins,
			ReadTimeout:    r.config.HTTP.ReadTimeout,
			WriteTimeout:   r.config.HTTP.WriteTimeout,
		},
		r.registry,
		r.registry,
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := errors.Join(
		srv.AddRoute(service, "toolbox", ""),
		srv.AddRoute(healthHandler, "health", ""),
	); err != nil {
		_ = listener.Close()
		return err
	}

	r.log.Info("starting toolbox server",
		zap.Stringer("version", version.GetVersions()),
		zap.String("network", r.config.NetworkName),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown()
	})
	g.Go(func() error {
		return ignoreCancel(h.Run(ctx, healthFreq))
	})
	if watcher != nil {
		g.Go(func() error {
			return ignoreCancel(watcher.Run(ctx))
		})
	}
	return g.Wait()
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
