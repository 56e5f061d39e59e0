// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const (
	AddressKey = "address"
	WatchKey   = "watch"
)

var errNoAddress = errors.New("no address to query")

func balanceCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "balance",
		Short: "Prints the P-Chain balance of the configured key and records it in the wizard",
		RunE:  withRuntime(balanceFunc),
	}
	c.Flags().StringSlice(AddressKey, nil, "P-Chain addresses to query instead of the configured key's")
	c.Flags().Bool(WatchKey, false, "Keeps refreshing the balance until interrupted")
	return c
}

// pChainAddress formats the address of the configured key for the
// configured network.
func pChainAddress(r *runtime) (string, error) {
	if r.config.PrivateKey == nil && !r.config.Ledger {
		return "", fmt.Errorf("%w: set --%s, a private key or a ledger", errNoAddress, AddressKey)
	}
	_, addr, err := r.PKeychain()
	if err != nil {
		return "", err
	}
	return address.Format("P", constants.GetHRP(r.config.NetworkID), addr.Bytes())
}

func balanceFunc(c *cobra.Command, r *runtime, _ []string) error {
	flags := c.Flags()
	addrs, err := flags.GetStringSlice(AddressKey)
	if err != nil {
		return err
	}
	watch, err := flags.GetBool(WatchKey)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		addr, err := pChainAddress(r)
		if err != nil {
			return err
		}
		addrs = []string{addr}
	}

	w, err := r.Wizard()
	if err != nil {
		return err
	}
	report := func(balance *pchain.Balance) {
		printLine(c, formatBalance(balance))
		if err := w.Set(wizard.PChainBalanceKey, strconv.FormatUint(uint64(balance.Unlocked), 10)); err != nil {
			r.log.Warn("failed to record balance", zap.Error(err))
		}
	}

	client := pchain.NewClient(r.config.PChainURI)
	if !watch {
		balance, err := client.GetBalance(c.Context(), addrs)
		if err != nil {
			return err
		}
		report(balance)
		return nil
	}

	watcher := pchain.NewBalanceWatcher(
		r.log,
		clockwork.NewRealClock(),
		r.config.BalanceRefreshPeriod,
		client,
		addrs,
		report,
	)
	if err := watcher.Run(c.Context()); err != nil && !errors.Is(err, c.Context().Err()) {
		return err
	}
	return nil
}

func formatBalance(balance *pchain.Balance) string {
	return fmt.Sprintf(
		"balance: %s AVAX (unlocked %s AVAX)",
		formatAvax(uint64(balance.Balance)),
		formatAvax(uint64(balance.Unlocked)),
	)
}

func formatAvax(nAvax uint64) string {
	return fmt.Sprintf("%d.%09d", nAvax/units.Avax, nAvax%units.Avax)
}
