// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ava-labs/l1-toolbox/config"
	"github.com/ava-labs/l1-toolbox/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", version.Client, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "toolbox",
		Short:         "Launches and operates self-hosted Avalanche L1s",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(c.PersistentFlags())
	c.AddCommand(
		versionCommand(),
		genesisCommand(),
		chainCommand(),
		nodeCommand(),
		validateCommand(),
		wizardCommand(),
		convertCommand(),
		lookupCommand(),
		balanceCommand(),
		progressCommand(),
		serveCommand(),
	)
	return c
}
