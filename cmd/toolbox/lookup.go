// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/l1-toolbox/glacier"
)

func lookupCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "lookup",
		Short: "Finds a subnet or blockchain on Fuji or Mainnet",
	}
	c.AddCommand(
		lookupSubcommand("subnet <subnet-id>", "Prints a subnet, its chains and its validator manager",
			func(ctx context.Context, client *glacier.Client, id ids.ID) (any, string, error) {
				return client.LookupSubnet(ctx, id)
			},
		),
		lookupSubcommand("blockchain <blockchain-id>", "Prints a blockchain",
			func(ctx context.Context, client *glacier.Client, id ids.ID) (any, string, error) {
				return client.LookupBlockchain(ctx, id)
			},
		),
	)
	return c
}

func lookupSubcommand(
	use string,
	short string,
	lookup func(context.Context, *glacier.Client, ids.ID) (any, string, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(c *cobra.Command, r *runtime, args []string) error {
			id, err := ids.FromString(args[0])
			if err != nil {
				return err
			}
			client, err := glacier.NewClient(r.log, r.config.Glacier)
			if err != nil {
				return err
			}
			result, network, err := lookup(c.Context(), client, id)
			if err != nil {
				return err
			}
			return printJSON(c, map[string]any{
				"network": network,
				"result":  result,
			})
		}),
	}
}
