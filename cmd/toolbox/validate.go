// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/l1-toolbox/utils/validation"
)

var errInvalid = errors.New("invalid")

func validateCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Checks operator inputs before they are used",
	}

	nodeInfo := &cobra.Command{
		Use:   "node-info [file]",
		Short: "Checks the output of info.getNodeID and its proof of possession. Reads stdin if no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			b, err := readInput(c, args)
			if err != nil {
				return err
			}
			pop, err := validation.ParseNodePoP(b)
			if err != nil {
				return err
			}
			if err := pop.Verify(); err != nil {
				return fmt.Errorf("%w proof of possession of %s: %w", errInvalid, pop.NodeID, err)
			}
			printLine(c, pop.NodeID)
			return nil
		},
	}

	c.AddCommand(
		nodeInfo,
		checkCommand("chain-name", "blockchain name", validation.IsValidChainName),
		checkCommand("domain", "domain", validation.IsValidDomain),
		checkCommand("ip", "IPv4 address", validation.IsValidIP),
		checkCommand("address", "EVM address", validation.IsValidAddress),
	)
	return c
}

func checkCommand(use, what string, isValid func(string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: "Checks the value is a valid " + what,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if !isValid(args[0]) {
				return fmt.Errorf("%w %s: %q", errInvalid, what, args[0])
			}
			printLine(c, "valid")
			return nil
		},
	}
}

// readInput reads the file named by the first argument, or stdin if there is
// none or it is "-".
func readInput(c *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(c.InOrStdin())
	}
	return os.ReadFile(args[0])
}
