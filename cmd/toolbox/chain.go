// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/utils/validation"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const (
	ChainNameKey = "name"
	SubnetIDKey  = "subnet-id"
	ChainIDKey   = "chain-id"
	VMIDKey      = "vm-id"
)

var errInvalidChainName = errors.New("invalid chain name")

func chainCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "chain",
		Short: "Creates the subnet and chain of an L1",
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Creates a subnet owned by the configured key and a chain running the wizard's genesis",
		RunE:  withRuntime(createChainFunc),
	}
	addCreateChainFlags(create.Flags())
	c.AddCommand(create)
	return c
}

func addCreateChainFlags(flags *pflag.FlagSet) {
	flags.String(ChainNameKey, "", "Name of the chain. Defaults to the name stored in the wizard")
	flags.String(SubnetIDKey, "", "Existing subnet to create the chain in. Defaults to the subnet stored in the wizard, or a new subnet")
	flags.String(VMIDKey, pchain.SubnetEVMID.String(), "VM the chain runs")
}

type createChainConfig struct {
	Name     string
	SubnetID ids.ID
	VMID     ids.ID
}

func parseCreateChainFlags(flags *pflag.FlagSet, w *wizard.Wizard) (*createChainConfig, error) {
	name, err := flags.GetString(ChainNameKey)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = w.Get(wizard.ChainNameKey)
	}
	if !validation.IsValidChainName(name) {
		return nil, fmt.Errorf("%w: %q", errInvalidChainName, name)
	}

	subnetIDStr, err := flags.GetString(SubnetIDKey)
	if err != nil {
		return nil, err
	}
	if subnetIDStr == "" {
		subnetIDStr = w.Get(wizard.SubnetIDKey)
	}
	subnetID, err := parseOptionalID(subnetIDStr)
	if err != nil {
		return nil, err
	}

	vmIDStr, err := flags.GetString(VMIDKey)
	if err != nil {
		return nil, err
	}
	vmID, err := ids.FromString(vmIDStr)
	if err != nil {
		return nil, err
	}
	return &createChainConfig{
		Name:     name,
		SubnetID: subnetID,
		VMID:     vmID,
	}, nil
}

func parseOptionalID(s string) (ids.ID, error) {
	if s == "" {
		return ids.Empty, nil
	}
	return ids.FromString(s)
}

func createChainFunc(c *cobra.Command, r *runtime, _ []string) error {
	w, err := r.Wizard()
	if err != nil {
		return err
	}
	config, err := parseCreateChainFlags(c.Flags(), w)
	if err != nil {
		return err
	}
	_, owner, err := r.PKeychain()
	if err != nil {
		return err
	}

	ctx := c.Context()
	var subnetIDs []ids.ID
	if config.SubnetID != ids.Empty {
		subnetIDs = append(subnetIDs, config.SubnetID)
	}
	wallet, err := r.PWallet(ctx, subnetIDs...)
	if err != nil {
		return err
	}

	subnetID, chainID, err := pchain.CreateChain(ctx, r.log, wallet, pchain.CreateChainParams{
		Owner:    owner,
		Name:     config.Name,
		Genesis:  []byte(w.Get(wizard.GenesisKey)),
		VMID:     config.VMID,
		SubnetID: config.SubnetID,
	})
	if subnetID != ids.Empty {
		if err := w.Set(wizard.SubnetIDKey, subnetID.String()); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	if err := w.Set(wizard.BlockchainIDKey, chainID.String()); err != nil {
		return err
	}
	printLine(c, "subnet:", subnetID)
	printLine(c, "chain: ", chainID)
	return nil
}
