// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/ava-labs/libevm/common"

	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/utils/validation"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const (
	EVMChainIDKey           = "evm-chain-id"
	AllocKey                = "alloc"
	POAOwnerKey             = "poa-owner"
	TimestampKey            = "timestamp"
	ParamsFileKey           = "params-file"
	WarpQuorumKey           = "warp-quorum"
	ValidatorManagerKey     = "validator-manager-file"
	OutputKey               = "output"
	SaveToWizardKey         = "save-to-wizard"
	txAllowListPrefix       = "tx-allowlist"
	deployerAllowListPrefix = "deployer-allowlist"
	minterAllowListPrefix   = "minter-allowlist"
)

var (
	errMalformedAlloc = errors.New("allocation must be formatted as address=amount")
	errInvalidAddress = errors.New("invalid address")
)

func genesisCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "genesis",
		Short: "Generates the genesis of a subnet-evm L1",
		RunE:  withRuntime(genesisFunc),
	}
	addGenesisFlags(c.Flags())
	return c
}

func addGenesisFlags(flags *pflag.FlagSet) {
	flags.Uint64(EVMChainIDKey, 0, "EVM chain ID of the L1")
	flags.StringSlice(AllocKey, nil, "Initial balance formatted as address=amount, amount in wei. May be repeated")
	flags.String(POAOwnerKey, "", "Owner of the validator manager")
	flags.Uint64(TimestampKey, 0, "Genesis timestamp in unix seconds. Defaults to now")
	flags.String(ParamsFileKey, "", "JSON file of genesis parameters. Flags override its values")
	flags.Uint64(WarpQuorumKey, genesis.DefaultWarpQuorumNumerator, "Percentage of stake weight required to accept a warp message")
	flags.String(ValidatorManagerKey, "", "JSON file with the validator manager proxy code to predeploy")
	flags.String(OutputKey, "", "File to write the genesis to. Defaults to stdout")
	flags.Bool(SaveToWizardKey, false, "Stores the genesis in the wizard")
	for _, prefix := range []string{txAllowListPrefix, deployerAllowListPrefix, minterAllowListPrefix} {
		addAllowListFlags(flags, prefix)
	}
}

func addAllowListFlags(flags *pflag.FlagSet, prefix string) {
	flags.StringSlice(prefix+"-admins", nil, "Admin addresses of the "+prefix)
	flags.StringSlice(prefix+"-managers", nil, "Manager addresses of the "+prefix)
	flags.StringSlice(prefix+"-enabled", nil, "Enabled addresses of the "+prefix)
}

type genesisConfig struct {
	Params       genesis.Params
	Output       string
	SaveToWizard bool
}

func parseGenesisFlags(flags *pflag.FlagSet) (*genesisConfig, error) {
	var params genesis.Params
	paramsFile, err := flags.GetString(ParamsFileKey)
	if err != nil {
		return nil, err
	}
	if paramsFile != "" {
		b, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &params); err != nil {
			return nil, fmt.Errorf("couldn't parse %s: %w", paramsFile, err)
		}
	}

	if flags.Changed(EVMChainIDKey) || params.EVMChainID == 0 {
		params.EVMChainID, err = flags.GetUint64(EVMChainIDKey)
		if err != nil {
			return nil, err
		}
	}

	allocs, err := flags.GetStringSlice(AllocKey)
	if err != nil {
		return nil, err
	}
	for _, alloc := range allocs {
		address, amount, ok := strings.Cut(alloc, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errMalformedAlloc, alloc)
		}
		allocation, err := genesis.ParseAllocation(address, amount)
		if err != nil {
			return nil, err
		}
		params.Allocations = append(params.Allocations, allocation)
	}

	if flags.Changed(POAOwnerKey) {
		owner, err := flags.GetString(POAOwnerKey)
		if err != nil {
			return nil, err
		}
		params.POAOwnerAddress, err = parseAddress(owner)
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed(TimestampKey) || params.Timestamp == 0 {
		params.Timestamp, err = flags.GetUint64(TimestampKey)
		if err != nil {
			return nil, err
		}
	}
	if params.Timestamp == 0 {
		params.Timestamp = uint64(time.Now().Unix())
	}

	if flags.Changed(WarpQuorumKey) || params.WarpQuorumNumerator == 0 {
		params.WarpQuorumNumerator, err = flags.GetUint64(WarpQuorumKey)
		if err != nil {
			return nil, err
		}
	}

	for prefix, allowList := range map[string]*genesis.AllowListConfig{
		txAllowListPrefix:       &params.TxAllowList,
		deployerAllowListPrefix: &params.ContractDeployerAllowList,
		minterAllowListPrefix:   &params.NativeMinterAllowList,
	} {
		if err := parseAllowListFlags(flags, prefix, allowList); err != nil {
			return nil, err
		}
	}

	vmFile, err := flags.GetString(ValidatorManagerKey)
	if err != nil {
		return nil, err
	}
	if vmFile != "" {
		b, err := os.ReadFile(vmFile)
		if err != nil {
			return nil, err
		}
		params.ValidatorManager = &genesis.ValidatorManagerPredeploy{}
		if err := json.Unmarshal(b, params.ValidatorManager); err != nil {
			return nil, fmt.Errorf("couldn't parse %s: %w", vmFile, err)
		}
	}

	output, err := flags.GetString(OutputKey)
	if err != nil {
		return nil, err
	}
	saveToWizard, err := flags.GetBool(SaveToWizardKey)
	if err != nil {
		return nil, err
	}
	return &genesisConfig{
		Params:       params,
		Output:       output,
		SaveToWizard: saveToWizard,
	}, nil
}

// parseAllowListFlags appends the addresses given on the command line to
// the roles of [config].
func parseAllowListFlags(flags *pflag.FlagSet, prefix string, config *genesis.AllowListConfig) error {
	for suffix, addrs := range map[string]*[]common.Address{
		"-admins":   &config.AdminAddresses,
		"-managers": &config.ManagerAddresses,
		"-enabled":  &config.EnabledAddresses,
	} {
		strs, err := flags.GetStringSlice(prefix + suffix)
		if err != nil {
			return err
		}
		for _, str := range strs {
			addr, err := parseAddress(str)
			if err != nil {
				return err
			}
			*addrs = append(*addrs, addr)
		}
	}
	return nil
}

func genesisFunc(c *cobra.Command, r *runtime, _ []string) error {
	config, err := parseGenesisFlags(c.Flags())
	if err != nil {
		return err
	}

	for name, allowList := range map[string]genesis.AllowListConfig{
		txAllowListPrefix:       config.Params.TxAllowList,
		deployerAllowListPrefix: config.Params.ContractDeployerAllowList,
		minterAllowListPrefix:   config.Params.NativeMinterAllowList,
	} {
		if overlaps := allowList.Overlaps(); len(overlaps) > 0 {
			r.log.Warn("addresses hold several roles, the most privileged applies",
				zap.String("allowList", name),
				zap.Stringers("addresses", overlaps),
			)
		}
	}

	if config.Params.IgnoredOwner() {
		r.log.Warn("ignoring the PoA owner, no validator manager is placed in the genesis",
			zap.Stringer("owner", config.Params.POAOwnerAddress),
		)
	}

	g, err := genesis.Generate(config.Params)
	if err != nil {
		return err
	}
	b, err := g.Bytes()
	if err != nil {
		return err
	}

	if config.SaveToWizard {
		w, err := r.Wizard()
		if err != nil {
			return err
		}
		if err := w.Set(wizard.EVMChainIDKey, strconv.FormatUint(config.Params.EVMChainID, 10)); err != nil {
			return err
		}
		if err := w.Set(wizard.GenesisKey, string(b)); err != nil {
			return err
		}
		r.log.Info("saved genesis to the wizard")
	}

	if config.Output == "" {
		printLine(c, string(b))
		return nil
	}
	if err := os.WriteFile(config.Output, b, perms.ReadWrite); err != nil {
		return err
	}
	r.log.Info("wrote genesis",
		zap.String("path", config.Output),
		zap.Uint64("evmChainID", config.Params.EVMChainID),
	)
	return nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !validation.IsValidAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
