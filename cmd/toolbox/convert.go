// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"

	"github.com/ava-labs/l1-toolbox/api/info"
	"github.com/ava-labs/l1-toolbox/conversion"
	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const (
	ManagerAddressKey = "manager-address"
	NodeInfoKey       = "node-info"
	NodeIDKey         = "node-id"
	WeightKey         = "weight"
	BalanceKey        = "balance"
	TxHashKey         = "tx-hash"

	defaultValidatorWeight  = 100
	defaultValidatorBalance = 100 * units.MilliAvax
)

var errConflictingNodeSource = errors.New("exactly one of --node-info and --node-uri must be set")

func convertCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert",
		Short: "Converts a subnet into an L1 and initializes its validator manager",
		Long: `Runs the conversion one step at a time: configure, add-node, issue,
extract, aggregate and initialize. Every step stores its result, so a failed
step can be retried on its own.`,
	}

	configure := &cobra.Command{
		Use:   "configure",
		Short: "Sets the subnet, chain and validator manager of the conversion",
		RunE:  withRuntime(configureFunc),
	}
	configure.Flags().String(SubnetIDKey, "", "Subnet to convert. Defaults to the subnet stored in the wizard")
	configure.Flags().String(ChainIDKey, "", "Chain hosting the validator manager. Defaults to the chain stored in the wizard")
	configure.Flags().String(ManagerAddressKey, "", "Address of the validator manager. Defaults to the address stored in the wizard or the genesis predeploy")

	addNode := &cobra.Command{
		Use:   "add-node",
		Short: "Adds an initial validator from its node info",
		RunE:  withRuntime(addNodeFunc),
	}
	addNode.Flags().String(NodeInfoKey, "", "File holding the output of info.getNodeID. - reads stdin")
	addNode.Flags().String(NodeURIKey, "", "API URI of the node to fetch the node info from")
	addNode.Flags().Uint64(WeightKey, defaultValidatorWeight, "Consensus weight of the validator")
	addNode.Flags().Uint64(BalanceKey, defaultValidatorBalance, "P-Chain balance in nAVAX paying the validator fees")

	removeNode := &cobra.Command{
		Use:   "remove-node",
		Short: "Removes an initial validator",
		RunE: withConversion(func(c *cobra.Command, _ *runtime, workflow *conversion.Workflow) error {
			nodeIDStr, err := c.Flags().GetString(NodeIDKey)
			if err != nil {
				return err
			}
			nodeID, err := ids.NodeIDFromString(nodeIDStr)
			if err != nil {
				return err
			}
			return workflow.RemoveNode(nodeID)
		}),
	}
	removeNode.Flags().String(NodeIDKey, "", "Node to remove")

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issues the ConvertSubnetToL1Tx",
		RunE:  withRuntime(issueFunc),
	}

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Builds the warp message attesting to the accepted conversion",
		RunE: withConversion(func(c *cobra.Command, _ *runtime, workflow *conversion.Workflow) error {
			msg, err := workflow.ExtractMessage(c.Context())
			if err != nil {
				return err
			}
			printLine(c, "message ID:", msg.ID())
			printLine(c, hexutil.Encode(msg.Bytes()))
			return nil
		}),
	}

	aggregate := &cobra.Command{
		Use:   "aggregate",
		Short: "Collects the validator signatures over the conversion message",
		RunE: withConversion(func(c *cobra.Command, r *runtime, workflow *conversion.Workflow) error {
			signed, err := workflow.Aggregate(c.Context())
			if err != nil {
				return err
			}
			encoded := hexutil.Encode(signed.Bytes())
			if err := setWizardValue(r, wizard.SignedMessageKey, encoded); err != nil {
				return err
			}
			printLine(c, encoded)
			return nil
		}),
	}

	initialize := &cobra.Command{
		Use:   "initialize",
		Short: "Submits the signed conversion message to the validator manager",
		RunE: withConversion(func(c *cobra.Command, r *runtime, workflow *conversion.Workflow) error {
			txHash, err := workflow.InitializeValidatorSet(c.Context())
			if err != nil {
				return err
			}
			if err := setWizardValue(r, wizard.InitTxHashKey, txHash.Hex()); err != nil {
				return err
			}
			printLine(c, txHash.Hex())
			return nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Prints the conversion progress",
		RunE: withConversion(func(c *cobra.Command, _ *runtime, workflow *conversion.Workflow) error {
			state := workflow.State()
			return printJSON(c, struct {
				conversion.State
				Next conversion.Step `json:"next"`
			}{
				State: state,
				Next:  state.Next(),
			})
		}),
	}

	decodeFailure := &cobra.Command{
		Use:   "decode-failure",
		Short: "Explains why a validator manager transaction reverted",
		RunE: withConversion(func(c *cobra.Command, _ *runtime, workflow *conversion.Workflow) error {
			txHashStr, err := c.Flags().GetString(TxHashKey)
			if err != nil {
				return err
			}
			txHash, err := parseHash(txHashStr)
			if err != nil {
				return err
			}
			printLine(c, workflow.DecodeFailure(c.Context(), txHash))
			return nil
		}),
	}
	decodeFailure.Flags().String(TxHashKey, "", "Hash of the reverted transaction")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forgets the conversion progress",
		RunE: withConversion(func(_ *cobra.Command, _ *runtime, workflow *conversion.Workflow) error {
			return workflow.Reset()
		}),
	}

	c.AddCommand(configure, addNode, removeNode, issue, extract, aggregate, initialize, status, decodeFailure, reset)
	return c
}

// withConversion runs [f] on the conversion workflow of the configured
// network, without a P-Chain wallet.
func withConversion(f func(*cobra.Command, *runtime, *conversion.Workflow) error) func(*cobra.Command, []string) error {
	return withRuntime(func(c *cobra.Command, r *runtime, _ []string) error {
		workflow, err := r.Conversion(c.Context(), nil)
		if err != nil {
			return err
		}
		return f(c, r, workflow)
	})
}

func setWizardValue(r *runtime, key, value string) error {
	w, err := r.Wizard()
	if err != nil {
		return err
	}
	return w.Set(key, value)
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", errInvalid, s)
	}
	return common.BytesToHash(b), nil
}

type configureConfig struct {
	SubnetID       ids.ID
	ChainID        ids.ID
	ManagerAddress common.Address
}

func parseConfigureFlags(flags *pflag.FlagSet, w *wizard.Wizard) (*configureConfig, error) {
	subnetIDStr, err := flags.GetString(SubnetIDKey)
	if err != nil {
		return nil, err
	}
	if subnetIDStr == "" {
		subnetIDStr = w.Get(wizard.SubnetIDKey)
	}
	subnetID, err := ids.FromString(subnetIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", SubnetIDKey, subnetIDStr, err)
	}

	chainIDStr, err := flags.GetString(ChainIDKey)
	if err != nil {
		return nil, err
	}
	if chainIDStr == "" {
		chainIDStr = w.Get(wizard.BlockchainIDKey)
	}
	chainID, err := ids.FromString(chainIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", ChainIDKey, chainIDStr, err)
	}

	addressStr, err := flags.GetString(ManagerAddressKey)
	if err != nil {
		return nil, err
	}
	if addressStr == "" {
		addressStr = w.Get(wizard.ValidatorManagerAddressKey)
	}
	address := genesis.ValidatorManagerProxyAddress
	if addressStr != "" {
		address, err = parseAddress(addressStr)
		if err != nil {
			return nil, err
		}
	}
	return &configureConfig{
		SubnetID:       subnetID,
		ChainID:        chainID,
		ManagerAddress: address,
	}, nil
}

func configureFunc(c *cobra.Command, r *runtime, _ []string) error {
	w, err := r.Wizard()
	if err != nil {
		return err
	}
	config, err := parseConfigureFlags(c.Flags(), w)
	if err != nil {
		return err
	}
	workflow, err := r.Conversion(c.Context(), nil)
	if err != nil {
		return err
	}
	if err := workflow.Configure(config.SubnetID, config.ChainID, config.ManagerAddress); err != nil {
		return err
	}
	if err := w.Set(wizard.ValidatorManagerAddressKey, config.ManagerAddress.Hex()); err != nil {
		return err
	}
	printLine(c, "subnet:         ", config.SubnetID)
	printLine(c, "chain:          ", config.ChainID)
	printLine(c, "manager address:", config.ManagerAddress.Hex())
	return nil
}

func addNodeFunc(c *cobra.Command, r *runtime, _ []string) error {
	flags := c.Flags()
	nodeInfoFile, err := flags.GetString(NodeInfoKey)
	if err != nil {
		return err
	}
	nodeURI, err := flags.GetString(NodeURIKey)
	if err != nil {
		return err
	}
	weight, err := flags.GetUint64(WeightKey)
	if err != nil {
		return err
	}
	balance, err := flags.GetUint64(BalanceKey)
	if err != nil {
		return err
	}

	var nodeInfo []byte
	switch {
	case nodeInfoFile != "" && nodeURI == "":
		nodeInfo, err = readInput(c, []string{nodeInfoFile})
	case nodeURI != "" && nodeInfoFile == "":
		nodeInfo, err = fetchNodeInfo(c.Context(), r, info.NewClient(nodeURI))
	default:
		return errConflictingNodeSource
	}
	if err != nil {
		return err
	}

	workflow, err := r.Conversion(c.Context(), nil)
	if err != nil {
		return err
	}
	nodeID, err := workflow.AddNode(nodeInfo, weight, balance)
	if err != nil {
		return err
	}
	printLine(c, nodeID)
	return nil
}

// fetchNodeInfo reads the node ID and proof of possession of a node on the
// configured network.
func fetchNodeInfo(ctx context.Context, r *runtime, c *info.Client) ([]byte, error) {
	if err := verifyNode(ctx, r, c, nil); err != nil {
		return nil, err
	}
	return c.GetNodeID(ctx, nodeOptions()...)
}

func issueFunc(c *cobra.Command, r *runtime, _ []string) error {
	ctx := c.Context()
	workflow, err := r.Conversion(ctx, nil)
	if err != nil {
		return err
	}
	state := workflow.State()
	if state.SubnetID == ids.Empty {
		return fmt.Errorf("%w: %s", conversion.ErrNotReady, "configure")
	}

	if err := verifyNode(ctx, r, info.NewClient(r.config.PChainURI), version.MinimumConversionNode); err != nil {
		return err
	}
	wallet, err := r.PWallet(ctx, state.SubnetID)
	if err != nil {
		return err
	}
	workflow, err = r.Conversion(ctx, wallet)
	if err != nil {
		return err
	}
	txID, err := workflow.Convert(ctx)
	if err != nil {
		return err
	}
	if err := setWizardValue(r, wizard.ConversionTxIDKey, txID.String()); err != nil {
		return err
	}
	printLine(c, txID)
	return nil
}
