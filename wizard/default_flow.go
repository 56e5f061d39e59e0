// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wizard

import "github.com/ava-labs/avalanchego/utils/units"

// Keys of the values collected by the default flow.
const (
	ChainNameKey               = "chainName"
	EVMChainIDKey              = "evmChainId"
	GenesisKey                 = "genesis"
	PChainBalanceKey           = "pChainBalance"
	SubnetIDKey                = "subnetId"
	BlockchainIDKey            = "blockchainId"
	NodeRunningKey             = "nodeRunning"
	ConversionTxIDKey          = "conversionTxId"
	SignedMessageKey           = "signedMessage"
	ValidatorManagerAddressKey = "validatorManagerAddress"
	InitTxHashKey              = "initTxHash"
)

// Steps of the default flow.
const (
	ChainParametersStep  StepID = "chain-parameters"
	GenesisStep          StepID = "genesis"
	FundPChainStep       StepID = "fund-p-chain"
	CreateChainStep      StepID = "create-chain"
	NodeSetupStep        StepID = "node-setup"
	ConvertStep          StepID = "convert-to-l1"
	CollectSignatureStep StepID = "collect-signatures"
	ValidatorManagerStep StepID = "validator-manager"
	InitializeStep       StepID = "initialize-validator-set"
	WhatsNextStep        StepID = "whats-next"
)

// MinPChainBalance is the balance needed to pay for subnet, chain and
// conversion transactions.
const MinPChainBalance = units.Avax

// DefaultFlow is the flow an operator walks to launch a proof of authority L1.
func DefaultFlow() *Flow {
	flow, err := NewFlow(
		Group{
			Name: "Create Chain",
			Steps: []Step{
				{
					ID:    ChainParametersStep,
					Title: "Chain Parameters",
					Guard: All(ValidChainName(ChainNameKey), ValidEVMChainID(EVMChainIDKey)),
				},
				{
					ID:    GenesisStep,
					Title: "Genesis",
					Guard: Required(GenesisKey),
				},
				{
					ID:    FundPChainStep,
					Title: "Fund P-Chain Address",
					Guard: MinBalance(PChainBalanceKey, MinPChainBalance),
				},
				{
					ID:    CreateChainStep,
					Title: "Create Subnet and Chain",
					Guard: Required(SubnetIDKey, BlockchainIDKey),
				},
			},
		},
		Group{
			Name: "Node Setup",
			Steps: []Step{
				{
					ID:    NodeSetupStep,
					Title: "Run Validator Nodes",
					Guard: Confirmed(NodeRunningKey),
				},
			},
		},
		Group{
			Name: "Convert to L1",
			Steps: []Step{
				{
					ID:    ConvertStep,
					Title: "Convert Subnet to L1",
					Guard: Required(ConversionTxIDKey),
				},
				{
					ID:    CollectSignatureStep,
					Title: "Collect Conversion Signatures",
					Guard: Required(SignedMessageKey),
				},
			},
		},
		Group{
			Name: "Validator Manager",
			Steps: []Step{
				{
					ID:    ValidatorManagerStep,
					Title: "Validator Manager Contract",
					Guard: ValidAddress(ValidatorManagerAddressKey),
				},
				{
					ID:    InitializeStep,
					Title: "Initialize Validator Set",
					Guard: Required(InitTxHashKey),
				},
			},
		},
		Group{
			Name: "Finish",
			Steps: []Step{
				{
					ID:    WhatsNextStep,
					Title: "What's Next",
				},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return flow
}
