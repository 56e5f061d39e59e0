// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package conversion

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"

	"github.com/ava-labs/l1-toolbox/validatormanager"
)

// StoreName is the store the workflow state is persisted under.
const StoreName = "conversion"

// Validator is an initial validator of the L1.
type Validator struct {
	NodeID            ids.NodeID    `json:"nodeID"`
	Weight            uint64        `json:"weight"`
	Balance           uint64        `json:"balance"`
	PublicKey         hexutil.Bytes `json:"publicKey"`
	ProofOfPossession hexutil.Bytes `json:"proofOfPossession"`
}

// State is everything the workflow has learned so far. Each step fills in
// its own fields, which later steps read.
type State struct {
	SubnetID       ids.ID         `json:"subnetId"`
	ChainID        ids.ID         `json:"chainId"`
	ManagerAddress common.Address `json:"managerAddress"`
	Validators     []Validator    `json:"validators"`

	ConversionTxID ids.ID                           `json:"conversionTxId"`
	ConversionID   ids.ID                           `json:"conversionId"`
	ConversionData *validatormanager.ConversionData `json:"conversionData,omitempty"`

	UnsignedMessage hexutil.Bytes `json:"unsignedMessage,omitempty"`
	SignedMessage   hexutil.Bytes `json:"signedMessage,omitempty"`

	InitTxHash common.Hash `json:"initTxHash"`
}

// Step names a workflow step.
type Step string

const (
	AddNodeStep     Step = "add-node"
	ConvertStep     Step = "convert"
	ExtractStep     Step = "extract-message"
	AggregateStep   Step = "aggregate-signatures"
	InitializeStep  Step = "initialize-validator-set"
	CompletedStatus Step = "completed"
)

// Next returns the first step whose output is missing.
func (s State) Next() Step {
	switch {
	case len(s.Validators) == 0:
		return AddNodeStep
	case s.ConversionTxID == ids.Empty:
		return ConvertStep
	case len(s.UnsignedMessage) == 0:
		return ExtractStep
	case len(s.SignedMessage) == 0:
		return AggregateStep
	case s.InitTxHash == (common.Hash{}):
		return InitializeStep
	default:
		return CompletedStatus
	}
}
