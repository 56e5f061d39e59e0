// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pchain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
)

// SubnetEVMID is the VM ID subnet-evm registers under.
var SubnetEVMID = ids.ID{'s', 'u', 'b', 'n', 'e', 't', 'e', 'v', 'm'}

var (
	errMissingOwner   = errors.New("subnet owner is missing")
	errMissingGenesis = errors.New("chain genesis is missing")
)

// Issuer issues the transactions that create a subnet and its first chain.
type Issuer interface {
	IssueCreateSubnetTx(
		owner *secp256k1fx.OutputOwners,
		options ...common.Option,
	) (*txs.Tx, error)
	IssueCreateChainTx(
		subnetID ids.ID,
		genesis []byte,
		vmID ids.ID,
		fxIDs []ids.ID,
		chainName string,
		options ...common.Option,
	) (*txs.Tx, error)
}

type CreateChainParams struct {
	// Owner is allowed to add chains to the subnet and to convert it.
	Owner   ids.ShortID
	Name    string
	Genesis []byte

	// VMID defaults to SubnetEVMID.
	VMID ids.ID

	// SubnetID of an existing subnet. A new subnet is created if empty.
	SubnetID ids.ID
}

// CreateChain creates the subnet described by [params], unless it already
// exists, and a chain in it. The returned subnet ID is valid even if creating
// the chain failed, so that a retry does not create a second subnet.
func CreateChain(ctx context.Context, log logging.Logger, issuer Issuer, params CreateChainParams) (ids.ID, ids.ID, error) {
	if len(params.Genesis) == 0 {
		return params.SubnetID, ids.Empty, errMissingGenesis
	}
	vmID := params.VMID
	if vmID == ids.Empty {
		vmID = SubnetEVMID
	}

	subnetID := params.SubnetID
	if subnetID == ids.Empty {
		if params.Owner == ids.ShortEmpty {
			return ids.Empty, ids.Empty, errMissingOwner
		}
		tx, err := issuer.IssueCreateSubnetTx(
			&secp256k1fx.OutputOwners{
				Threshold: 1,
				Addrs:     []ids.ShortID{params.Owner},
			},
			common.WithContext(ctx),
		)
		if err != nil {
			return ids.Empty, ids.Empty, fmt.Errorf("couldn't create subnet: %w", err)
		}
		subnetID = tx.ID()
		log.Info("created subnet",
			zap.Stringer("subnetID", subnetID),
		)
	}

	tx, err := issuer.IssueCreateChainTx(
		subnetID,
		params.Genesis,
		vmID,
		nil,
		params.Name,
		common.WithContext(ctx),
	)
	if err != nil {
		return subnetID, ids.Empty, fmt.Errorf("couldn't create chain in subnet %s: %w", subnetID, err)
	}
	log.Info("created chain",
		zap.Stringer("subnetID", subnetID),
		zap.Stringer("chainID", tx.ID()),
		zap.String("name", params.Name),
	)
	return subnetID, tx.ID(), nil
}
