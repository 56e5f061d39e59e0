// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import "github.com/ava-labs/libevm/common"

// Config keys and addresses of the subnet-evm stateful precompiles the
// generator can enable. Keys must match the json keys subnet-evm reads from
// the chain config.
const (
	DeployerAllowListConfigKey = "contractDeployerAllowListConfig"
	NativeMinterConfigKey      = "contractNativeMinterConfig"
	TxAllowListConfigKey       = "txAllowListConfig"
	WarpConfigKey              = "warpConfig"
)

var (
	DeployerAllowListAddress = common.HexToAddress("0x0200000000000000000000000000000000000000")
	NativeMinterAddress      = common.HexToAddress("0x0200000000000000000000000000000000000001")
	TxAllowListAddress       = common.HexToAddress("0x0200000000000000000000000000000000000002")
	FeeManagerAddress        = common.HexToAddress("0x0200000000000000000000000000000000000003")
	RewardManagerAddress     = common.HexToAddress("0x0200000000000000000000000000000000000004")
	WarpAddress              = common.HexToAddress("0x0200000000000000000000000000000000000005")

	// PrecompileAddresses can't hold a genesis allocation.
	PrecompileAddresses = []common.Address{
		DeployerAllowListAddress,
		NativeMinterAddress,
		TxAllowListAddress,
		FeeManagerAddress,
		RewardManagerAddress,
		WarpAddress,
	}
)

// Fixed locations of the validator manager proxy pair placed at genesis.
var (
	ValidatorManagerProxyAddress = common.HexToAddress("0xfacade0000000000000000000000000000000000")
	ProxyAdminAddress            = common.HexToAddress("0xdad0000000000000000000000000000000000000")
)

// EIP-1967 storage slots of a transparent upgradeable proxy.
var (
	ProxyImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	ProxyAdminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")

	// Slot of Ownable's owner in the proxy admin.
	ownerSlot = common.Hash{}
)
