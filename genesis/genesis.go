// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"
)

// AllowListPrecompile is the chain config entry of an allow list precompile
// activated at [BlockTimestamp].
type AllowListPrecompile struct {
	BlockTimestamp uint64 `json:"blockTimestamp"`
	AllowListConfig
}

type WarpConfig struct {
	BlockTimestamp               uint64 `json:"blockTimestamp"`
	QuorumNumerator              uint64 `json:"quorumNumerator"`
	RequirePrimaryNetworkSigners bool   `json:"requirePrimaryNetworkSigners"`
}

// ChainConfig is the subnet-evm chain configuration embedded in the genesis.
type ChainConfig struct {
	ChainID             uint64 `json:"chainId"`
	HomesteadBlock      uint64 `json:"homesteadBlock"`
	EIP150Block         uint64 `json:"eip150Block"`
	EIP155Block         uint64 `json:"eip155Block"`
	EIP158Block         uint64 `json:"eip158Block"`
	ByzantiumBlock      uint64 `json:"byzantiumBlock"`
	ConstantinopleBlock uint64 `json:"constantinopleBlock"`
	PetersburgBlock     uint64 `json:"petersburgBlock"`
	IstanbulBlock       uint64 `json:"istanbulBlock"`
	MuirGlacierBlock    uint64 `json:"muirGlacierBlock"`
	BerlinBlock         uint64 `json:"berlinBlock"`
	LondonBlock         uint64 `json:"londonBlock"`

	FeeConfig FeeConfig   `json:"feeConfig"`
	Warp      *WarpConfig `json:"warpConfig,omitempty"`

	ContractDeployerAllowList *AllowListPrecompile `json:"contractDeployerAllowListConfig,omitempty"`
	NativeMinter              *AllowListPrecompile `json:"contractNativeMinterConfig,omitempty"`
	TxAllowList               *AllowListPrecompile `json:"txAllowListConfig,omitempty"`
}

// Account is an entry of the genesis alloc.
type Account struct {
	Balance string                      `json:"balance"`
	Code    hexutil.Bytes               `json:"code,omitempty"`
	Storage map[common.Hash]common.Hash `json:"storage,omitempty"`
	Nonce   hexutil.Uint64              `json:"nonce,omitempty"`
}

// Genesis is a subnet-evm genesis file.
type Genesis struct {
	Config      ChainConfig        `json:"config"`
	Alloc       map[string]Account `json:"alloc"`
	Nonce       hexutil.Uint64     `json:"nonce"`
	Timestamp   hexutil.Uint64     `json:"timestamp"`
	ExtraData   hexutil.Bytes      `json:"extraData"`
	GasLimit    hexutil.Uint64     `json:"gasLimit"`
	Difficulty  hexutil.Uint64     `json:"difficulty"`
	MixHash     common.Hash        `json:"mixHash"`
	Coinbase    common.Address     `json:"coinbase"`
	Number      hexutil.Uint64     `json:"number"`
	GasUsed     hexutil.Uint64     `json:"gasUsed"`
	ParentHash  common.Hash        `json:"parentHash"`
	AirdropHash common.Hash        `json:"airdropHash"`
}

// AllocKey returns the key [addr] is stored under in the genesis alloc.
func AllocKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Account returns the alloc entry of [addr].
func (g *Genesis) Account(addr common.Address) (Account, bool) {
	account, ok := g.Alloc[AllocKey(addr)]
	return account, ok
}

// Bytes returns the indented JSON encoding of the genesis.
func (g *Genesis) Bytes() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// Generate assembles the genesis described by [params]. It performs no I/O
// and returns the same genesis for the same params.
func Generate(params Params) (*Genesis, error) {
	if err := params.Verify(); err != nil {
		return nil, err
	}

	feeConfig := DefaultFeeConfig()
	if params.FeeConfig != nil {
		feeConfig = *params.FeeConfig
	}
	quorum := params.WarpQuorumNumerator
	if quorum == 0 {
		quorum = DefaultWarpQuorumNumerator
	}

	alloc := make(map[string]Account, len(params.Allocations)+2)
	for _, allocation := range params.Allocations {
		alloc[AllocKey(allocation.Address)] = Account{
			Balance: allocation.Amount.Hex(),
		}
	}
	if vm := params.ValidatorManager; vm != nil {
		alloc[AllocKey(ProxyAdminAddress)] = Account{
			Balance: "0x0",
			Code:    cloneCode(vm.ProxyAdminCode),
			Storage: map[common.Hash]common.Hash{
				ownerSlot: common.BytesToHash(params.POAOwnerAddress.Bytes()),
			},
		}
		alloc[AllocKey(ValidatorManagerProxyAddress)] = Account{
			Balance: "0x0",
			Code:    cloneCode(vm.ProxyCode),
			Storage: map[common.Hash]common.Hash{
				ProxyImplementationSlot: common.BytesToHash(vm.Implementation.Bytes()),
				ProxyAdminSlot:          common.BytesToHash(ProxyAdminAddress.Bytes()),
			},
		}
	}

	return &Genesis{
		Config: ChainConfig{
			ChainID:   params.EVMChainID,
			FeeConfig: feeConfig,
			Warp: &WarpConfig{
				BlockTimestamp:               params.Timestamp,
				QuorumNumerator:              quorum,
				RequirePrimaryNetworkSigners: true,
			},
			ContractDeployerAllowList: allowListPrecompile(params.Timestamp, params.ContractDeployerAllowList),
			NativeMinter:              allowListPrecompile(params.Timestamp, params.NativeMinterAllowList),
			TxAllowList:               allowListPrecompile(params.Timestamp, params.TxAllowList),
		},
		Alloc:     alloc,
		Timestamp: hexutil.Uint64(params.Timestamp),
		ExtraData: hexutil.Bytes{},
		GasLimit:  hexutil.Uint64(feeConfig.GasLimit),
	}, nil
}

func allowListPrecompile(timestamp uint64, config AllowListConfig) *AllowListPrecompile {
	if config.IsEmpty() {
		return nil
	}
	return &AllowListPrecompile{
		BlockTimestamp: timestamp,
		AllowListConfig: AllowListConfig{
			AdminAddresses:   cloneAddrs(config.AdminAddresses),
			ManagerAddresses: cloneAddrs(config.ManagerAddresses),
			EnabledAddresses: cloneAddrs(config.EnabledAddresses),
		},
	}
}

// cloneAddrs copies [addrs], returning nil for an empty list so the omitted
// json field decodes back to the same value.
func cloneAddrs(addrs []common.Address) []common.Address {
	if len(addrs) == 0 {
		return nil
	}
	return slices.Clone(addrs)
}

func cloneCode(code hexutil.Bytes) hexutil.Bytes {
	if len(code) == 0 {
		return nil
	}
	return slices.Clone(code)
}
