// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/holiman/uint256"
)

// DefaultWarpQuorumNumerator is the percentage of stake weight that must
// sign a warp message for it to be accepted by the L1.
const DefaultWarpQuorumNumerator = 67

var (
	ErrInvalidChainID       = errors.New("evm chain ID must be positive")
	ErrDuplicateAllocation  = errors.New("duplicate allocation address")
	ErrMissingAmount        = errors.New("allocation amount is missing")
	ErrDuplicateRoleAddress = errors.New("duplicate address in allow list role")
	ErrAllocationCollision  = errors.New("allocation address collides with a predeployed contract")
	ErrInvalidQuorum        = errors.New("warp quorum numerator must be in [33, 100]")

	errInvalidAddress = errors.New("invalid hex address")
	errInvalidAmount  = errors.New("invalid decimal amount")
)

// Allocation is an initial native token balance at genesis.
type Allocation struct {
	Address common.Address
	Amount  *uint256.Int
}

type allocationJSON struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// MarshalJSON encodes the amount as a decimal string of wei.
func (a Allocation) MarshalJSON() ([]byte, error) {
	amount := ""
	if a.Amount != nil {
		amount = a.Amount.Dec()
	}
	return json.Marshal(allocationJSON{
		Address: a.Address.Hex(),
		Amount:  amount,
	})
}

func (a *Allocation) UnmarshalJSON(b []byte) error {
	var raw allocationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	allocation, err := ParseAllocation(raw.Address, raw.Amount)
	if err != nil {
		return err
	}
	*a = allocation
	return nil
}

// ParseAllocation parses a hex address and a decimal wei amount.
func ParseAllocation(address, amount string) (Allocation, error) {
	if !common.IsHexAddress(address) {
		return Allocation{}, fmt.Errorf("%w: %q", errInvalidAddress, address)
	}
	value, err := uint256.FromDecimal(strings.TrimSpace(amount))
	if err != nil {
		return Allocation{}, fmt.Errorf("%w %q: %w", errInvalidAmount, amount, err)
	}
	return Allocation{
		Address: common.HexToAddress(address),
		Amount:  value,
	}, nil
}

// AllowListConfig assigns addresses to the roles of an allow list precompile.
type AllowListConfig struct {
	AdminAddresses   []common.Address `json:"adminAddresses,omitempty"`
	ManagerAddresses []common.Address `json:"managerAddresses,omitempty"`
	EnabledAddresses []common.Address `json:"enabledAddresses,omitempty"`
}

// IsEmpty returns true if no address holds any role. An empty allow list is
// left out of the genesis, which keeps the precompile disabled.
func (c *AllowListConfig) IsEmpty() bool {
	return len(c.AdminAddresses) == 0 &&
		len(c.ManagerAddresses) == 0 &&
		len(c.EnabledAddresses) == 0
}

// Verify returns an error if an address appears twice within the same role.
func (c *AllowListConfig) Verify() error {
	roles := []struct {
		name  string
		addrs []common.Address
	}{
		{name: "admin", addrs: c.AdminAddresses},
		{name: "manager", addrs: c.ManagerAddresses},
		{name: "enabled", addrs: c.EnabledAddresses},
	}
	for _, role := range roles {
		seen := make(map[common.Address]struct{}, len(role.addrs))
		for _, addr := range role.addrs {
			if _, ok := seen[addr]; ok {
				return fmt.Errorf("%w: %s in %s list", ErrDuplicateRoleAddress, addr, role.name)
			}
			seen[addr] = struct{}{}
		}
	}
	return nil
}

// Overlaps returns the addresses that were assigned more than one role.
// Overlapping roles are not rejected, the most privileged role wins on chain.
func (c *AllowListConfig) Overlaps() []common.Address {
	counts := make(map[common.Address]int)
	for _, addrs := range [][]common.Address{c.AdminAddresses, c.ManagerAddresses, c.EnabledAddresses} {
		unique := make(map[common.Address]struct{}, len(addrs))
		for _, addr := range addrs {
			unique[addr] = struct{}{}
		}
		for addr := range unique {
			counts[addr]++
		}
	}

	var overlaps []common.Address
	for _, addrs := range [][]common.Address{c.AdminAddresses, c.ManagerAddresses, c.EnabledAddresses} {
		for _, addr := range addrs {
			if counts[addr] > 1 {
				overlaps = append(overlaps, addr)
				counts[addr] = 0
			}
		}
	}
	return overlaps
}

// FeeConfig is the dynamic fee configuration of a subnet-evm chain.
type FeeConfig struct {
	GasLimit                 uint64 `json:"gasLimit"`
	TargetBlockRate          uint64 `json:"targetBlockRate"`
	MinBaseFee               uint64 `json:"minBaseFee"`
	TargetGas                uint64 `json:"targetGas"`
	BaseFeeChangeDenominator uint64 `json:"baseFeeChangeDenominator"`
	MinBlockGasCost          uint64 `json:"minBlockGasCost"`
	MaxBlockGasCost          uint64 `json:"maxBlockGasCost"`
	BlockGasCostStep         uint64 `json:"blockGasCostStep"`
}

// DefaultFeeConfig returns the fee configuration subnet-evm ships with.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		GasLimit:                 12_000_000,
		TargetBlockRate:          2,
		MinBaseFee:               25_000_000_000,
		TargetGas:                60_000_000,
		BaseFeeChangeDenominator: 36,
		MinBlockGasCost:          0,
		MaxBlockGasCost:          1_000_000,
		BlockGasCostStep:         200_000,
	}
}

// ValidatorManagerPredeploy places an upgradeable validator manager proxy in
// the genesis. The code is the deployed bytecode of compiled contracts.
type ValidatorManagerPredeploy struct {
	ProxyCode      hexutil.Bytes  `json:"proxyCode"`
	ProxyAdminCode hexutil.Bytes  `json:"proxyAdminCode"`
	Implementation common.Address `json:"implementation"`
}

// Params are the inputs to Generate.
type Params struct {
	EVMChainID  uint64       `json:"evmChainId"`
	Allocations []Allocation `json:"tokenAllocations"`

	TxAllowList               AllowListConfig `json:"txAllowlistConfig"`
	ContractDeployerAllowList AllowListConfig `json:"contractDeployerAllowlistConfig"`
	NativeMinterAllowList     AllowListConfig `json:"nativeMinterAllowlistConfig"`

	// POAOwnerAddress owns the validator manager proxy admin. It is unused
	// without a ValidatorManager.
	POAOwnerAddress common.Address `json:"poaOwnerAddress"`

	// Timestamp is the genesis block time in unix seconds. It also activates
	// every precompile configured at genesis.
	Timestamp uint64 `json:"timestamp"`

	FeeConfig           *FeeConfig                 `json:"feeConfig,omitempty"`
	WarpQuorumNumerator uint64                     `json:"warpQuorumNumerator,omitempty"`
	ValidatorManager    *ValidatorManagerPredeploy `json:"validatorManager,omitempty"`
}

// IgnoredOwner reports whether POAOwnerAddress is set but no validator
// manager is placed for it to own.
func (p *Params) IgnoredOwner() bool {
	return p.ValidatorManager == nil && p.POAOwnerAddress != (common.Address{})
}

// Verify checks the parameters are internally consistent.
func (p *Params) Verify() error {
	if p.EVMChainID == 0 {
		return ErrInvalidChainID
	}
	if p.WarpQuorumNumerator != 0 && (p.WarpQuorumNumerator < 33 || p.WarpQuorumNumerator > 100) {
		return fmt.Errorf("%w: %d", ErrInvalidQuorum, p.WarpQuorumNumerator)
	}

	seen := make(map[common.Address]struct{}, len(p.Allocations))
	for i, allocation := range p.Allocations {
		if allocation.Amount == nil {
			return fmt.Errorf("%w: allocation %d (%s)", ErrMissingAmount, i, allocation.Address)
		}
		if _, ok := seen[allocation.Address]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAllocation, allocation.Address)
		}
		seen[allocation.Address] = struct{}{}
	}

	reserved := PrecompileAddresses
	if p.ValidatorManager != nil {
		reserved = append([]common.Address{ValidatorManagerProxyAddress, ProxyAdminAddress}, reserved...)
	}
	for _, addr := range reserved {
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("%w: %s", ErrAllocationCollision, addr)
		}
	}

	for name, allowList := range map[string]*AllowListConfig{
		TxAllowListConfigKey:       &p.TxAllowList,
		DeployerAllowListConfigKey: &p.ContractDeployerAllowList,
		NativeMinterConfigKey:      &p.NativeMinterAllowList,
	} {
		if err := allowList.Verify(); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
