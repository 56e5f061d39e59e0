// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validatormanager encodes calls to, and decodes reverts of, the
// validator manager contract of an L1.
package validatormanager

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/libevm/accounts/abi"
	"github.com/ava-labs/libevm/common"
)

var (
	errShortRevert   = errors.New("revert data shorter than a selector")
	errUnknownRevert = errors.New("unknown revert selector")
	errBadAddress    = errors.New("validator manager address must be 20 bytes")
)

// InitialValidator is the abi form of a validator of the conversion.
type InitialValidator struct {
	NodeID       []byte `json:"nodeID"`
	BlsPublicKey []byte `json:"blsPublicKey"`
	Weight       uint64 `json:"weight"`
}

// ConversionData is the abi form of the data a subnet was converted with.
// Its fields must match the tuple components of RawABI.
type ConversionData struct {
	SubnetID                     [32]byte           `json:"subnetID"`
	ValidatorManagerBlockchainID [32]byte           `json:"validatorManagerBlockchainID"`
	ValidatorManagerAddress      common.Address     `json:"validatorManagerAddress"`
	InitialValidators            []InitialValidator `json:"initialValidators"`
}

// NewConversionData converts the P-Chain conversion data into its abi form.
func NewConversionData(data message.SubnetToL1ConversionData) (ConversionData, error) {
	if len(data.ManagerAddress) != common.AddressLength {
		return ConversionData{}, fmt.Errorf("%w: got %d", errBadAddress, len(data.ManagerAddress))
	}
	validators := make([]InitialValidator, len(data.Validators))
	for i, vdr := range data.Validators {
		validators[i] = InitialValidator{
			NodeID:       bytes.Clone(vdr.NodeID),
			BlsPublicKey: bytes.Clone(vdr.BLSPublicKey[:]),
			Weight:       vdr.Weight,
		}
	}
	return ConversionData{
		SubnetID:                     data.SubnetID,
		ValidatorManagerBlockchainID: data.ManagerChainID,
		ValidatorManagerAddress:      common.BytesToAddress(data.ManagerAddress),
		InitialValidators:            validators,
	}, nil
}

// PackInitializeValidatorSet returns the calldata of
// initializeValidatorSet(conversionData, messageIndex). [messageIndex] is the
// index of the conversion message in the tx predicates.
func PackInitializeValidatorSet(data ConversionData, messageIndex uint32) ([]byte, error) {
	return ABI.Pack("initializeValidatorSet", data, messageIndex)
}

// RevertError is a decoded custom error of the validator manager.
type RevertError struct {
	Name string
	Args []any
}

func (e *RevertError) Error() string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = formatArg(arg)
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

func formatArg(arg any) string {
	switch arg := arg.(type) {
	case [32]byte:
		return common.Hash(arg).Hex()
	case []byte:
		return fmt.Sprintf("0x%x", arg)
	default:
		return fmt.Sprint(arg)
	}
}

// DecodeRevert decodes [data] returned by a reverted call into the error of
// the validator manager ABI whose selector it carries. Plain
// `revert(string)` reasons are returned as a RevertError named "Error".
func DecodeRevert(data []byte) (*RevertError, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: 0x%x", errShortRevert, data)
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return &RevertError{
			Name: "Error",
			Args: []any{reason},
		}, nil
	}

	for name, abiErr := range ABI.Errors {
		if !bytes.Equal(abiErr.ID[:4], data[:4]) {
			continue
		}
		args, err := abiErr.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, fmt.Errorf("couldn't unpack %s: %w", name, err)
		}
		return &RevertError{
			Name: name,
			Args: args,
		}, nil
	}
	return nil, fmt.Errorf("%w: 0x%x", errUnknownRevert, data[:4])
}
