// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import (
	"strings"

	"github.com/ava-labs/libevm/accounts/abi"
)

// RawABI is the subset of the validator manager ABI used to initialize the
// validator set of a converted L1.
const RawABI = `[
  {
    "type": "function",
    "name": "initializeValidatorSet",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "conversionData",
        "type": "tuple",
        "internalType": "struct ConversionData",
        "components": [
          {"name": "subnetID", "type": "bytes32", "internalType": "bytes32"},
          {"name": "validatorManagerBlockchainID", "type": "bytes32", "internalType": "bytes32"},
          {"name": "validatorManagerAddress", "type": "address", "internalType": "address"},
          {
            "name": "initialValidators",
            "type": "tuple[]",
            "internalType": "struct InitialValidator[]",
            "components": [
              {"name": "nodeID", "type": "bytes", "internalType": "bytes"},
              {"name": "blsPublicKey", "type": "bytes", "internalType": "bytes"},
              {"name": "weight", "type": "uint64", "internalType": "uint64"}
            ]
          }
        ]
      },
      {"name": "messageIndex", "type": "uint32", "internalType": "uint32"}
    ],
    "outputs": []
  },
  {"type": "error", "name": "InvalidBLSKeyLength", "inputs": [{"name": "length", "type": "uint256", "internalType": "uint256"}]},
  {"type": "error", "name": "InvalidConversionID", "inputs": [{"name": "encodedConversionID", "type": "bytes32", "internalType": "bytes32"}, {"name": "expectedConversionID", "type": "bytes32", "internalType": "bytes32"}]},
  {"type": "error", "name": "InvalidInitializationStatus", "inputs": []},
  {"type": "error", "name": "InvalidNodeID", "inputs": [{"name": "nodeID", "type": "bytes", "internalType": "bytes"}]},
  {"type": "error", "name": "InvalidTotalWeight", "inputs": [{"name": "weight", "type": "uint64", "internalType": "uint64"}]},
  {"type": "error", "name": "InvalidValidatorManagerAddress", "inputs": [{"name": "validatorManagerAddress", "type": "address", "internalType": "address"}]},
  {"type": "error", "name": "InvalidValidatorManagerBlockchainID", "inputs": [{"name": "blockchainID", "type": "bytes32", "internalType": "bytes32"}]},
  {"type": "error", "name": "InvalidWarpMessage", "inputs": []},
  {"type": "error", "name": "InvalidWarpOriginSenderAddress", "inputs": [{"name": "senderAddress", "type": "address", "internalType": "address"}]},
  {"type": "error", "name": "InvalidWarpSourceChainID", "inputs": [{"name": "sourceChainID", "type": "bytes32", "internalType": "bytes32"}]},
  {"type": "error", "name": "OwnableUnauthorizedAccount", "inputs": [{"name": "account", "type": "address", "internalType": "address"}]}
]`

// ABI is the parsed RawABI.
var ABI = parseABI(RawABI)

func parseABI(rawABI string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic(err)
	}
	return parsed
}
