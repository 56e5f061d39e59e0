// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package predicate encodes warp messages into transaction access lists so
// the warp precompile can verify them before execution.
package predicate

import (
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
)

// delimiter terminates the message inside its zero padding. Access list
// storage keys are 32 bytes, so a packed predicate is a multiple of 32 bytes.
const delimiter = 0xff

// WarpAddress is the address of the warp precompile.
var WarpAddress = common.HexToAddress("0x0200000000000000000000000000000000000005")

// Pack delimits [b] and right pads it with zeroes to a multiple of 32 bytes.
func Pack(b []byte) []byte {
	packed := make([]byte, len(b)+1, (len(b)+32)/32*32)
	copy(packed, b)
	packed[len(b)] = delimiter
	return common.RightPadBytes(packed, cap(packed))
}

// AccessList returns the access list carrying [b] as a predicate of the
// precompile at [addr].
func AccessList(addr common.Address, b []byte) types.AccessList {
	packed := Pack(b)
	keys := make([]common.Hash, len(packed)/common.HashLength)
	for i := range keys {
		keys[i] = common.BytesToHash(packed[i*common.HashLength : (i+1)*common.HashLength])
	}
	return types.AccessList{{
		Address:     addr,
		StorageKeys: keys,
	}}
}
