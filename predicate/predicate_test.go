// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package predicate

import (
	"bytes"
	"testing"

	"github.com/ava-labs/libevm/common"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name           string
		input          []byte
		expectedLength int
	}{
		{
			name:           "empty",
			input:          []byte{},
			expectedLength: 32,
		},
		{
			name:           "31 bytes",
			input:          bytes.Repeat([]byte{0x01}, 31),
			expectedLength: 32,
		},
		{
			name:           "32 bytes",
			input:          bytes.Repeat([]byte{0x01}, 32),
			expectedLength: 64,
		},
		{
			name:           "trailing zeroes",
			input:          []byte{0x01, 0x00, 0x00},
			expectedLength: 32,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			packed := Pack(test.input)
			require.Len(packed, test.expectedLength)
			require.Equal(test.input, packed[:len(test.input)])
			require.Equal(byte(delimiter), packed[len(test.input)])
			require.Equal(make([]byte, test.expectedLength-len(test.input)-1), packed[len(test.input)+1:])
		})
	}
}

func TestPackDoesNotModifyInput(t *testing.T) {
	input := make([]byte, 2, 64)
	_ = Pack(input)
	require.Equal(t, []byte{0x00, 0x00, 0x00}, input[:3])
}

func TestAccessList(t *testing.T) {
	require := require.New(t)

	msg := bytes.Repeat([]byte{0xab}, 100)
	list := AccessList(WarpAddress, msg)
	require.Len(list, 1)
	require.Equal(WarpAddress, list[0].Address)
	require.Len(list[0].StorageKeys, 4)

	var joined []byte
	for _, key := range list[0].StorageKeys {
		joined = append(joined, key[:]...)
	}
	require.Equal(Pack(msg), joined)
}

func TestPackProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("pack delimits and pads", prop.ForAll(
		func(b []byte) bool {
			packed := Pack(b)
			trimmed := common.TrimRightZeroes(packed)
			return len(packed)%common.HashLength == 0 &&
				len(packed)-len(b) <= common.HashLength &&
				len(trimmed) == len(b)+1 &&
				trimmed[len(b)] == delimiter &&
				bytes.Equal(b, trimmed[:len(b)])
		},
		gen.SliceOf(gen.UInt8()),
	))
	properties.TestingRun(t)
}
