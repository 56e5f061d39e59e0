// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

var errDisconnected = errors.New("disconnected")

// fakeDevice holds one key per index.
type fakeDevice struct {
	keys map[uint32]*secp256k1.PrivateKey
	err  error
}

func newFakeDevice(t *testing.T, indices ...uint32) *fakeDevice {
	d := &fakeDevice{keys: make(map[uint32]*secp256k1.PrivateKey)}
	for _, index := range indices {
		sk, err := secp256k1.NewPrivateKey()
		require.NoError(t, err)
		d.keys[index] = sk
	}
	return d
}

func (d *fakeDevice) Addresses(indices []uint32) ([]ids.ShortID, error) {
	if d.err != nil {
		return nil, d.err
	}
	addrs := make([]ids.ShortID, 0, len(indices))
	for _, index := range indices {
		if sk, ok := d.keys[index]; ok {
			addrs = append(addrs, sk.Address())
		}
	}
	return addrs, nil
}

func (d *fakeDevice) SignHash(hash []byte, indices []uint32) ([][]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	sigs := make([][]byte, len(indices))
	for i, index := range indices {
		sig, err := d.keys[index].SignHash(hash)
		if err != nil {
			return nil, err
		}
		sigs[i] = sig
	}
	return sigs, nil
}

func TestKeychain(t *testing.T) {
	require := require.New(t)

	device := newFakeDevice(t, 0, 3)
	kc, err := NewKeychain(device, 0, 3)
	require.NoError(err)

	addr0 := device.keys[0].Address()
	addr3 := device.keys[3].Address()
	addrs := kc.Addresses()
	require.Equal(2, addrs.Len())
	require.True(addrs.Contains(addr0))
	require.True(addrs.Contains(addr3))

	_, ok := kc.Get(ids.GenerateTestShortID())
	require.False(ok)

	s, ok := kc.Get(addr3)
	require.True(ok)
	require.Equal(addr3, s.Address())

	msg := []byte("unsigned tx")
	sig, err := s.Sign(msg)
	require.NoError(err)
	require.True(device.keys[3].PublicKey().Verify(msg, sig))

	hash := hashing.ComputeHash256([]byte("hash"))
	sig, err = s.SignHash(hash)
	require.NoError(err)
	require.True(device.keys[3].PublicKey().VerifyHash(hash, sig))
}

func TestNewKeychainErrors(t *testing.T) {
	tests := []struct {
		name        string
		device      *fakeDevice
		indices     []uint32
		expectedErr error
	}{
		{
			name:        "no indices",
			device:      newFakeDevice(t, 0),
			expectedErr: ErrNoIndices,
		},
		{
			name:        "missing address",
			device:      newFakeDevice(t, 0),
			indices:     []uint32{0, 1},
			expectedErr: errWrongNumAddresses,
		},
		{
			name:        "device error",
			device:      &fakeDevice{err: errDisconnected},
			indices:     []uint32{0},
			expectedErr: errDisconnected,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewKeychain(test.device, test.indices...)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestSignerPropagatesDeviceError(t *testing.T) {
	require := require.New(t)

	device := newFakeDevice(t, 0)
	kc, err := NewKeychain(device, 0)
	require.NoError(err)
	s, ok := kc.Get(device.keys[0].Address())
	require.True(ok)

	device.err = errDisconnected
	_, err = s.Sign([]byte("unsigned tx"))
	require.ErrorIs(err, errDisconnected)
}

func TestSigningPaths(t *testing.T) {
	require.Equal(t, []string{"0/0", "0/7"}, signingPaths([]uint32{0, 7}))
	require.Equal(t, "m/44'/9000'/0'/0/7", addressPath(7))
}
