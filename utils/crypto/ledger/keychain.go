// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/keychain"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/set"
)

var (
	_ keychain.Keychain = (*Keychain)(nil)
	_ keychain.Signer   = (*signer)(nil)

	ErrNoIndices          = errors.New("no address indices")
	errWrongNumAddresses  = errors.New("incorrect number of derived addresses")
	errWrongNumSignatures = errors.New("incorrect number of signatures")
)

// Keychain signs for the addresses a Device derives at a fixed set of
// indices.
type Keychain struct {
	device    Device
	addrs     set.Set[ids.ShortID]
	addrToIdx map[ids.ShortID]uint32
}

func NewKeychain(device Device, indices ...uint32) (*Keychain, error) {
	if len(indices) == 0 {
		return nil, ErrNoIndices
	}

	addrs, err := device.Addresses(indices)
	if err != nil {
		return nil, err
	}
	if len(addrs) != len(indices) {
		return nil, fmt.Errorf("%w: expected %d but got %d", errWrongNumAddresses, len(indices), len(addrs))
	}

	addrToIdx := make(map[ids.ShortID]uint32, len(addrs))
	for i, addr := range addrs {
		addrToIdx[addr] = indices[i]
	}
	return &Keychain{
		device:    device,
		addrs:     set.Of(addrs...),
		addrToIdx: addrToIdx,
	}, nil
}

func (k *Keychain) Addresses() set.Set[ids.ShortID] {
	return k.addrs
}

func (k *Keychain) Get(addr ids.ShortID) (keychain.Signer, bool) {
	idx, ok := k.addrToIdx[addr]
	if !ok {
		return nil, false
	}
	return &signer{
		device: k.device,
		idx:    idx,
		addr:   addr,
	}, true
}

type signer struct {
	device Device
	idx    uint32
	addr   ids.ShortID
}

func (s *signer) SignHash(hash []byte) ([]byte, error) {
	sigs, err := s.device.SignHash(hash, []uint32{s.idx})
	if err != nil {
		return nil, err
	}
	if len(sigs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 but got %d", errWrongNumSignatures, len(sigs))
	}
	return sigs[0], nil
}

// Sign signs the hash of the unsigned transaction bytes [b].
func (s *signer) Sign(b []byte) ([]byte, error) {
	return s.SignHash(hashing.ComputeHash256(b))
}

func (s *signer) Address() ids.ShortID {
	return s.addr
}
