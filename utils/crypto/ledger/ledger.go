// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger signs P-Chain transactions with the Avalanche app of a
// Ledger device.
package ledger

import (
	"errors"
	"fmt"

	ledger "github.com/ava-labs/ledger-avalanche/go"

	"github.com/ava-labs/avalanchego/ids"
)

const rootPath = "m/44'/9000'/0'"

var (
	_ Device = (*Ledger)(nil)

	errMissingSignature = errors.New("missing signature")
)

// Device derives addresses and signs hashes with the keys at the given
// indices of the Avalanche derivation path.
type Device interface {
	Addresses(indices []uint32) ([]ids.ShortID, error)
	SignHash(hash []byte, indices []uint32) ([][]byte, error)
}

// Ledger is a Device backed by a Ledger connected over USB.
type Ledger struct {
	device *ledger.LedgerAvalanche
}

// New connects to the first Ledger running the Avalanche app.
func New() (*Ledger, error) {
	device, err := ledger.FindLedgerAvalancheApp()
	if err != nil {
		return nil, fmt.Errorf("couldn't find the Avalanche ledger app: %w", err)
	}
	return &Ledger{device: device}, nil
}

func addressPath(index uint32) string {
	return fmt.Sprintf("%s/0/%d", rootPath, index)
}

func (l *Ledger) Addresses(indices []uint32) ([]ids.ShortID, error) {
	addresses := make([]ids.ShortID, len(indices))
	for i, index := range indices {
		resp, err := l.device.GetPubKey(addressPath(index), false, "", "")
		if err != nil {
			return nil, err
		}
		copy(addresses[i][:], resp.Hash)
	}
	return addresses, nil
}

func signingPaths(indices []uint32) []string {
	paths := make([]string, len(indices))
	for i, index := range indices {
		paths[i] = fmt.Sprintf("0/%d", index)
	}
	return paths
}

// SignHash asks the operator to approve signing [hash] on the device.
func (l *Ledger) SignHash(hash []byte, indices []uint32) ([][]byte, error) {
	paths := signingPaths(indices)
	response, err := l.device.SignHash(rootPath, paths, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to sign hash", err)
	}
	sigs := make([][]byte, len(paths))
	for i, path := range paths {
		sig, ok := response.Signature[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSignature, path)
		}
		sigs[i] = sig
	}
	return sigs, nil
}

func (l *Ledger) Close() error {
	return l.device.Close()
}
