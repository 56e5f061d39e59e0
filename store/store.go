// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store persists operator progress. Each logical store (the wizard,
// the conversion workflow, ...) is one json blob, and blobs are namespaced by
// the network they were created for so that Fuji and Mainnet progress never
// mix.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
)

var ErrNotFound = database.ErrNotFound

// Store reads and writes json blobs in the namespace of one network. Writes
// are last-writer-wins.
type Store struct {
	network string
	db      database.Database
}

// New returns the store of [network] backed by [db].
func New(db database.Database, network string) *Store {
	return &Store{
		network: network,
		db:      prefixdb.New([]byte(network), db),
	}
}

func (s *Store) Network() string {
	return s.network
}

// Get decodes the blob of store [name] into [v]. Returns [ErrNotFound] if
// the store was never written or was reset.
func (s *Store) Get(name string, v any) error {
	b, err := s.db.Get([]byte(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("couldn't decode store %q: %w", name, err)
	}
	return nil
}

// Put replaces the blob of store [name] with the json encoding of [v].
func (s *Store) Put(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("couldn't encode store %q: %w", name, err)
	}
	return s.db.Put([]byte(name), b)
}

func (s *Store) Has(name string) (bool, error) {
	return s.db.Has([]byte(name))
}

func (s *Store) Delete(name string) error {
	return s.db.Delete([]byte(name))
}

// Names returns the names of every store written in this namespace.
func (s *Store) Names() ([]string, error) {
	it := s.db.NewIterator()
	defer it.Release()

	var names []string
	for it.Next() {
		names = append(names, string(it.Key()))
	}
	return names, it.Error()
}

// Reset deletes every store of this network.
func (s *Store) Reset() error {
	it := s.db.NewIterator()
	defer it.Release()

	batch := s.db.NewBatch()
	for it.Next() {
		if err := batch.Delete(slices.Clone(it.Key())); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	return batch.Write()
}

// IsNotFound reports whether [err] means the store holds no value yet.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
