// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"
)

type testBlob struct {
	Step  string            `json:"step"`
	Value map[string]string `json:"value"`
}

func TestStorePutGet(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New(), constants.FujiName)

	var blob testBlob
	err := s.Get("wizard", &blob)
	require.ErrorIs(err, ErrNotFound)
	require.True(IsNotFound(err))

	expected := testBlob{
		Step:  "genesis",
		Value: map[string]string{"chainName": "mychain"},
	}
	require.NoError(s.Put("wizard", expected))

	has, err := s.Has("wizard")
	require.NoError(err)
	require.True(has)

	require.NoError(s.Get("wizard", &blob))
	require.Equal(expected, blob)

	// Last writer wins.
	expected.Step = "convert"
	require.NoError(s.Put("wizard", expected))
	require.NoError(s.Get("wizard", &blob))
	require.Equal("convert", blob.Step)

	require.NoError(s.Delete("wizard"))
	require.ErrorIs(s.Get("wizard", &blob), ErrNotFound)
}

func TestStoreNamespaces(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	fuji := New(db, constants.FujiName)
	mainnet := New(db, constants.MainnetName)

	require.NoError(fuji.Put("wizard", testBlob{Step: "fuji"}))
	require.NoError(fuji.Put("conversion", testBlob{Step: "aggregate"}))
	require.NoError(mainnet.Put("wizard", testBlob{Step: "mainnet"}))

	var blob testBlob
	require.NoError(mainnet.Get("wizard", &blob))
	require.Equal("mainnet", blob.Step)

	names, err := fuji.Names()
	require.NoError(err)
	require.ElementsMatch([]string{"wizard", "conversion"}, names)

	require.NoError(fuji.Reset())

	names, err = fuji.Names()
	require.NoError(err)
	require.Empty(names)

	require.NoError(mainnet.Get("wizard", &blob))
	require.Equal("mainnet", blob.Step)
}

func TestNewDatabase(t *testing.T) {
	require := require.New(t)

	db, err := NewDatabase(DatabaseConfig{Name: memdb.Name}, prometheus.NewRegistry(), logging.NoLog{})
	require.NoError(err)
	require.NoError(db.Put([]byte("k"), []byte("v")))
	require.NoError(db.Close())

	db, err = NewDatabase(DatabaseConfig{
		Name: leveldb.Name,
		Path: filepath.Join(t.TempDir(), "db"),
	}, prometheus.NewRegistry(), logging.NoLog{})
	require.NoError(err)
	require.NoError(db.Close())

	_, err = NewDatabase(DatabaseConfig{Name: "unknown"}, prometheus.NewRegistry(), logging.NoLog{})
	require.Error(err)
}
