// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/database/meterdb"
	"github.com/ava-labs/avalanchego/database/pebbledb"
	"github.com/ava-labs/avalanchego/utils/logging"
)

type DatabaseConfig struct {
	// Path to database
	Path string `json:"path"`

	// Name of the database type to use
	Name string `json:"name"`

	// Raw configuration of the database engine
	Config []byte `json:"-"`
}

// NewDatabase opens the database described by [dbConfig] and wraps it with a
// meter DB. Database metrics are registered on [reg] under the db_ prefix.
func NewDatabase(dbConfig DatabaseConfig, reg prometheus.Registerer, log logging.Logger) (database.Database, error) {
	var (
		dbReg = prometheus.WrapRegistererWithPrefix("db_", reg)
		db    database.Database
		err   error
	)
	switch dbConfig.Name {
	case leveldb.Name:
		db, err = leveldb.New(dbConfig.Path, dbConfig.Config, log, dbReg)
		if err != nil {
			return nil, fmt.Errorf("couldn't create %s at %s: %w", leveldb.Name, dbConfig.Path, err)
		}
	case memdb.Name:
		db = memdb.New()
	case pebbledb.Name:
		db, err = pebbledb.New(dbConfig.Path, dbConfig.Config, log, dbReg)
		if err != nil {
			return nil, fmt.Errorf("couldn't create %s at %s: %w", pebbledb.Name, dbConfig.Path, err)
		}
	default:
		return nil, fmt.Errorf(
			"db-type was %q but should have been one of {%s, %s, %s}",
			dbConfig.Name,
			leveldb.Name,
			memdb.Name,
			pebbledb.Name,
		)
	}

	meterDB, err := meterdb.New(prometheus.WrapRegistererWithPrefix("meterdb_", reg), db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create meterdb: %w", err)
	}
	return meterDB, nil
}
