// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nodecmd

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// ChainConfig is the subnet-evm config a node runs an L1 chain with.
type ChainConfig struct {
	LogLevel                string   `json:"log-level"`
	WarpAPIEnabled          bool     `json:"warp-api-enabled"`
	PruningEnabled          bool     `json:"pruning-enabled"`
	StateSyncEnabled        bool     `json:"state-sync-enabled"`
	EthAPIs                 []string `json:"eth-apis,omitempty"`
	AdminAPIEnabled         bool     `json:"admin-api-enabled,omitempty"`
	AllowUnfinalizedQueries bool     `json:"allow-unfinalized-queries,omitempty"`
}

// NewChainConfig returns the config of a validator, or of an RPC node if
// [rpc] is set. RPC nodes keep the full history and serve the debug API the
// conversion workflow traces reverted transactions with.
func NewChainConfig(rpc bool) ChainConfig {
	if !rpc {
		return ChainConfig{
			LogLevel:         "info",
			WarpAPIEnabled:   true,
			PruningEnabled:   true,
			StateSyncEnabled: true,
		}
	}
	return ChainConfig{
		LogLevel:       "info",
		WarpAPIEnabled: true,
		EthAPIs: []string{
			"eth",
			"eth-filter",
			"net",
			"admin",
			"web3",
			"internal-eth",
			"internal-blockchain",
			"internal-transaction",
			"internal-debug",
			"internal-account",
			"internal-personal",
			"debug",
			"debug-tracer",
			"debug-file-tracer",
			"debug-handler",
		},
		AdminAPIEnabled:         true,
		AllowUnfinalizedQueries: true,
	}
}

// ChainConfigCommand writes the config of [chainID] where the node started
// by DockerRunCommand reads it from.
func ChainConfigCommand(chainID ids.ID, rpc bool) (string, error) {
	b, err := json.Marshal(NewChainConfig(rpc))
	if err != nil {
		return "", err
	}
	dir := fmt.Sprintf("~/.avalanchego/configs/chains/%s", chainID)
	return fmt.Sprintf("mkdir -p %s && echo '%s' > %s/config.json", dir, b, dir), nil
}
